// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/domain/cart"
	"github.com/cubazar/marketplace-backend/internal/domain/order"
	"github.com/cubazar/marketplace-backend/internal/domain/premium"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
	"github.com/cubazar/marketplace-backend/internal/domain/support"
	"github.com/cubazar/marketplace-backend/internal/domain/user"
	"github.com/cubazar/marketplace-backend/internal/domain/wishlist"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},

		// Product domain
		&product.Category{},
		&product.Product{},

		// Cart domain
		&cart.CartItem{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderStatusHistory{},

		// Wishlist domain
		&wishlist.WishlistItem{},

		// Support domain
		&support.SupportTicket{},
		&support.TicketMessage{},

		// Premium plans
		&premium.Plan{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_seller_status ON products(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_status ON products(category_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_views ON products(views_count DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_user_product ON cart_items(user_id, product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer_status ON orders(buyer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_seller_status ON orders(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user ON wishlist_items(user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_user_product ON wishlist_items(user_id, product_id)",

		// Support indexes
		"CREATE INDEX IF NOT EXISTS idx_support_tickets_user ON support_tickets(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_support_tickets_status ON support_tickets(status)",
		"CREATE INDEX IF NOT EXISTS idx_ticket_messages_ticket ON ticket_messages(ticket_id, created_at)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// Create default categories
	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	// Create default admin user
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Create premium plans
	if err := m.seedPremiumPlans(); err != nil {
		return fmt.Errorf("failed to seed premium plans: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the default listing categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{Name: "Books & Notes", Icon: "book"},
		{Name: "Electronics", Icon: "laptop"},
		{Name: "Furniture", Icon: "armchair"},
		{Name: "Cycles & Vehicles", Icon: "bike"},
		{Name: "Hostel Essentials", Icon: "bed"},
		{Name: "Sports & Fitness", Icon: "dumbbell"},
		{Name: "Fashion", Icon: "shirt"},
		{Name: "Other", Icon: "package"},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("name = ?", category.Name).First(&existing)
		if result.Error != nil {
			// Category doesn't exist, create it
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@cubazar.in").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin@12345"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:         "admin@cubazar.in",
			Password:      string(hashedPassword),
			FullName:      "CU Bazar Admin",
			Role:          user.RoleAdmin,
			IsActive:      true,
			EmailVerified: true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@cubazar.in")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %s", existing.ID)
	}

	return nil
}

// seedPremiumPlans creates the premium membership plans on offer
func (m *Migration) seedPremiumPlans() error {
	log.Println("💎 Seeding premium plans...")

	plans := []premium.Plan{
		{
			Name:         "Monthly",
			Price:        4900, // ₹49
			DurationDays: 30,
			Features:     []string{"Featured listings", "Priority support", "No listing limit"},
			IsActive:     true,
		},
		{
			Name:         "Semester",
			Price:        19900, // ₹199
			DurationDays: 180,
			Features:     []string{"Featured listings", "Priority support", "No listing limit", "Profile badge"},
			IsActive:     true,
		},
		{
			Name:         "Yearly",
			Price:        34900, // ₹349
			DurationDays: 365,
			Features:     []string{"Featured listings", "Priority support", "No listing limit", "Profile badge", "Early access to drops"},
			IsActive:     true,
		},
	}

	for _, plan := range plans {
		var existing premium.Plan
		result := m.db.Where("name = ?", plan.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&plan).Error; err != nil {
				return err
			}
			log.Printf("✅ Created premium plan: %s", plan.Name)
		} else {
			log.Printf("⏭️ Premium plan already exists: %s", plan.Name)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"ticket_messages",
		"support_tickets",
		"order_status_history",
		"orders",
		"cart_items",
		"wishlist_items",
		"premium_plans",
		"products",
		"categories",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
