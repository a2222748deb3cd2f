package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/cart"
	"github.com/cubazar/marketplace-backend/internal/domain/order"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  icon TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  category_id TEXT,
  title TEXT NOT NULL,
  description TEXT,
  price INTEGER NOT NULL,
  images TEXT,
  condition TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  location TEXT,
  is_featured INTEGER NOT NULL DEFAULT 0,
  views_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE(user_id, product_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  amount INTEGER NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'cash',
  payment_id TEXT,
  shipping_address TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  confirmed_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  comment TEXT,
  created_by TEXT,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return db
}

func newCheckoutService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupCheckoutTestDB(t)
	return NewService(db, nil, &config.Config{}), db
}

func seedListing(t *testing.T, db *gorm.DB, sellerID uuid.UUID, title string, price int64, status string) product.Product {
	t.Helper()
	prod := product.Product{
		SellerID:  sellerID,
		Title:     title,
		Price:     price,
		Condition: product.ConditionGood,
		Status:    status,
	}
	require.NoError(t, db.Create(&prod).Error)
	return prod
}

func cartListing(t *testing.T, db *gorm.DB, buyerID, productID uuid.UUID) {
	t.Helper()
	cartListingQty(t, db, buyerID, productID, 1)
}

func cartListingQty(t *testing.T, db *gorm.DB, buyerID, productID uuid.UUID, quantity int) {
	t.Helper()
	item := cart.CartItem{UserID: buyerID, ProductID: productID, Quantity: quantity}
	require.NoError(t, db.Create(&item).Error)
}

func TestProcessCheckout(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()

	bike := seedListing(t, db, sellerA, "Bicycle", 250000, product.StatusActive)
	lamp := seedListing(t, db, sellerB, "Desk Lamp", 30000, product.StatusActive)
	cartListing(t, db, buyer, bike.ID)
	cartListing(t, db, buyer, lamp.ID)

	result, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodCash,
	})
	require.NoError(t, err)

	// One order per listing, summed total
	assert.Len(t, result.OrderIDs, 2)
	assert.Equal(t, int64(280000), result.TotalAmount)

	// Both listings claimed
	var sold int64
	require.NoError(t, db.Model(&product.Product{}).
		Where("status = ?", product.StatusSold).Count(&sold).Error)
	assert.Equal(t, int64(2), sold)

	// Cart cleared
	var remaining int64
	require.NoError(t, db.Model(&cart.CartItem{}).
		Where("user_id = ?", buyer).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	// Orders are pending with a history row each
	var orders []order.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, order.OrderStatusPending, o.Status)
		assert.Equal(t, buyer, o.BuyerID)
		assert.Equal(t, order.PaymentMethodCash, o.PaymentMethod)
		assert.NotEmpty(t, o.OrderNumber)

		var history int64
		require.NoError(t, db.Model(&order.OrderStatusHistory{}).
			Where("order_id = ?", o.ID).Count(&history).Error)
		assert.Equal(t, int64(1), history)
	}
}

func TestProcessCheckoutMultiQuantity(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()

	notebooks := seedListing(t, db, uuid.New(), "Notebook Bundle", 100, product.StatusActive)
	pens := seedListing(t, db, uuid.New(), "Pen Set", 50, product.StatusActive)
	cartListingQty(t, db, buyer, notebooks.ID, 2)
	cartListingQty(t, db, buyer, pens.ID, 1)

	result, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodCash,
	})
	require.NoError(t, err)

	// Each order charges quantity times unit price
	assert.Equal(t, int64(250), result.TotalAmount)

	amounts := map[uuid.UUID]order.Order{}
	var orders []order.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 2)
	for _, o := range orders {
		amounts[o.ProductID] = o
	}

	assert.Equal(t, 2, amounts[notebooks.ID].Quantity)
	assert.Equal(t, int64(200), amounts[notebooks.ID].Amount)
	assert.Equal(t, 1, amounts[pens.ID].Quantity)
	assert.Equal(t, int64(50), amounts[pens.ID].Amount)
}

func TestProcessCheckoutConflictRollsBack(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()

	available := seedListing(t, db, uuid.New(), "Calculator", 80000, product.StatusActive)
	claimed := seedListing(t, db, uuid.New(), "Mini Fridge", 500000, product.StatusSold)
	cartListing(t, db, buyer, available.ID)
	cartListing(t, db, buyer, claimed.ID)

	_, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodCash,
	})

	var unavailable *ItemsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"Mini Fridge"}, unavailable.Titles)

	// The whole batch rolled back: no orders, the available listing is
	// still active, and the cart is untouched
	var orderCount int64
	require.NoError(t, db.Model(&order.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	var prod product.Product
	require.NoError(t, db.First(&prod, "id = ?", available.ID).Error)
	assert.Equal(t, product.StatusActive, prod.Status)

	var cartCount int64
	require.NoError(t, db.Model(&cart.CartItem{}).
		Where("user_id = ?", buyer).Count(&cartCount).Error)
	assert.Equal(t, int64(2), cartCount)
}

func TestProcessCheckoutOnlinePaymentPending(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()
	prod := seedListing(t, db, uuid.New(), "Guitar", 700000, product.StatusActive)
	cartListing(t, db, buyer, prod.ID)

	_, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodOnline,
	})
	assert.ErrorIs(t, err, ErrOnlinePaymentsPending)

	// Nothing was written
	var stillActive product.Product
	require.NoError(t, db.First(&stillActive, "id = ?", prod.ID).Error)
	assert.Equal(t, product.StatusActive, stillActive.Status)

	var orderCount int64
	require.NoError(t, db.Model(&order.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
}

func TestProcessCheckoutValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newCheckoutService(t)
	buyer := uuid.New()

	_, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		PaymentMethod: order.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   "upi",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestProcessCheckoutOwnListing(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()
	prod := seedListing(t, db, buyer, "My Own Chair", 40000, product.StatusActive)
	cartListing(t, db, buyer, prod.ID)

	_, err := svc.ProcessCheckout(buyer, &CheckoutRequest{
		ShippingAddress: "Hostel B, Room 214",
		PaymentMethod:   order.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrOwnListing)
}

func TestGetPaymentMethods(t *testing.T) {
	t.Parallel()

	svc, _ := newCheckoutService(t)

	methods := svc.GetPaymentMethods()
	require.Len(t, methods, 2)

	byID := map[string]PaymentOption{}
	for _, m := range methods {
		byID[m.ID] = m
	}
	assert.True(t, byID[order.PaymentMethodCash].Available)
	assert.False(t, byID[order.PaymentMethodOnline].Available)
}

func TestGetCheckoutSummary(t *testing.T) {
	t.Parallel()

	svc, db := newCheckoutService(t)
	buyer := uuid.New()
	prod := seedListing(t, db, uuid.New(), "Headphones", 120000, product.StatusActive)
	cartListing(t, db, buyer, prod.ID)

	summary, err := svc.GetCheckoutSummary(buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), summary.TotalAmount)
	assert.Len(t, summary.Cart.Items, 1)
	assert.Len(t, summary.PaymentMethods, 2)
}
