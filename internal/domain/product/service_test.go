package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:product_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return db
}

func testMarketplaceConfig() *config.Config {
	return &config.Config{
		Marketplace: config.MarketplaceConfig{
			ViewDedupWindow: 30 * time.Minute,
			FeaturedLimit:   8,
		},
	}
}

func newProductService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupProductTestDB(t)
	return NewService(db, nil, testMarketplaceConfig()), db
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	svc, db := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title:     "Engineering Drawing Kit",
		Price:     25000,
		Condition: ConditionLikeNew,
		Location:  "North Campus",
		Images:    []string{"https://cdn.example.com/kit.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, seller, prod.SellerID)
	assert.Equal(t, StatusActive, prod.Status)
	assert.True(t, prod.IsAvailable())

	var stored Product
	require.NoError(t, db.First(&stored, "id = ?", prod.ID).Error)
	assert.Equal(t, "Engineering Drawing Kit", stored.Title)
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	_, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title:     "Free Stuff",
		Price:     0,
		Condition: ConditionGood,
	})
	assert.Error(t, err)

	_, err = svc.CreateProduct(seller, &ProductCreateRequest{
		Title:     "Mystery Box",
		Price:     5000,
		Condition: "mint",
	})
	assert.Error(t, err)
}

func TestGetProductsActiveOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	active, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Active Listing", Price: 10000, Condition: ConditionGood,
	})
	require.NoError(t, err)

	sold, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Sold Listing", Price: 20000, Condition: ConditionGood,
	})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&Product{}).
		Where("id = ?", sold.ID).Update("status", StatusSold).Error)

	resp, err := svc.GetProducts(&ProductListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, active.ID, resp.Products[0].ID)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestGetProductsFilters(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	_, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Organic Chemistry Textbook", Price: 40000, Condition: ConditionGood, Location: "North Campus",
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Table Fan", Price: 80000, Condition: ConditionFair, Location: "South Campus",
	})
	require.NoError(t, err)

	bySearch, err := svc.GetProducts(&ProductListRequest{Search: "chemistry"})
	require.NoError(t, err)
	require.Len(t, bySearch.Products, 1)
	assert.Equal(t, "Organic Chemistry Textbook", bySearch.Products[0].Title)

	byCondition, err := svc.GetProducts(&ProductListRequest{Condition: ConditionFair})
	require.NoError(t, err)
	require.Len(t, byCondition.Products, 1)
	assert.Equal(t, "Table Fan", byCondition.Products[0].Title)

	byPrice, err := svc.GetProducts(&ProductListRequest{MinPrice: 50000})
	require.NoError(t, err)
	require.Len(t, byPrice.Products, 1)
	assert.Equal(t, "Table Fan", byPrice.Products[0].Title)

	byLocation, err := svc.GetProducts(&ProductListRequest{Location: "north"})
	require.NoError(t, err)
	require.Len(t, byLocation.Products, 1)
	assert.Equal(t, "Organic Chemistry Textbook", byLocation.Products[0].Title)
}

func TestGetProductsSortByPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	for _, listing := range []struct {
		title string
		price int64
	}{
		{"Cheap", 5000},
		{"Mid", 50000},
		{"Pricey", 500000},
	} {
		_, err := svc.CreateProduct(seller, &ProductCreateRequest{
			Title: listing.title, Price: listing.price, Condition: ConditionGood,
		})
		require.NoError(t, err)
	}

	asc, err := svc.GetProducts(&ProductListRequest{SortBy: "price_asc"})
	require.NoError(t, err)
	require.Len(t, asc.Products, 3)
	assert.Equal(t, "Cheap", asc.Products[0].Title)
	assert.Equal(t, "Pricey", asc.Products[2].Title)

	desc, err := svc.GetProducts(&ProductListRequest{SortBy: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, "Pricey", desc.Products[0].Title)
}

func TestUpdateProductOwnership(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Bookshelf", Price: 60000, Condition: ConditionGood,
	})
	require.NoError(t, err)

	newTitle := "Wooden Bookshelf"
	_, err = svc.UpdateProduct(uuid.New(), prod.ID, &ProductUpdateRequest{Title: &newTitle})
	assert.Error(t, err)

	updated, err := svc.UpdateProduct(seller, prod.ID, &ProductUpdateRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Wooden Bookshelf", updated.Title)
}

func TestUpdateProductSoldLocked(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Bookshelf", Price: 60000, Condition: ConditionGood,
	})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&Product{}).
		Where("id = ?", prod.ID).Update("status", StatusSold).Error)

	newTitle := "Wooden Bookshelf"
	_, err = svc.UpdateProduct(seller, prod.ID, &ProductUpdateRequest{Title: &newTitle})
	assert.Error(t, err)
}

func TestUpdateProductStatusRestricted(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Bookshelf", Price: 60000, Condition: ConditionGood,
	})
	require.NoError(t, err)

	// Sellers may pause and resume a listing
	inactive := StatusInactive
	updated, err := svc.UpdateProduct(seller, prod.ID, &ProductUpdateRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, updated.Status)

	// Sold is owned by checkout, never set directly by the seller
	soldStatus := StatusSold
	_, err = svc.UpdateProduct(seller, prod.ID, &ProductUpdateRequest{Status: &soldStatus})
	assert.Error(t, err)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	svc, db := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Old Router", Price: 15000, Condition: ConditionFair,
	})
	require.NoError(t, err)

	require.Error(t, svc.DeleteProduct(uuid.New(), prod.ID))
	require.NoError(t, svc.DeleteProduct(seller, prod.ID))

	// Soft deleted: gone from queries, still present unscoped
	_, err = svc.GetProduct(prod.ID)
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Unscoped().Model(&Product{}).
		Where("id = ?", prod.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordView(t *testing.T) {
	t.Parallel()

	svc, db := newProductService(t)
	seller := uuid.New()

	prod, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Poster Set", Price: 5000, Condition: ConditionNew,
	})
	require.NoError(t, err)

	// Without redis every view counts
	require.NoError(t, svc.RecordView(context.Background(), prod.ID, "viewer-1"))
	require.NoError(t, svc.RecordView(context.Background(), prod.ID, "viewer-2"))

	var stored Product
	require.NoError(t, db.First(&stored, "id = ?", prod.ID).Error)
	assert.Equal(t, 2, stored.ViewsCount)
}

func TestGetFeaturedProducts(t *testing.T) {
	t.Parallel()

	svc, _ := newProductService(t)
	seller := uuid.New()

	featured, err := svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Featured Desk", Price: 90000, Condition: ConditionGood,
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(seller, &ProductCreateRequest{
		Title: "Plain Chair", Price: 20000, Condition: ConditionGood,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetFeatured(featured.ID, true))

	feed, err := svc.GetFeaturedProducts()
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, featured.ID, feed[0].ID)
}
