package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:order_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func newOrderService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupOrderTestDB(t)
	return NewService(db, &config.Config{}), db
}

type testOrder struct {
	order   Order
	buyer   uuid.UUID
	seller  uuid.UUID
	product product.Product
}

func seedOrder(t *testing.T, db *gorm.DB, status OrderStatus, productStatus string) testOrder {
	t.Helper()

	buyer := uuid.New()
	seller := uuid.New()

	prod := product.Product{
		SellerID:  seller,
		Title:     "Study Table",
		Price:     150000,
		Condition: product.ConditionGood,
		Status:    productStatus,
	}
	require.NoError(t, db.Create(&prod).Error)

	o := Order{
		BuyerID:       buyer,
		SellerID:      seller,
		ProductID:     prod.ID,
		Quantity:      1,
		Amount:        prod.Price,
		PaymentMethod: PaymentMethodCash,
		ShippingAddr:  "Hostel C, Room 110",
		Status:        status,
	}
	require.NoError(t, db.Create(&o).Error)

	return testOrder{order: o, buyer: buyer, seller: seller, product: prod}
}

func TestUpdateOrderStatusLifecycle(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	steps := []OrderStatus{OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered}
	for _, status := range steps {
		require.NoError(t, svc.UpdateOrderStatus(fixture.seller, false, fixture.order.ID, status, ""))
	}

	var updated Order
	require.NoError(t, db.First(&updated, "id = ?", fixture.order.ID).Error)
	assert.Equal(t, OrderStatusDelivered, updated.Status)
	assert.NotNil(t, updated.ConfirmedAt)
	assert.NotNil(t, updated.ShippedAt)
	assert.NotNil(t, updated.DeliveredAt)

	var history int64
	require.NoError(t, db.Model(&OrderStatusHistory{}).
		Where("order_id = ?", fixture.order.ID).Count(&history).Error)
	assert.Equal(t, int64(3), history)
}

func TestUpdateOrderStatusSkipRejected(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	err := svc.UpdateOrderStatus(fixture.seller, false, fixture.order.ID, OrderStatusDelivered, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOrderStatusCancelRejected(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	// Cancellation restores the listing, so it must go through CancelOrder
	err := svc.UpdateOrderStatus(fixture.seller, false, fixture.order.ID, OrderStatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOrderStatusBuyerRejected(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	err := svc.UpdateOrderStatus(fixture.buyer, false, fixture.order.ID, OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, ErrNotOrderParty)
}

func TestUpdateOrderStatusStaffAllowed(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)
	moderator := uuid.New()

	require.NoError(t, svc.UpdateOrderStatus(moderator, true, fixture.order.ID, OrderStatusConfirmed, "verified by support"))

	var updated Order
	require.NoError(t, db.First(&updated, "id = ?", fixture.order.ID).Error)
	assert.Equal(t, OrderStatusConfirmed, updated.Status)
}

func TestCancelOrderRestoresListing(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	require.NoError(t, svc.CancelOrder(fixture.buyer, fixture.order.ID, "changed my mind"))

	var updated Order
	require.NoError(t, db.First(&updated, "id = ?", fixture.order.ID).Error)
	assert.Equal(t, OrderStatusCancelled, updated.Status)
	assert.NotNil(t, updated.CancelledAt)

	// The listing goes back on sale
	var prod product.Product
	require.NoError(t, db.First(&prod, "id = ?", fixture.product.ID).Error)
	assert.Equal(t, product.StatusActive, prod.Status)
}

func TestCancelOrderLeavesWithdrawnListing(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	// Seller withdrew the listing after checkout marked it sold
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusInactive)

	require.NoError(t, svc.CancelOrder(fixture.buyer, fixture.order.ID, "no longer needed"))

	// The restore only touches listings still marked sold
	var prod product.Product
	require.NoError(t, db.First(&prod, "id = ?", fixture.product.ID).Error)
	assert.Equal(t, product.StatusInactive, prod.Status)
}

func TestCancelOrderOnlyBuyer(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	err := svc.CancelOrder(fixture.seller, fixture.order.ID, "")
	assert.ErrorIs(t, err, ErrNotBuyer)
}

func TestCancelOrderOnlyPending(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusConfirmed, product.StatusSold)

	err := svc.CancelOrder(fixture.buyer, fixture.order.ID, "")
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestGetOrderPartyOnly(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	detail, err := svc.GetOrder(fixture.buyer, fixture.order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Product)
	assert.Equal(t, fixture.product.ID, detail.Product.ID)

	_, err = svc.GetOrder(uuid.New(), fixture.order.ID)
	assert.ErrorIs(t, err, ErrNotOrderParty)

	_, err = svc.GetOrder(fixture.buyer, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetUserOrdersRoleFilter(t *testing.T) {
	t.Parallel()

	svc, db := newOrderService(t)
	fixture := seedOrder(t, db, OrderStatusPending, product.StatusSold)

	asBuyer, err := svc.GetUserOrders(fixture.buyer, &OrderListRequest{Role: "buyer"})
	require.NoError(t, err)
	assert.Len(t, asBuyer.Orders, 1)

	asSeller, err := svc.GetUserOrders(fixture.buyer, &OrderListRequest{Role: "seller"})
	require.NoError(t, err)
	assert.Empty(t, asSeller.Orders)

	either, err := svc.GetUserOrders(fixture.seller, &OrderListRequest{})
	require.NoError(t, err)
	require.Len(t, either.Orders, 1)
	assert.Equal(t, int64(1), either.Pagination.Total)
}
