package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/model"
)

type mockOrderRepo struct {
	orders map[primitive.ObjectID]*model.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[primitive.ObjectID]*model.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		if o.User == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id primitive.ObjectID, result model.PaymentResult, paidAt time.Time) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.IsPaid {
		return false, nil
	}
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	return true, nil
}

func (m *mockOrderRepo) MarkDelivered(_ context.Context, id primitive.ObjectID, deliveredAt time.Time) (bool, error) {
	o, ok := m.orders[id]
	if !ok || !o.IsPaid || o.IsDelivered {
		return false, nil
	}
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	return true, nil
}

func checkoutRequest(items ...dto.OrderItemPayload) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		OrderItems: items,
		ShippingAddress: dto.ShippingAddressRequest{
			Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "USA",
		},
		PaymentMethod: "PayPal",
	}
}

func TestOrderService_Create(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCartRepo(), nil)
	userID := primitive.NewObjectID()

	order, err := svc.Create(context.Background(), userID, checkoutRequest(
		dto.OrderItemPayload{Product: primitive.NewObjectID().Hex(), Name: "Widget", Image: "/images/widget.jpg", Price: 60.00, Qty: 2},
	))
	require.NoError(t, err)
	assert.Equal(t, userID, order.User)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)
	assert.InDelta(t, 120.00, order.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.00, order.ShippingPrice, 1e-9)
	assert.InDelta(t, 18.00, order.TaxPrice, 1e-9)
	assert.InDelta(t, 138.00, order.TotalPrice, 1e-9)
}

func TestOrderService_Create_NoItems(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, newMockCartRepo(), nil)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), checkoutRequest())
	assert.ErrorIs(t, err, ErrNoOrderItems)
	assert.Empty(t, repo.orders, "no record may be persisted for an empty order")
}

func TestOrderService_Create_InvalidProductID(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockCartRepo(), nil)
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), checkoutRequest(
		dto.OrderItemPayload{Product: "not-an-id", Name: "Widget", Image: "/images/widget.jpg", Price: 10, Qty: 1},
	))
	assert.ErrorIs(t, err, ErrInvalidProductID)
}

func TestOrderService_GetByID(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	owner := &model.User{ID: primitive.NewObjectID()}
	orderID := primitive.NewObjectID()
	repo.orders[orderID] = &model.Order{ID: orderID, User: owner.ID, TotalPrice: 99.99}

	order, err := svc.GetByID(context.Background(), orderID, owner)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestOrderService_GetByID_AdminCanReadAny(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	repo.orders[orderID] = &model.Order{ID: orderID, User: primitive.NewObjectID()}

	admin := &model.User{ID: primitive.NewObjectID(), IsAdmin: true}
	_, err := svc.GetByID(context.Background(), orderID, admin)
	assert.NoError(t, err)
}

func TestOrderService_GetByID_Forbidden(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	repo.orders[orderID] = &model.Order{ID: orderID, User: primitive.NewObjectID()}

	stranger := &model.User{ID: primitive.NewObjectID()}
	_, err := svc.GetByID(context.Background(), orderID, stranger)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.GetByID(context.Background(), primitive.NewObjectID(), &model.User{ID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_MarkPaid(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	repo.orders[orderID] = &model.Order{ID: orderID, User: primitive.NewObjectID()}

	order, err := svc.MarkPaid(context.Background(), orderID, dto.PayOrderRequest{
		ID: "PAYID-123", Status: "COMPLETED", UpdateTime: "2024-06-01T12:00:00Z", Payer: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	require.NotNil(t, order.PaymentResult)
	assert.Equal(t, "PAYID-123", order.PaymentResult.ID)
	assert.Equal(t, "buyer@example.com", order.PaymentResult.EmailAddress)
}

func TestOrderService_MarkPaid_AlreadyPaid(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	now := time.Now()
	repo.orders[orderID] = &model.Order{
		ID: orderID, User: primitive.NewObjectID(), IsPaid: true, PaidAt: &now,
		PaymentResult: &model.PaymentResult{ID: "PAYID-1"},
	}

	_, err := svc.MarkPaid(context.Background(), orderID, dto.PayOrderRequest{ID: "PAYID-2", Status: "COMPLETED"})
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	assert.Equal(t, "PAYID-1", repo.orders[orderID].PaymentResult.ID, "stored capture must not be overwritten")
}

func TestOrderService_MarkDelivered(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	now := time.Now()
	repo.orders[orderID] = &model.Order{ID: orderID, User: primitive.NewObjectID(), IsPaid: true, PaidAt: &now}

	order, err := svc.MarkDelivered(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, order.IsDelivered)
	assert.NotNil(t, order.DeliveredAt)
}

func TestOrderService_MarkDelivered_NotPaid(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	repo.orders[orderID] = &model.Order{ID: orderID, User: primitive.NewObjectID()}

	_, err := svc.MarkDelivered(context.Background(), orderID)
	assert.ErrorIs(t, err, ErrOrderNotPaid)
	assert.False(t, repo.orders[orderID].IsDelivered)
}

func TestOrderService_MarkDelivered_AlreadyDelivered(t *testing.T) {
	repo := newMockOrderRepo()
	svc := NewOrderService(repo, nil, nil)
	orderID := primitive.NewObjectID()
	now := time.Now()
	repo.orders[orderID] = &model.Order{
		ID: orderID, User: primitive.NewObjectID(),
		IsPaid: true, PaidAt: &now, IsDelivered: true, DeliveredAt: &now,
	}

	_, err := svc.MarkDelivered(context.Background(), orderID)
	assert.ErrorIs(t, err, ErrOrderAlreadyDelivered)
}

func TestOrderService_Create_ClearsCart(t *testing.T) {
	orderRepo := newMockOrderRepo()
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	cartSvc := NewCartService(cartRepo, productRepo)
	svc := NewOrderService(orderRepo, cartRepo, nil)

	product := seedProduct(productRepo, 20.00, 10)
	userID := primitive.NewObjectID()
	_, err := cartSvc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userID, checkoutRequest(
		dto.OrderItemPayload{Product: product.ID.Hex(), Name: product.Name, Image: product.Image, Price: product.Price, Qty: 2},
	))
	require.NoError(t, err)

	cart, err := cartSvc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
