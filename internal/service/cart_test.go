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

type mockCartRepo struct {
	carts map[primitive.ObjectID]*model.Cart
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[primitive.ObjectID]*model.Cart)}
}

func (m *mockCartRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *mockCartRepo) Save(_ context.Context, cart *model.Cart) error {
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	cart.UpdatedAt = time.Now()
	cp := *cart
	m.carts[cart.User] = &cp
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID primitive.ObjectID) error {
	if c, ok := m.carts[userID]; ok {
		c.Items = []model.CartItem{}
		c.ItemsPrice, c.ShippingPrice, c.TaxPrice, c.TotalPrice = 0, 0, 0, 0
	}
	return nil
}

func TestCartService_AddItem(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 20.00, 10)
	userID := primitive.NewObjectID()

	cart, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.Name, cart.Items[0].Name)
	assert.InDelta(t, 20.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 10.00, cart.ShippingPrice, 1e-9)
	assert.InDelta(t, 3.00, cart.TaxPrice, 1e-9)
	assert.InDelta(t, 33.00, cart.TotalPrice, 1e-9)
}

func TestCartService_AddItem_ReplacesQuantity(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 60.00, 10)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	// Adding the same product replaces the quantity, it does not accumulate.
	cart, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
	assert.InDelta(t, 120.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.00, cart.ShippingPrice, 1e-9)
	assert.InDelta(t, 18.00, cart.TaxPrice, 1e-9)
	assert.InDelta(t, 138.00, cart.TotalPrice, 1e-9)
}

func TestCartService_AddItem_QuantityBounds(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 20.00, 3)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, product.ID, 4)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(context.Background(), userID, product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	_, err := svc.AddItem(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 20.00, 10)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.InDelta(t, 0.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 10.00, cart.TotalPrice, 1e-9)
}

func TestCartService_RemoveItem_AbsentIsNoop(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 20.00, 10)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), userID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_SetShippingAddress(t *testing.T) {
	cartRepo := newMockCartRepo()
	svc := NewCartService(cartRepo, newMockProductRepo())
	userID := primitive.NewObjectID()

	cart, err := svc.SetShippingAddress(context.Background(), userID, dto.ShippingAddressRequest{
		Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "USA",
	})
	require.NoError(t, err)
	require.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "Springfield", cart.ShippingAddress.City)
}

func TestCartService_Clear(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	svc := NewCartService(cartRepo, productRepo)

	product := seedProduct(productRepo, 20.00, 10)
	userID := primitive.NewObjectID()

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), userID))

	cart, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.InDelta(t, 0.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.00, cart.TotalPrice, 1e-9)
}
