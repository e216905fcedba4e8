package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/model"
)

type mockProductRepo struct {
	products map[primitive.ObjectID]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[primitive.ObjectID]*model.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Reviews = append([]model.Review(nil), p.Reviews...)
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, _ string, _, _ int) ([]model.Product, int64, error) {
	var products []model.Product
	for _, p := range m.products {
		products = append(products, *p)
	}
	return products, int64(len(products)), nil
}

func (m *mockProductRepo) Top(_ context.Context, limit int) ([]model.Product, error) {
	products, _, _ := m.List(context.Background(), "", 1, limit)
	return products, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) AddReview(_ context.Context, productID primitive.ObjectID, review model.Review, rating float64, numReviews int) (bool, error) {
	p, ok := m.products[productID]
	if !ok {
		return false, nil
	}
	for _, r := range p.Reviews {
		if r.User == review.User {
			return false, nil
		}
	}
	p.Reviews = append(p.Reviews, review)
	p.Rating = rating
	p.NumReviews = numReviews
	return true, nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, productID primitive.ObjectID, qty int) error {
	p, ok := m.products[productID]
	if !ok || p.CountInStock < qty {
		return fmt.Errorf("insufficient stock for product %s", productID.Hex())
	}
	p.CountInStock -= qty
	return nil
}

func seedProduct(repo *mockProductRepo, price float64, stock int) *model.Product {
	product := &model.Product{
		ID:           primitive.NewObjectID(),
		Name:         "Widget",
		Image:        "/images/widget.jpg",
		Price:        price,
		CountInStock: stock,
	}
	repo.products[product.ID] = product
	return product
}

func TestProductService_AddReview(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil, 8)
	product := seedProduct(repo, 10, 5)

	reviewers := []int{5, 3, 4}
	for i, rating := range reviewers {
		user := &model.User{ID: primitive.NewObjectID(), Name: fmt.Sprintf("Reviewer %d", i)}
		err := svc.AddReview(context.Background(), product.ID, user, dto.CreateReviewRequest{
			Rating: rating, Comment: "nice",
		})
		require.NoError(t, err)
	}

	got := repo.products[product.ID]
	assert.Equal(t, 3, got.NumReviews)
	assert.InDelta(t, 4.0, got.Rating, 1e-6)
}

func TestProductService_AddReview_Duplicate(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil, 8)
	product := seedProduct(repo, 10, 5)

	user := &model.User{ID: primitive.NewObjectID(), Name: "John Doe"}
	require.NoError(t, svc.AddReview(context.Background(), product.ID, user, dto.CreateReviewRequest{
		Rating: 5, Comment: "great",
	}))

	err := svc.AddReview(context.Background(), product.ID, user, dto.CreateReviewRequest{
		Rating: 1, Comment: "changed my mind",
	})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// Aggregates untouched by the rejected attempt.
	got := repo.products[product.ID]
	assert.Equal(t, 1, got.NumReviews)
	assert.InDelta(t, 5.0, got.Rating, 1e-6)
}

func TestProductService_AddReview_ProductNotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil, 8)
	user := &model.User{ID: primitive.NewObjectID(), Name: "John Doe"}
	err := svc.AddReview(context.Background(), primitive.NewObjectID(), user, dto.CreateReviewRequest{
		Rating: 5, Comment: "great",
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil, 8)
	_, err := svc.GetByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil, 8)
	product := seedProduct(repo, 10, 5)

	updated, err := svc.Update(context.Background(), product.ID, dto.UpdateProductRequest{
		Name: "Gadget", Image: "/images/gadget.jpg", Brand: "Acme",
		Category: "Tools", Description: "A better widget",
		Price: 19.99, CountInStock: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", updated.Name)
	assert.InDelta(t, 19.99, updated.Price, 1e-9)
	assert.Equal(t, 7, updated.CountInStock)
}
