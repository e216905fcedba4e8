package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/model"
	"github.com/TuanAnh-P/TuuShop/internal/pricing"
	"github.com/TuanAnh-P/TuuShop/internal/repository"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// Get returns the user's cart, creating an empty one on first interaction.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		cart = &model.Cart{User: userID, Items: []model.CartItem{}}
		recomputeTotals(cart)
		if err := s.cartRepo.Save(ctx, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}
	return cart, nil
}

// AddItem upserts by product id: adding a product already in the cart
// replaces its quantity rather than accumulating.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*model.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if qty < 1 || qty > product.CountInStock {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := model.CartItem{
		Product: product.ID,
		Name:    product.Name,
		Image:   product.Image,
		Price:   product.Price,
		Qty:     qty,
	}

	replaced := false
	for i := range cart.Items {
		if cart.Items[i].Product == productID {
			cart.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		cart.Items = append(cart.Items, item)
	}

	return s.saveWithTotals(ctx, cart)
}

// RemoveItem deletes the line item if present; removing an absent product
// is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.Product != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	return s.saveWithTotals(ctx, cart)
}

func (s *CartService) SetShippingAddress(ctx context.Context, userID primitive.ObjectID, req dto.ShippingAddressRequest) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.ShippingAddress = &model.ShippingAddress{
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	return s.saveWithTotals(ctx, cart)
}

func (s *CartService) SetPaymentMethod(ctx context.Context, userID primitive.ObjectID, method string) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.PaymentMethod = method
	return s.saveWithTotals(ctx, cart)
}

// Clear empties the cart after a successful checkout.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) saveWithTotals(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	recomputeTotals(cart)
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// recomputeTotals must run after every line-item mutation; stale derived
// fields are a correctness bug.
func recomputeTotals(cart *model.Cart) {
	items := make([]pricing.Item, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, pricing.Item{Price: it.Price, Qty: it.Qty})
	}
	totals := pricing.Calculate(items)
	cart.ItemsPrice = totals.ItemsPrice
	cart.ShippingPrice = totals.ShippingPrice
	cart.TaxPrice = totals.TaxPrice
	cart.TotalPrice = totals.TotalPrice
}
