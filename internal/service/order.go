package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/model"
	"github.com/TuanAnh-P/TuuShop/internal/pricing"
	"github.com/TuanAnh-P/TuuShop/internal/repository"
)

var (
	ErrNoOrderItems          = errors.New("no order items")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAccessDenied     = errors.New("access denied")
	ErrOrderAlreadyPaid      = errors.New("order already paid")
	ErrOrderNotPaid          = errors.New("order not paid")
	ErrOrderAlreadyDelivered = errors.New("order already delivered")
	ErrInvalidProductID      = errors.New("invalid product id")
)

// PaidQueueName is the routing key for post-payment fulfillment events.
const PaidQueueName = "orders.paid"

type OrderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	amqpCh    *amqp.Channel
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, amqpCh *amqp.Channel) *OrderService {
	return &OrderService{orderRepo: orderRepo, cartRepo: cartRepo, amqpCh: amqpCh}
}

// Create freezes the submitted cart snapshot into an order. The four price
// fields are computed here, once, from the snapshot's line items; they are
// never recalculated from catalog prices afterwards.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, ErrNoOrderItems
	}

	items := make([]model.OrderItem, 0, len(req.OrderItems))
	priced := make([]pricing.Item, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		productID, err := primitive.ObjectIDFromHex(it.Product)
		if err != nil {
			return nil, ErrInvalidProductID
		}
		items = append(items, model.OrderItem{
			Product: productID,
			Name:    it.Name,
			Image:   it.Image,
			Price:   it.Price,
			Qty:     it.Qty,
		})
		priced = append(priced, pricing.Item{Price: it.Price, Qty: it.Qty})
	}

	totals := pricing.Calculate(priced)

	order := &model.Order{
		User:       userID,
		OrderItems: items,
		ShippingAddress: model.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		ItemsPrice:    totals.ItemsPrice,
		ShippingPrice: totals.ShippingPrice,
		TaxPrice:      totals.TaxPrice,
		TotalPrice:    totals.TotalPrice,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.cartRepo != nil {
		_ = s.cartRepo.Clear(ctx, userID)
	}
	return order, nil
}

// GetByID is visible to the owning user or an admin only.
func (s *OrderService) GetByID(ctx context.Context, orderID primitive.ObjectID, requester *model.User) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.User != requester.ID && !requester.IsAdmin {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// MarkPaid records the capture result and flips the paid flag. Paying an
// already-paid order is a caller error; the guarded update keeps a racing
// second capture from overwriting the stored result.
func (s *OrderService) MarkPaid(ctx context.Context, orderID primitive.ObjectID, req dto.PayOrderRequest) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsPaid {
		return nil, ErrOrderAlreadyPaid
	}

	result := model.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer,
	}
	paidAt := time.Now().UTC()
	ok, err := s.orderRepo.MarkPaid(ctx, orderID, result, paidAt)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	if !ok {
		return nil, ErrOrderAlreadyPaid
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result

	s.publishPaid(ctx, order)
	return order, nil
}

// MarkDelivered is admin-only at the routing layer and requires a paid,
// undelivered order here.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.IsPaid {
		return nil, ErrOrderNotPaid
	}
	if order.IsDelivered {
		return nil, ErrOrderAlreadyDelivered
	}

	deliveredAt := time.Now().UTC()
	ok, err := s.orderRepo.MarkDelivered(ctx, orderID, deliveredAt)
	if err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	if !ok {
		return nil, ErrOrderAlreadyDelivered
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	return order, nil
}

func (s *OrderService) publishPaid(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.OrderPaidMessage{OrderID: order.ID, UserID: order.User})
	_ = s.amqpCh.PublishWithContext(ctx, "", PaidQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}
