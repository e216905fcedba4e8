package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TuanAnh-P/TuuShop/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, result model.PaymentResult, paidAt time.Time) (bool, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time) (bool, error)
}

type mongoOrderRepo struct{ col *mongo.Collection }

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{col: db.Collection(ordersCollection)}
}

func (r *mongoOrderRepo) Create(ctx context.Context, order *model.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	if _, err := r.col.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *mongoOrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	order := &model.Order{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *mongoOrderRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *mongoOrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoOrderRepo) list(ctx context.Context, filter bson.M) ([]model.Order, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []model.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// MarkPaid flips the paid flag only when it is still false, so a second
// capture for the same order cannot overwrite the stored payment result.
func (r *mongoOrderRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, result model.PaymentResult, paidAt time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_paid": false},
		bson.M{"$set": bson.M{
			"is_paid":        true,
			"paid_at":        paidAt,
			"payment_result": result,
			"updated_at":     time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// MarkDelivered requires the order to be paid and not yet delivered.
func (r *mongoOrderRepo) MarkDelivered(ctx context.Context, id primitive.ObjectID, deliveredAt time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_paid": true, "is_delivered": false},
		bson.M{"$set": bson.M{
			"is_delivered": true,
			"delivered_at": deliveredAt,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("mark order delivered: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
