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

type CartRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type mongoCartRepo struct{ col *mongo.Collection }

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepo{col: db.Collection(cartsCollection)}
}

func (r *mongoCartRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	cart := &model.Cart{}
	err := r.col.FindOne(ctx, bson.M{"user": userID}).Decode(cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Save upserts the whole cart document keyed by user. Last write wins,
// which is fine for a cart owned by a single client session.
func (r *mongoCartRepo) Save(ctx context.Context, cart *model.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"user": cart.User},
		cart,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *mongoCartRepo) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"user": userID}, bson.M{"$set": bson.M{
		"items":          []model.CartItem{},
		"items_price":    0.0,
		"shipping_price": 0.0,
		"tax_price":      0.0,
		"total_price":    0.0,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
