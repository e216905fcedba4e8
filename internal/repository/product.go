package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TuanAnh-P/TuuShop/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	List(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, int64, error)
	Top(ctx context.Context, limit int) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddReview(ctx context.Context, productID primitive.ObjectID, review model.Review, rating float64, numReviews int) (bool, error)
	DecrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error
}

type mongoProductRepo struct{ col *mongo.Collection }

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepo{col: db.Collection(productsCollection)}
}

func (r *mongoProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	if product.Reviews == nil {
		product.Reviews = []model.Review{}
	}
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *mongoProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	p := &model.Product{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *mongoProductRepo) List(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, int64, error) {
	filter := bson.M{}
	if keyword != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(pageSize)).
		SetSkip(int64(pageSize * (page - 1)))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	var products []model.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (r *mongoProductRepo) Top(ctx context.Context, limit int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer cur.Close(ctx)

	var products []model.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepo) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":           product.Name,
		"image":          product.Image,
		"brand":          product.Brand,
		"category":       product.Category,
		"description":    product.Description,
		"price":          product.Price,
		"count_in_stock": product.CountInStock,
		"updated_at":     product.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddReview pushes the review and sets the recomputed aggregates in one
// guarded update. The filter excludes products the user already reviewed,
// so a concurrent duplicate loses the race at the document level and is
// reported as not added.
func (r *mongoProductRepo) AddReview(ctx context.Context, productID primitive.ObjectID, review model.Review, rating float64, numReviews int) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": productID, "reviews.user": bson.M{"$ne": review.User}},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$set": bson.M{
				"rating":      rating,
				"num_reviews": numReviews,
				"updated_at":  time.Now().UTC(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("add review: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// DecrementStock refuses to take the count below zero; the filter makes
// the check-and-decrement a single atomic document update.
func (r *mongoProductRepo) DecrementStock(ctx context.Context, productID primitive.ObjectID, qty int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": productID, "count_in_stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"count_in_stock": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("insufficient stock for product %s", productID.Hex())
	}
	return nil
}
