package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/model"
	"github.com/TuanAnh-P/TuuShop/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadyReviewed = errors.New("product already reviewed")
)

const (
	productCacheTTL = 60 * time.Second
	topProductsKey  = "products:top"
	topProductCount = 3
)

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
	pageSize    int
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client, pageSize int) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient, pageSize: pageSize}
}

// Create inserts a sample-valued draft owned by the admin, to be filled in
// through Update.
func (s *ProductService) Create(ctx context.Context, userID primitive.ObjectID) (*model.Product, error) {
	product := &model.Product{
		User:        userID,
		Name:        "Sample name",
		Image:       "/images/sample.jpg",
		Brand:       "Sample brand",
		Category:    "Sample category",
		Description: "Sample description",
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	cacheKey := "product:" + id.Hex()

	// Try cache
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			product := &model.Product{}
			if json.Unmarshal([]byte(cached), product) == nil {
				return product, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	// Write to cache
	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return product, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) ([]model.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, req.Keyword, req.PageNumber, s.pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	pages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	return products, pages, nil
}

func (s *ProductService) Top(ctx context.Context) ([]model.Product, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, topProductsKey).Result(); err == nil {
			var products []model.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				return products, nil
			}
		}
	}

	products, err := s.productRepo.Top(ctx, topProductCount)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(products); err == nil {
			s.redisClient.Set(ctx, topProductsKey, data, productCacheTTL)
		}
	}
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, req dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	product.Name = req.Name
	product.Image = req.Image
	product.Brand = req.Brand
	product.Category = req.Category
	product.Description = req.Description
	product.Price = req.Price
	product.CountInStock = req.CountInStock

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

// AddReview appends the user's review and recomputes the aggregates. The
// repository enforces the one-review-per-user rule in the same update.
func (s *ProductService) AddReview(ctx context.Context, productID primitive.ObjectID, user *model.User, req dto.CreateReviewRequest) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	for _, r := range product.Reviews {
		if r.User == user.ID {
			return ErrAlreadyReviewed
		}
	}

	review := model.Review{
		User:      user.ID,
		Name:      user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	sum := req.Rating
	for _, r := range product.Reviews {
		sum += r.Rating
	}
	numReviews := len(product.Reviews) + 1
	rating := float64(sum) / float64(numReviews)

	added, err := s.productRepo.AddReview(ctx, productID, review, rating, numReviews)
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	if !added {
		return ErrAlreadyReviewed
	}

	s.invalidateCache(ctx, productID)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id primitive.ObjectID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.Hex(), topProductsKey)
	}
}
