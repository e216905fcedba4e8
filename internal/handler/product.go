package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TuanAnh-P/TuuShop/internal/dto"
	"github.com/TuanAnh-P/TuuShop/internal/middleware"
	"github.com/TuanAnh-P/TuuShop/internal/model"
	"github.com/TuanAnh-P/TuuShop/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	products, pages, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{Products: resp, Page: req.PageNumber, Pages: pages})
}

func (h *ProductHandler) Top(c *gin.Context) {
	products, err := h.productService.Top(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Create(c *gin.Context) {
	product, err := h.productService.Create(c.Request.Context(), middleware.GetUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product removed"})
}

func (h *ProductHandler) CreateReview(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.productService.AddReview(c.Request.Context(), id, middleware.GetUser(c), req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyReviewed) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "product already reviewed"})
			return
		}
		h.writeProductError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "review added"})
}

func (h *ProductHandler) writeProductError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	reviews := make([]dto.ReviewResponse, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, dto.ReviewResponse{
			User:      r.User.Hex(),
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return dto.ProductResponse{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Reviews:      reviews,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
