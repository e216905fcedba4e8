package dto

import (
	"time"
)

// --- Users ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type AdminUpdateUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	IsAdmin *bool  `json:"isAdmin" binding:"required"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// --- Products ---

type ListProductsRequest struct {
	Keyword    string `form:"keyword"`
	PageNumber int    `form:"pageNumber,default=1" binding:"min=1"`
}

type UpdateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Image        string  `json:"image" binding:"required"`
	Brand        string  `json:"brand" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	Description  string  `json:"description" binding:"required"`
	Price        float64 `json:"price" binding:"min=0"`
	CountInStock int     `json:"countInStock" binding:"min=0"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type ReviewResponse struct {
	User      string    `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Image        string           `json:"image"`
	Brand        string           `json:"brand"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Price        float64          `json:"price"`
	CountInStock int              `json:"countInStock"`
	Rating       float64          `json:"rating"`
	NumReviews   int              `json:"numReviews"`
	Reviews      []ReviewResponse `json:"reviews"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type CartItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type ShippingAddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CartResponse struct {
	Items           []CartItemResponse       `json:"cartItems"`
	ShippingAddress *ShippingAddressResponse `json:"shippingAddress,omitempty"`
	PaymentMethod   string                   `json:"paymentMethod,omitempty"`
	ItemsPrice      float64                  `json:"itemsPrice"`
	ShippingPrice   float64                  `json:"shippingPrice"`
	TaxPrice        float64                  `json:"taxPrice"`
	TotalPrice      float64                  `json:"totalPrice"`
}

// --- Orders ---

type OrderItemPayload struct {
	Product string  `json:"product" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Image   string  `json:"image" binding:"required"`
	Price   float64 `json:"price" binding:"min=0"`
	Qty     int     `json:"qty" binding:"required,min=1"`
}

// CreateOrderRequest carries the checkout snapshot. The price fields are
// accepted for wire compatibility but the totals are recomputed server-side
// from the line items.
type CreateOrderRequest struct {
	OrderItems      []OrderItemPayload     `json:"orderItems"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type PayOrderRequest struct {
	ID         string `json:"id" binding:"required"`
	Status     string `json:"status" binding:"required"`
	UpdateTime string `json:"update_time"`
	Payer      string `json:"payer"`
}

type OrderItemResponse struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type OrderResponse struct {
	ID              string                  `json:"id"`
	User            string                  `json:"user"`
	OrderItems      []OrderItemResponse     `json:"orderItems"`
	ShippingAddress ShippingAddressResponse `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentResult   *PaymentResultResponse  `json:"paymentResult,omitempty"`
	ItemsPrice      float64                 `json:"itemsPrice"`
	ShippingPrice   float64                 `json:"shippingPrice"`
	TaxPrice        float64                 `json:"taxPrice"`
	TotalPrice      float64                 `json:"totalPrice"`
	IsPaid          bool                    `json:"isPaid"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	IsDelivered     bool                    `json:"isDelivered"`
	DeliveredAt     *time.Time              `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}
