package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"is_admin"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type Review struct {
	User      primitive.ObjectID `bson:"user"`
	Name      string             `bson:"name"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"created_at"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	User         primitive.ObjectID `bson:"user"`
	Name         string             `bson:"name"`
	Image        string             `bson:"image"`
	Brand        string             `bson:"brand"`
	Category     string             `bson:"category"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	CountInStock int                `bson:"count_in_stock"`
	Rating       float64            `bson:"rating"`
	NumReviews   int                `bson:"num_reviews"`
	Reviews      []Review           `bson:"reviews"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type ShippingAddress struct {
	Address    string `bson:"address"`
	City       string `bson:"city"`
	PostalCode string `bson:"postal_code"`
	Country    string `bson:"country"`
}

// PaymentResult is the capture confirmation returned by the payment
// collaborator, stored on the order verbatim.
type PaymentResult struct {
	ID           string `bson:"id"`
	Status       string `bson:"status"`
	UpdateTime   string `bson:"update_time"`
	EmailAddress string `bson:"email_address"`
}

// CartItem snapshots name, image and unit price at add time.
type CartItem struct {
	Product primitive.ObjectID `bson:"product"`
	Name    string             `bson:"name"`
	Image   string             `bson:"image"`
	Price   float64            `bson:"price"`
	Qty     int                `bson:"qty"`
}

// Cart derived price fields are recomputed on every mutation, never set
// independently.
type Cart struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	User            primitive.ObjectID `bson:"user"`
	Items           []CartItem         `bson:"items"`
	ShippingAddress *ShippingAddress   `bson:"shipping_address,omitempty"`
	PaymentMethod   string             `bson:"payment_method,omitempty"`
	ItemsPrice      float64            `bson:"items_price"`
	ShippingPrice   float64            `bson:"shipping_price"`
	TaxPrice        float64            `bson:"tax_price"`
	TotalPrice      float64            `bson:"total_price"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

type OrderItem struct {
	Product primitive.ObjectID `bson:"product"`
	Name    string             `bson:"name"`
	Image   string             `bson:"image"`
	Price   float64            `bson:"price"`
	Qty     int                `bson:"qty"`
}

// Order is an immutable snapshot of a cart at checkout time. Price fields
// are frozen at creation; only the paid/delivered flags move, and only
// false -> true.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	User            primitive.ObjectID `bson:"user"`
	OrderItems      []OrderItem        `bson:"order_items"`
	ShippingAddress ShippingAddress    `bson:"shipping_address"`
	PaymentMethod   string             `bson:"payment_method"`
	PaymentResult   *PaymentResult     `bson:"payment_result,omitempty"`
	ItemsPrice      float64            `bson:"items_price"`
	ShippingPrice   float64            `bson:"shipping_price"`
	TaxPrice        float64            `bson:"tax_price"`
	TotalPrice      float64            `bson:"total_price"`
	IsPaid          bool               `bson:"is_paid"`
	PaidAt          *time.Time         `bson:"paid_at,omitempty"`
	IsDelivered     bool               `bson:"is_delivered"`
	DeliveredAt     *time.Time         `bson:"delivered_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

// OrderPaidMessage is published after a successful payment capture and
// consumed by the fulfillment worker.
type OrderPaidMessage struct {
	OrderID primitive.ObjectID `json:"order_id"`
	UserID  primitive.ObjectID `json:"user_id"`
}
