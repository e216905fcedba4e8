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

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), middleware.GetUser(c).ID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoOrderItems):
			c.JSON(http.StatusBadRequest, gin.H{"message": "no order items"})
		case errors.Is(err, service.ErrInvalidProductID):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.orderService.ListMine(c.Request.Context(), middleware.GetUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id, middleware.GetUser(c))
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) PayOrder(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req dto.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
	case errors.Is(err, service.ErrOrderAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"message": "access denied"})
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "order already paid"})
	case errors.Is(err, service.ErrOrderNotPaid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "order not paid"})
	case errors.Is(err, service.ErrOrderAlreadyDelivered):
		c.JSON(http.StatusBadRequest, gin.H{"message": "order already delivered"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.OrderItems))
	for _, it := range order.OrderItems {
		items = append(items, dto.OrderItemResponse{
			Product: it.Product.Hex(),
			Name:    it.Name,
			Image:   it.Image,
			Price:   it.Price,
			Qty:     it.Qty,
		})
	}

	resp := dto.OrderResponse{
		ID:         order.ID.Hex(),
		User:       order.User.Hex(),
		OrderItems: items,
		ShippingAddress: dto.ShippingAddressResponse{
			Address:    order.ShippingAddress.Address,
			City:       order.ShippingAddress.City,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		PaymentMethod: order.PaymentMethod,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TaxPrice:      order.TaxPrice,
		TotalPrice:    order.TotalPrice,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		IsDelivered:   order.IsDelivered,
		DeliveredAt:   order.DeliveredAt,
		CreatedAt:     order.CreatedAt,
	}
	if order.PaymentResult != nil {
		resp.PaymentResult = &dto.PaymentResultResponse{
			ID:           order.PaymentResult.ID,
			Status:       order.PaymentResult.Status,
			UpdateTime:   order.PaymentResult.UpdateTime,
			EmailAddress: order.PaymentResult.EmailAddress,
		}
	}
	return resp
}
