package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/middleware"
	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCartResponse(items))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartItemResponse(item))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid cart item ID")
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	item, err := h.svc.SetQuantity(c.Request.Context(), middleware.GetUserID(c), itemID, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "item removed from cart"})
		return
	}
	c.JSON(http.StatusOK, cartItemResponse(item))
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid cart item ID")
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "item removed from cart"})
}

func cartItemResponse(item *model.CartItem) dto.CartItemResponse {
	return dto.ToCartResponse([]model.CartItem{*item})[0]
}
