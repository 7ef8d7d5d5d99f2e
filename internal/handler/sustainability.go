package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/middleware"
	"github.com/flicky/green-store/internal/service"
)

type SustainabilityHandler struct {
	svc *service.SustainabilityService
}

func NewSustainabilityHandler(svc *service.SustainabilityService) *SustainabilityHandler {
	return &SustainabilityHandler{svc: svc}
}

func (h *SustainabilityHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SustainabilityHandler) GetPreferences(c *gin.Context) {
	pref, err := h.svc.GetPreferences(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPreferencesResponse(pref))
}

func (h *SustainabilityHandler) UpdatePreferences(c *gin.Context) {
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	pref, err := h.svc.UpdatePreferences(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPreferencesResponse(pref))
}

func (h *SustainabilityHandler) Leaderboard(c *gin.Context) {
	entries, err := h.svc.Leaderboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *SustainabilityHandler) CartImpact(c *gin.Context) {
	impact, err := h.svc.CartImpact(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}
