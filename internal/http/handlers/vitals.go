package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/healthvault/internal/config"
	"github.com/geocoder89/healthvault/internal/domain/vital"
	"github.com/geocoder89/healthvault/internal/http/middlewares"
	"github.com/geocoder89/healthvault/internal/wallet"
	"github.com/gin-gonic/gin"
)

type VitalsHandler struct {
	svc *wallet.Service
}

func NewVitalsHandler(svc *wallet.Service) *VitalsHandler {
	return &VitalsHandler{svc: svc}
}

func (h *VitalsHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	vitals, err := h.svc.ListVitals(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list vitals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": vitals,
		"count": len(vitals),
	})
}

type CreateVitalBody struct {
	Kind  string     `json:"kind" binding:"required,oneof=BP Sugar HeartRate SpO2 Weight"`
	Value float64    `json:"value" binding:"required,gt=0"`
	Date  *time.Time `json:"date"`
}

func (h *VitalsHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req CreateVitalBody

	if !BindJSON(ctx, &req) {
		return
	}

	date := time.Time{}

	if req.Date != nil {
		date = *req.Date
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	v, err := h.svc.AddVital(cctx, userID, vital.Kind(req.Kind), req.Value, date)

	if err != nil {
		RespondInternal(ctx, "Could not store vital")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":    v.ID,
		"vital": v,
	})
}
