package handler

import (
	"github.com/gin-gonic/gin"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/domain"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// PricingHandler publishes the price table and the bookable time slots.
type PricingHandler struct {
	pricing bookingDomain.PricingStrategy
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricing bookingDomain.PricingStrategy) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

type quoteResponse struct {
	VehicleClass bookingDomain.VehicleClass `json:"vehicle_class"`
	ServiceType  bookingDomain.ServiceType  `json:"service_type"`
	Price        int64                      `json:"price"`
	Currency     string                     `json:"currency"`
}

// RegisterRoutes registers the public catalogue routes.
func (h *PricingHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/pricing", h.PriceList)
		v1.GET("/pricing/quote", h.Quote)
		v1.GET("/slots", h.Slots)
	}
}

// PriceList handles GET /api/v1/pricing.
func (h *PricingHandler) PriceList(c *gin.Context) {
	response.Success(c, gin.H{
		"currency": domain.CurrencyKES,
		"prices":   bookingDomain.PriceList(),
	})
}

// Quote handles GET /api/v1/pricing/quote?vehicle_class=&service_type=.
func (h *PricingHandler) Quote(c *gin.Context) {
	vehicle, err := bookingDomain.ParseVehicleClass(c.Query("vehicle_class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	service, err := bookingDomain.ParseServiceType(c.Query("service_type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	price, err := h.pricing.Calculate(bookingDomain.PricingParams{VehicleClass: vehicle, ServiceType: service})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, quoteResponse{
		VehicleClass: vehicle,
		ServiceType:  service,
		Price:        price,
		Currency:     domain.CurrencyKES,
	})
}

// Slots handles GET /api/v1/slots.
func (h *PricingHandler) Slots(c *gin.Context) {
	response.Success(c, bookingDomain.TimeSlots())
}
