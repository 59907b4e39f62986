package booking

import (
	"fmt"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// VehicleClass is the size category of the customer's vehicle.
type VehicleClass string

const (
	VehicleSaloon VehicleClass = "saloon"
	VehicleSUV    VehicleClass = "suv"
	VehicleTruck  VehicleClass = "truck"
)

// ServiceType is the wash package the customer selected.
type ServiceType string

const (
	ServiceBodyWash         ServiceType = "body_wash"
	ServiceInteriorExterior ServiceType = "interior_exterior"
	ServiceEngine           ServiceType = "engine"
	ServiceVacuum           ServiceType = "vacuum"
	ServiceFullService      ServiceType = "full_service"
)

var (
	vehicleClasses = []VehicleClass{VehicleSaloon, VehicleSUV, VehicleTruck}
	serviceTypes   = []ServiceType{
		ServiceBodyWash,
		ServiceInteriorExterior,
		ServiceEngine,
		ServiceVacuum,
		ServiceFullService,
	}
)

// priceTable holds prices in whole shillings.
var priceTable = map[VehicleClass]map[ServiceType]int64{
	VehicleSaloon: {
		ServiceBodyWash:         200,
		ServiceInteriorExterior: 500,
		ServiceEngine:           400,
		ServiceVacuum:           150,
		ServiceFullService:      1000,
	},
	VehicleSUV: {
		ServiceBodyWash:         300,
		ServiceInteriorExterior: 700,
		ServiceEngine:           500,
		ServiceVacuum:           200,
		ServiceFullService:      1500,
	},
	VehicleTruck: {
		ServiceBodyWash:         400,
		ServiceInteriorExterior: 900,
		ServiceEngine:           600,
		ServiceVacuum:           250,
		ServiceFullService:      2000,
	},
}

// ErrUnknownPricing is returned for a vehicle/service pair missing from the table.
var ErrUnknownPricing = domain.NewValidationError("no price defined for vehicle class and service type")

// IsValid returns true if the vehicle class appears in the price table.
func (v VehicleClass) IsValid() bool {
	_, ok := priceTable[v]
	return ok
}

// IsValid returns true if the service type is offered.
func (s ServiceType) IsValid() bool {
	for _, st := range serviceTypes {
		if st == s {
			return true
		}
	}
	return false
}

// ParseVehicleClass validates a vehicle class string.
func ParseVehicleClass(s string) (VehicleClass, error) {
	v := VehicleClass(s)
	if !v.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid vehicle class: %s", s))
	}
	return v, nil
}

// ParseServiceType validates a service type string.
func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(s)
	if !st.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid service type: %s", s))
	}
	return st, nil
}

// Price looks up the fixed price for a vehicle class and service type.
func Price(vehicle VehicleClass, service ServiceType) (int64, error) {
	byService, ok := priceTable[vehicle]
	if !ok {
		return 0, ErrUnknownPricing
	}
	price, ok := byService[service]
	if !ok {
		return 0, ErrUnknownPricing
	}
	return price, nil
}

// PriceEntry is one row of the published price list.
type PriceEntry struct {
	VehicleClass VehicleClass `json:"vehicle_class"`
	ServiceType  ServiceType  `json:"service_type"`
	Price        int64        `json:"price"`
}

// PriceList returns the full table in a stable order.
func PriceList() []PriceEntry {
	entries := make([]PriceEntry, 0, len(vehicleClasses)*len(serviceTypes))
	for _, v := range vehicleClasses {
		for _, s := range serviceTypes {
			if p, err := Price(v, s); err == nil {
				entries = append(entries, PriceEntry{VehicleClass: v, ServiceType: s, Price: p})
			}
		}
	}
	return entries
}

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price in whole currency units for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	VehicleClass VehicleClass
	ServiceType  ServiceType
}

// StandardPricingStrategy prices bookings from the static table.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate returns the table price for the vehicle and service.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (int64, error) {
	return Price(params.VehicleClass, params.ServiceType)
}
