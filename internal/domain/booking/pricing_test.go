package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

func TestPrice_KnownCombinations(t *testing.T) {
	cases := []struct {
		vehicle VehicleClass
		service ServiceType
		want    int64
	}{
		{VehicleSaloon, ServiceBodyWash, 200},
		{VehicleSUV, ServiceFullService, 1500},
		{VehicleTruck, ServiceVacuum, 250},
		{VehicleSaloon, ServiceFullService, 1000},
		{VehicleTruck, ServiceInteriorExterior, 900},
	}
	for _, tt := range cases {
		got, err := Price(tt.vehicle, tt.service)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.vehicle, tt.service)
	}
}

func TestPrice_UnknownCombination(t *testing.T) {
	_, err := Price("bicycle", ServiceBodyWash)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Price(VehicleSaloon, "wax")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPriceList_HasEveryEntry(t *testing.T) {
	list := PriceList()
	assert.Len(t, list, 15)
	assert.Equal(t, PriceEntry{VehicleClass: VehicleSaloon, ServiceType: ServiceBodyWash, Price: 200}, list[0])
}

func TestStandardPricingStrategy(t *testing.T) {
	var s PricingStrategy = NewStandardPricingStrategy()
	p, err := s.Calculate(PricingParams{VehicleClass: VehicleSUV, ServiceType: ServiceEngine})
	require.NoError(t, err)
	assert.Equal(t, int64(500), p)
}

func TestParseVehicleAndService(t *testing.T) {
	v, err := ParseVehicleClass("suv")
	require.NoError(t, err)
	assert.Equal(t, VehicleSUV, v)
	_, err = ParseVehicleClass("van")
	assert.Error(t, err)

	st, err := ParseServiceType("vacuum")
	require.NoError(t, err)
	assert.Equal(t, ServiceVacuum, st)
	_, err = ParseServiceType("polish")
	assert.Error(t, err)
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	assert.Len(t, slots, 10)
	assert.Equal(t, TimeSlot("08:00"), slots[0])
	assert.Equal(t, TimeSlot("17:00"), slots[9])

	_, err := ParseTimeSlot("18:00")
	assert.Error(t, err)
	_, err = ParseTimeSlot("09:00")
	assert.NoError(t, err)

	d, err := ParseScheduledDate("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())
	_, err = ParseScheduledDate("14/03/2026")
	assert.Error(t, err)
}
