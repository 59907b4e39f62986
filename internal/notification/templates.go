package notification

import (
	"fmt"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
)

// StatusMessage renders the customer SMS for a booking entering status. The
// second return is false for statuses that do not notify.
func StatusMessage(bk *bookingDomain.Booking, status bookingDomain.BookingStatus) (string, bool) {
	if !status.NotifiesCustomer() {
		return "", false
	}
	date := bk.ScheduledDate().Format(bookingDomain.DateLayout)

	switch status {
	case bookingDomain.StatusConfirmed:
		return fmt.Sprintf("Hi %s, your SwiftWash booking %s is confirmed for %s at %s. Location: %s.",
			bk.CustomerName(), bk.BookingNumber(), date, bk.TimeSlot(), bk.Location()), true
	case bookingDomain.StatusStartedCleaning:
		return fmt.Sprintf("Hi %s, our crew has started cleaning your vehicle (booking %s).",
			bk.CustomerName(), bk.BookingNumber()), true
	case bookingDomain.StatusDone:
		return fmt.Sprintf("Hi %s, your vehicle is clean! Booking %s is done. Amount due: KES %d.",
			bk.CustomerName(), bk.BookingNumber(), bk.Price()), true
	case bookingDomain.StatusDelivered:
		return fmt.Sprintf("Hi %s, booking %s has been delivered. Thank you for choosing SwiftWash!",
			bk.CustomerName(), bk.BookingNumber()), true
	}
	return "", false
}
