package notify

// Category identifies why a notification fires. Each category is
// independently togglable per business.
type Category string

const (
	CategoryBooking       Category = "booking"
	CategoryBookingFailed Category = "booking_failed"
	CategoryLowConfidence Category = "low_confidence"
	CategoryCallBack      Category = "call_back"
	CategoryServiceBooked Category = "service_booked"
)

// Event carries the caller details a notification is about. Empty fields are
// omitted from the rendered message.
type Event struct {
	BusinessID  string
	CallerName  string
	CallerPhone string
	CallerEmail string
	Date        string
	Time        string
	PartySize   int
	Service     string
	Message     string
	Utterance   string
}
