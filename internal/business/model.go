// Package business provides per-tenant profile, hours, and settings logic.
package business

import "time"

// DayHours represents the opening hours for a single day.
// Nil means the business is closed that day.
type DayHours struct {
	Open  string `json:"open"`  // "09:00" in 24-hour format
	Close string `json:"close"` // "17:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// NotificationSettings holds per-business notification preferences.
type NotificationSettings struct {
	EmailEnabled    bool     `json:"email_enabled"`
	EmailRecipients []string `json:"email_recipients,omitempty"`

	SMSEnabled    bool     `json:"sms_enabled"`
	SMSRecipients []string `json:"sms_recipients,omitempty"`

	// Category toggles; these gate notification *records*, not delivery of
	// booking confirmations, which always fire.
	NotifyOnBooking       bool `json:"notify_on_booking"`
	NotifyOnFailedBooking bool `json:"notify_on_failed_booking"`
	NotifyOnLowConfidence bool `json:"notify_on_low_confidence"`
	NotifyOnCallback      bool `json:"notify_on_callback"`
	NotifyOnServiceBooked bool `json:"notify_on_service_booked"`

	// PartySizeThreshold suppresses booking records for parties below this
	// size. Zero means record every booking.
	PartySizeThreshold int `json:"party_size_threshold,omitempty"`
}

// Profile is the tenant configuration the orchestrator reads on every turn.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Timezone string `json:"timezone"` // e.g., "America/New_York"

	Greeting       string `json:"greeting,omitempty"`
	ClosingMessage string `json:"closing_message,omitempty"`

	BusinessHours BusinessHours `json:"business_hours"`

	// SlotDurationMinutes is the width of one booking bucket.
	SlotDurationMinutes int `json:"slot_duration_minutes"`
	// MaxAppointmentsPerSlot is the capacity of one bucket.
	MaxAppointmentsPerSlot int `json:"max_appointments_per_slot"`

	// ConfidenceThreshold gates booking commits; classifier results below it
	// fall back to message taking.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// QuoteRequiredServices lists service vocabulary that always requires a
	// human quote before booking.
	QuoteRequiredServices []string `json:"quote_required_services,omitempty"`

	Notifications NotificationSettings `json:"notifications"`
}

// Service is a bookable offering.
type Service struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// KnowledgeEntry is one question/answer pair in the business knowledge base.
type KnowledgeEntry struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// defaultConfidenceThreshold is the baseline booking gate; deployments can
// override it per environment, and each profile can override it per tenant.
const defaultConfidenceThreshold = 0.8

// DefaultProfile returns baseline settings for a newly provisioned business.
func DefaultProfile(businessID string) *Profile {
	return &Profile{
		ID:             businessID,
		Name:           "Front Desk",
		Timezone:       "America/New_York",
		ClosingMessage: "Thanks for calling! Have a great day.",
		BusinessHours: BusinessHours{
			Monday:    &DayHours{Open: "09:00", Close: "17:00"},
			Tuesday:   &DayHours{Open: "09:00", Close: "17:00"},
			Wednesday: &DayHours{Open: "09:00", Close: "17:00"},
			Thursday:  &DayHours{Open: "09:00", Close: "17:00"},
			Friday:    &DayHours{Open: "09:00", Close: "17:00"},
			Saturday:  nil, // Closed
			Sunday:    nil, // Closed
		},
		SlotDurationMinutes:    30,
		MaxAppointmentsPerSlot: 1,
		ConfidenceThreshold:    defaultConfidenceThreshold,
		Notifications: NotificationSettings{
			EmailEnabled:          false,
			SMSEnabled:            false,
			NotifyOnBooking:       true,
			NotifyOnFailedBooking: true,
			NotifyOnLowConfidence: false,
			NotifyOnCallback:      true,
		},
	}
}
