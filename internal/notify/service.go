package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/internal/observability/metrics"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// Service fans a notification out to the business's configured channels and
// persists a record of it when business settings ask for one. Channel
// failures are logged and counted but never stop the other channels.
type Service struct {
	email   EmailSender
	sms     SMSSender
	records RecordStore
	metrics *metrics.NotifyMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithMetrics attaches delivery metrics.
func WithMetrics(m *metrics.NotifyMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a notification service. Nil channels are skipped.
func NewService(email EmailSender, sms SMSSender, records RecordStore, logger *logging.Logger, opts ...ServiceOption) *Service {
	if records == nil {
		records = NopRecordStore{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		email:   email,
		sms:     sms,
		records: records,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify delivers one notification for the category. Delivery for the
// booking category is unconditional; every other category honors its
// per-business toggle. The persisted record is additionally gated by
// settings even for bookings.
func (s *Service) Notify(ctx context.Context, profile *business.Profile, category Category, evt Event) error {
	if profile == nil {
		return fmt.Errorf("notify: profile cannot be nil")
	}
	settings := profile.Notifications

	if category != CategoryBooking && !deliveryEnabled(category, settings) {
		s.logger.Debug("notification category disabled", "business_id", profile.ID, "category", string(category))
		return nil
	}

	subject, body := renderMessage(profile, category, evt)
	start := s.now()

	var failed int

	if settings.EmailEnabled && s.email != nil {
		for _, recipient := range settings.EmailRecipients {
			msg := EmailMessage{To: recipient, Subject: subject, Body: body}
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notification email failed", "error", err, "to", recipient, "category", string(category))
				s.metrics.ObserveDelivery("email", string(category), "failed")
				failed++
				continue
			}
			s.metrics.ObserveDelivery("email", string(category), "sent")
		}
	}

	if settings.SMSEnabled && s.sms != nil {
		smsBody := subject
		if evt.CallerPhone != "" {
			smsBody += ". Phone: " + evt.CallerPhone
		}
		for _, recipient := range settings.SMSRecipients {
			if err := s.sms.SendSMS(ctx, recipient, smsBody); err != nil {
				s.logger.Error("notification sms failed", "error", err, "to", recipient, "category", string(category))
				s.metrics.ObserveDelivery("sms", string(category), "failed")
				failed++
				continue
			}
			s.metrics.ObserveDelivery("sms", string(category), "sent")
		}
	}

	if recordEnabled(category, settings, evt) {
		rec := &Record{
			BusinessID:  profile.ID,
			Category:    category,
			CallerName:  evt.CallerName,
			CallerPhone: evt.CallerPhone,
			Date:        evt.Date,
			Time:        evt.Time,
			PartySize:   evt.PartySize,
			Message:     evt.Message,
		}
		if err := s.records.Put(ctx, rec); err != nil {
			s.logger.Error("notification record write failed", "error", err, "business_id", profile.ID, "category", string(category))
			s.metrics.ObserveRecord(string(category), "failed")
			failed++
		} else {
			s.metrics.ObserveRecord(string(category), "written")
		}
	}

	s.metrics.ObserveLatency(string(category), time.Since(start).Seconds())

	if failed > 0 {
		return fmt.Errorf("notify: %d notification step(s) failed", failed)
	}
	return nil
}

func deliveryEnabled(category Category, settings business.NotificationSettings) bool {
	switch category {
	case CategoryBooking:
		return true
	case CategoryBookingFailed:
		return settings.NotifyOnFailedBooking
	case CategoryLowConfidence:
		return settings.NotifyOnLowConfidence
	case CategoryCallBack:
		return settings.NotifyOnCallback
	case CategoryServiceBooked:
		return settings.NotifyOnServiceBooked
	default:
		return false
	}
}

func recordEnabled(category Category, settings business.NotificationSettings, evt Event) bool {
	if category == CategoryBooking {
		if !settings.NotifyOnBooking {
			return false
		}
		if settings.PartySizeThreshold > 0 && evt.PartySize < settings.PartySizeThreshold {
			return false
		}
		return true
	}
	return deliveryEnabled(category, settings)
}

func renderMessage(profile *business.Profile, category Category, evt Event) (subject, body string) {
	caller := evt.CallerName
	if caller == "" {
		caller = "A caller"
	}

	var b strings.Builder
	writeField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	switch category {
	case CategoryBooking:
		subject = fmt.Sprintf("New booking - %s", caller)
		fmt.Fprintf(&b, "%s booked an appointment.\n\n", caller)
	case CategoryBookingFailed:
		subject = fmt.Sprintf("Booking could not be completed - %s", caller)
		fmt.Fprintf(&b, "%s tried to book but the booking could not be completed. Please follow up.\n\n", caller)
	case CategoryLowConfidence:
		subject = fmt.Sprintf("Call needs review - %s", caller)
		fmt.Fprintf(&b, "%s said something the assistant was not confident about. Please review.\n\n", caller)
	case CategoryCallBack:
		subject = fmt.Sprintf("Message from %s", caller)
		fmt.Fprintf(&b, "%s left a message and would like a call back.\n\n", caller)
	case CategoryServiceBooked:
		subject = fmt.Sprintf("Service inquiry - %s", caller)
		fmt.Fprintf(&b, "%s asked about %s.\n\n", caller, evt.Service)
	}

	writeField("Name", evt.CallerName)
	writeField("Phone", evt.CallerPhone)
	writeField("Email", evt.CallerEmail)
	writeField("Date", evt.Date)
	writeField("Time", evt.Time)
	if evt.PartySize > 0 {
		fmt.Fprintf(&b, "Party size: %d\n", evt.PartySize)
	}
	writeField("Service", evt.Service)
	writeField("Message", evt.Message)
	writeField("Last thing said", evt.Utterance)

	fmt.Fprintf(&b, "\n- %s AI", profile.Name)
	return subject, b.String()
}
