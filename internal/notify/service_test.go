package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

type fakeEmail struct {
	sent []EmailMessage
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, msg EmailMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, to)
	return f.err
}

type fakeRecords struct {
	put []Record
	err error
}

func (f *fakeRecords) Put(ctx context.Context, rec *Record) error {
	f.put = append(f.put, *rec)
	return f.err
}

func notifyProfile() *business.Profile {
	p := business.DefaultProfile("biz-1")
	p.Name = "Harbor Grill"
	p.Notifications = business.NotificationSettings{
		EmailEnabled:    true,
		EmailRecipients: []string{"owner@harborgrill.test"},
		SMSEnabled:      true,
		SMSRecipients:   []string{"5550001111"},
		NotifyOnBooking: true,
	}
	return p
}

func TestBookingDeliveryUnconditional(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	records := &fakeRecords{}

	profile := notifyProfile()
	// Even with the booking record toggle off, delivery still fires.
	profile.Notifications.NotifyOnBooking = false

	svc := NewService(email, sms, records, logging.Default())
	err := svc.Notify(context.Background(), profile, CategoryBooking, Event{
		CallerName: "Alex Rivera", CallerPhone: "5551234567",
		Date: "2025-06-02", Time: "14:00:00", PartySize: 4,
	})
	require.NoError(t, err)

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].Subject, "New booking")
	assert.Contains(t, email.sent[0].Body, "Alex Rivera")
	require.Len(t, sms.sent, 1)
	// Record creation is gated off.
	assert.Empty(t, records.put)
}

func TestBookingRecordGatedByPartySizeThreshold(t *testing.T) {
	records := &fakeRecords{}
	profile := notifyProfile()
	profile.Notifications.PartySizeThreshold = 6

	svc := NewService(&fakeEmail{}, &fakeSMS{}, records, logging.Default())

	require.NoError(t, svc.Notify(context.Background(), profile, CategoryBooking, Event{PartySize: 4}))
	assert.Empty(t, records.put)

	require.NoError(t, svc.Notify(context.Background(), profile, CategoryBooking, Event{PartySize: 8}))
	require.Len(t, records.put, 1)
	assert.Equal(t, CategoryBooking, records.put[0].Category)
	assert.Equal(t, "biz-1", records.put[0].BusinessID)
}

func TestDisabledCategorySkipsEverything(t *testing.T) {
	email := &fakeEmail{}
	profile := notifyProfile()
	profile.Notifications.NotifyOnCallback = false

	svc := NewService(email, &fakeSMS{}, &fakeRecords{}, logging.Default())
	require.NoError(t, svc.Notify(context.Background(), profile, CategoryCallBack, Event{CallerName: "Sam"}))
	assert.Empty(t, email.sent)
}

func TestEnabledCategoryDelivers(t *testing.T) {
	email := &fakeEmail{}
	records := &fakeRecords{}
	profile := notifyProfile()
	profile.Notifications.NotifyOnCallback = true

	svc := NewService(email, &fakeSMS{}, records, logging.Default())
	require.NoError(t, svc.Notify(context.Background(), profile, CategoryCallBack, Event{
		CallerName: "Sam Lee", Message: "please call about the patio",
	}))

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].Subject, "Message from Sam Lee")
	assert.Contains(t, email.sent[0].Body, "please call about the patio")
	require.Len(t, records.put, 1)
}

func TestChannelFailuresAreIndependent(t *testing.T) {
	email := &fakeEmail{err: errors.New("sendgrid 500")}
	sms := &fakeSMS{}
	profile := notifyProfile()

	svc := NewService(email, sms, &fakeRecords{}, logging.Default())
	err := svc.Notify(context.Background(), profile, CategoryBooking, Event{CallerName: "Alex"})

	// The email failure is reported but SMS was still attempted.
	assert.Error(t, err)
	assert.Len(t, sms.sent, 1)
}

func TestNilChannelsAreSkipped(t *testing.T) {
	profile := notifyProfile()
	svc := NewService(nil, nil, nil, logging.Default())
	assert.NoError(t, svc.Notify(context.Background(), profile, CategoryBooking, Event{}))
}
