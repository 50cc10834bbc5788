package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/internal/calllog"
	"github.com/frontdesk-ai/platform/internal/notify"
	"github.com/frontdesk-ai/platform/internal/scheduling"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

var routerTracer = otel.Tracer("frontdesk.internal.conversation.router")

// ErrInvalidTurn means the request was missing its utterance or business
// identity. No side effects have occurred.
var ErrInvalidTurn = errors.New("conversation: utterance and business id are required")

// Notifier delivers operator notifications. Failures are logged and never
// reach the caller-facing reply.
type Notifier interface {
	Notify(ctx context.Context, profile *business.Profile, category notify.Category, evt notify.Event) error
}

// TranscriptArchiver persists a finished call's transcript.
type TranscriptArchiver interface {
	Archive(ctx context.Context, businessID string, mem Memory) error
}

// CallRecorder keeps the per-call summary row current. Best effort; a write
// failure never alters the reply.
type CallRecorder interface {
	Record(ctx context.Context, rec calllog.CallRecord) error
}

// Router turns one caller utterance into a reply and an updated memory blob.
// Each call is stateless; everything it knows about the conversation rides
// in the request's client state.
type Router struct {
	loader     *ContextLoader
	classifier IntentClassifier
	generator  *ReplyGenerator
	engine     *scheduling.Engine
	committer  *scheduling.Committer
	notifier   Notifier
	archiver   TranscriptArchiver
	calls      CallRecorder
	logger     *logging.Logger
	now        func() time.Time
}

// RouterOption configures optional router collaborators.
type RouterOption func(*Router)

// WithNotifier attaches the operator notification service.
func WithNotifier(n Notifier) RouterOption {
	return func(r *Router) { r.notifier = n }
}

// WithArchiver attaches the end-of-call transcript archiver.
func WithArchiver(a TranscriptArchiver) RouterOption {
	return func(r *Router) { r.archiver = a }
}

// WithCallRecorder attaches the call history store.
func WithCallRecorder(c CallRecorder) RouterOption {
	return func(r *Router) { r.calls = c }
}

// WithRouterClock overrides the router's clock.
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRouter wires the turn engine.
func NewRouter(loader *ContextLoader, classifier IntentClassifier, generator *ReplyGenerator, engine *scheduling.Engine, committer *scheduling.Committer, logger *logging.Logger, opts ...RouterOption) *Router {
	if loader == nil {
		panic("conversation: context loader cannot be nil")
	}
	if classifier == nil {
		panic("conversation: classifier cannot be nil")
	}
	if generator == nil {
		panic("conversation: reply generator cannot be nil")
	}
	if engine == nil {
		panic("conversation: availability engine cannot be nil")
	}
	if committer == nil {
		panic("conversation: committer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Router{
		loader:     loader,
		classifier: classifier,
		generator:  generator,
		engine:     engine,
		committer:  committer,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessTurn handles one utterance end to end: load the business context,
// decode the carried memory, route, then append the exchange to the
// transcript and re-encode.
func (r *Router) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	ctx, span := routerTracer.Start(ctx, "conversation.turn")
	defer span.End()
	start := r.now()

	utterance := strings.TrimSpace(req.Utterance)
	if utterance == "" || strings.TrimSpace(req.BusinessID) == "" {
		return TurnResponse{}, ErrInvalidTurn
	}

	bizCtx, err := r.loader.Load(ctx, req.BusinessID)
	if err != nil {
		return TurnResponse{}, err
	}

	mem := DecodeMemory(req.ClientState, req.BusinessID)

	resp := r.route(ctx, utterance, &mem, bizCtx)

	mem.Append(SpeakerCaller, utterance)
	mem.Append(SpeakerAgent, resp.Reply)
	mem.TurnCount++

	resp.ClientState = EncodeMemory(mem)
	resp.Timestamp = r.now()
	if !resp.HasAppointment {
		resp.HasAppointment = TranscriptConfirmed(&mem)
	}

	if r.calls != nil {
		if err := r.calls.Record(ctx, calllog.CallRecord{
			BusinessID:     req.BusinessID,
			CallerPhone:    mem.Remembered.Phone,
			TurnCount:      mem.TurnCount,
			FinalState:     string(resp.State),
			HasAppointment: resp.HasAppointment,
			NeedsMessage:   resp.NeedsMessage,
		}); err != nil {
			r.logger.Error("call log write failed", "error", err, "business_id", req.BusinessID)
		}
	}

	turnLatency.WithLabelValues(string(resp.State)).Observe(time.Since(start).Seconds())
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("frontdesk.business_id", req.BusinessID),
			attribute.String("frontdesk.turn_state", string(resp.State)),
		)
	}
	r.logger.Info("turn processed",
		"business_id", req.BusinessID,
		"state", string(resp.State),
		"turn", mem.TurnCount,
		"has_appointment", resp.HasAppointment,
	)
	return resp, nil
}

// route picks the turn's state. Rules run in a fixed priority order; doubt
// always resolves toward taking a message rather than booking.
func (r *Router) route(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext) TurnResponse {
	threshold := bizCtx.Profile.ConfidenceThreshold
	simpleAck := IsSimpleAffirmation(utterance)
	pending := mem.PendingDate != "" && mem.PendingTime != ""

	// A bare yes right after the agent proposed a specific slot resolves
	// that slot, never an ambiguous re-ask.
	if simpleAck && pending {
		if TranscriptConfirmed(mem) {
			mem.PendingDate, mem.PendingTime = "", ""
			return TurnResponse{State: StateSimpleAck, Reply: AckReply(), HasAppointment: true}
		}
		mem.PhoneConfirmed = true
		return r.commitSlot(ctx, utterance, mem, bizCtx, mem.PendingDate, mem.PendingTime)
	}
	if simpleAck {
		return TurnResponse{State: StateSimpleAck, Reply: AckReply()}
	}

	// No booking or message wording anywhere in the conversation means the
	// classifier has nothing to decide. Goodbyes and quote-gated questions
	// still route; everything else is a plain question for the generator.
	if !NeedsClassification(utterance, mem.Transcript) && !mem.MessageTaking && !pending {
		if ContainsGoodbyeVocabulary(utterance) {
			return r.goodbye(ctx, mem, bizCtx)
		}
		if bizCtx.QuoteRequired(utterance) {
			return r.messageTaking(ctx, utterance, mem, bizCtx, notify.CategoryCallBack)
		}
		reply, grounded := r.generator.Generate(ctx, utterance, mem, bizCtx)
		if !grounded {
			return r.messageTaking(ctx, utterance, mem, bizCtx, notify.CategoryCallBack)
		}
		return TurnResponse{State: StateGenericReply, Reply: reply}
	}

	cls, err := r.classifier.Classify(ctx, utterance, mem, bizCtx.Profile)
	if err != nil {
		r.logger.Error("classification error", "error", err, "business_id", bizCtx.Profile.ID)
		cls = FallbackClassification()
	}
	MergeEntities(mem, cls.Entities)

	messagey := cls.NeedsMessage ||
		ContainsMessageVocabulary(utterance) ||
		TranscriptMentionsMessageTaking(mem.Transcript) ||
		mem.MessageTaking ||
		bizCtx.QuoteRequired(utterance)

	if cls.Intent == IntentBooking && cls.Confidence >= threshold && !messagey {
		return r.bookingTurn(ctx, utterance, mem, bizCtx, cls)
	}

	if cls.Intent == IntentConfirmation && pending && !messagey {
		if TranscriptConfirmed(mem) {
			mem.PendingDate, mem.PendingTime = "", ""
			return TurnResponse{State: StateSimpleAck, Reply: AckReply(), HasAppointment: true}
		}
		mem.PhoneConfirmed = true
		return r.commitSlot(ctx, utterance, mem, bizCtx, mem.PendingDate, mem.PendingTime)
	}

	if messagey {
		return r.messageTaking(ctx, utterance, mem, bizCtx, notify.CategoryCallBack)
	}

	if cls.Confidence < threshold {
		return r.messageTaking(ctx, utterance, mem, bizCtx, notify.CategoryLowConfidence)
	}

	if cls.Intent == IntentGoodbye {
		return r.goodbye(ctx, mem, bizCtx)
	}

	reply, grounded := r.generator.Generate(ctx, utterance, mem, bizCtx)
	if !grounded {
		return r.messageTaking(ctx, utterance, mem, bizCtx, notify.CategoryCallBack)
	}
	return TurnResponse{State: StateGenericReply, Reply: reply}
}

// bookingTurn advances the booking flow: gather missing fields, verify the
// slot, read the phone number back once, then commit.
func (r *Router) bookingTurn(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext, cls TurnClassification) TurnResponse {
	if TranscriptConfirmed(mem) && cls.Entities.RequestedDate == "" && cls.Entities.RequestedTime == "" {
		return TurnResponse{State: StateSimpleAck, Reply: AckReply(), HasAppointment: true}
	}

	if !HasBookingFields(mem.Remembered) {
		missing := MissingBookingFields(mem.Remembered)
		return TurnResponse{State: StateBookingInProgress, Reply: MissingFieldsReply(missing)}
	}

	date := mem.Remembered.RequestedDate
	slotTime := mem.Remembered.RequestedTime

	avail, err := r.engine.CheckAvailability(ctx, bizCtx.Profile, date, slotTime)
	if err != nil {
		r.logger.Error("availability check failed", "error", err, "business_id", bizCtx.Profile.ID)
		return r.bookingFailure(ctx, utterance, mem, bizCtx)
	}
	if avail.Closed {
		mem.Remembered.RequestedDate = ""
		mem.PendingDate, mem.PendingTime = "", ""
		return TurnResponse{State: StateBookingInProgress, Reply: ClosedReply(date)}
	}
	if !avail.Available {
		return r.slotConflict(ctx, mem, bizCtx, date, slotTime)
	}

	if !mem.PhoneConfirmed {
		mem.PendingDate = date
		mem.PendingTime = slotTime
		reply := fmt.Sprintf("I can do %s at %s. %s",
			spokenDate(date), spokenTime(slotTime), PhoneConfirmReply(mem.Remembered.Phone))
		return TurnResponse{State: StateBookingConfirmPhone, Reply: reply}
	}

	return r.commitSlot(ctx, utterance, mem, bizCtx, date, slotTime)
}

// commitSlot performs the capacity-checked write and reports the outcome.
func (r *Router) commitSlot(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext, date, slotTime string) TurnResponse {
	req := scheduling.BookingRequest{
		BusinessID: bizCtx.Profile.ID,
		Date:       date,
		Time:       slotTime,
		Name:       mem.Remembered.Name,
		Phone:      mem.Remembered.Phone,
		Email:      mem.Remembered.Email,
		PartySize:  mem.Remembered.PartySize,
	}

	res, err := r.committer.Commit(ctx, bizCtx.Profile, req)
	if errors.Is(err, scheduling.ErrSlotFull) {
		commitOutcomeTotal.WithLabelValues("conflict").Inc()
		return r.slotConflict(ctx, mem, bizCtx, date, slotTime)
	}
	if err != nil {
		commitOutcomeTotal.WithLabelValues("error").Inc()
		r.logger.Error("booking commit failed", "error", err, "business_id", bizCtx.Profile.ID, "date", date, "time", slotTime)
		return r.bookingFailure(ctx, utterance, mem, bizCtx)
	}

	commitOutcomeTotal.WithLabelValues("success").Inc()
	mem.PendingDate, mem.PendingTime = "", ""

	evt := notify.Event{
		BusinessID:  bizCtx.Profile.ID,
		CallerName:  res.Name,
		CallerPhone: res.Phone,
		CallerEmail: res.Email,
		Date:        res.Date,
		Time:        res.Time,
		PartySize:   res.PartySize,
	}
	r.dispatch(ctx, bizCtx, notify.CategoryBooking, evt)
	if svc := matchService(bizCtx, mem); svc != "" {
		evt.Service = svc
		r.dispatch(ctx, bizCtx, notify.CategoryServiceBooked, evt)
	}

	return TurnResponse{
		State:          StateBookingCommit,
		Reply:          ConfirmationReply(res.Name, res.Date, res.Time),
		HasAppointment: true,
	}
}

// slotConflict offers nearby alternatives for a full slot. A single
// alternative becomes the pending slot so a bare yes can take it.
func (r *Router) slotConflict(ctx context.Context, mem *Memory, bizCtx *BusinessContext, date, slotTime string) TurnResponse {
	alts, err := r.committer.Alternatives(ctx, bizCtx.Profile, date, slotTime)
	if err != nil {
		r.logger.Error("alternative search failed", "error", err, "business_id", bizCtx.Profile.ID)
		alts = nil
	}

	if len(alts) == 1 {
		mem.PendingDate = date
		mem.PendingTime = alts[0]
	} else {
		mem.PendingDate, mem.PendingTime = "", ""
	}

	resp := TurnResponse{
		State:                 StateBookingConflict,
		Reply:                 ConflictReply(alts),
		SuggestedAlternatives: alts,
	}
	if len(alts) == 0 {
		mem.MessageTaking = true
		resp.NeedsMessage = true
		r.dispatch(ctx, bizCtx, notify.CategoryBookingFailed, r.callerEvent(mem, ""))
	}
	return resp
}

// bookingFailure routes a failed commit to message taking so the business
// can follow up by hand.
func (r *Router) bookingFailure(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext) TurnResponse {
	mem.MessageTaking = true
	r.dispatch(ctx, bizCtx, notify.CategoryBookingFailed, r.callerEvent(mem, utterance))
	return TurnResponse{
		State:        StateMessageTaking,
		Reply:        "I'm having trouble getting that booked right now. I've passed your details to the team and someone will call you back to confirm.",
		NeedsMessage: true,
	}
}

// messageTaking records the caller's message, asking once for any missing
// contact details but never re-asking for known ones.
func (r *Router) messageTaking(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext, category notify.Category) TurnResponse {
	firstTime := !mem.MessageTaking
	mem.MessageTaking = true

	if firstTime {
		if ask := missingContactAsk(mem.Remembered); ask != "" {
			return TurnResponse{
				State:        StateMessageTaking,
				Reply:        "Of course, I can take a message. " + ask,
				NeedsMessage: true,
			}
		}
	}

	r.dispatch(ctx, bizCtx, category, r.callerEvent(mem, utterance))
	return TurnResponse{
		State:        StateMessageTaking,
		Reply:        messageTakenReply,
		NeedsMessage: true,
	}
}

func (r *Router) goodbye(ctx context.Context, mem *Memory, bizCtx *BusinessContext) TurnResponse {
	if r.archiver != nil {
		if err := r.archiver.Archive(ctx, bizCtx.Profile.ID, *mem); err != nil {
			r.logger.Error("transcript archive failed", "error", err, "business_id", bizCtx.Profile.ID)
		}
	}
	return TurnResponse{
		State: StateGoodbye,
		Reply: GoodbyeReply(bizCtx.Profile.ClosingMessage),
	}
}

func (r *Router) dispatch(ctx context.Context, bizCtx *BusinessContext, category notify.Category, evt notify.Event) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, bizCtx.Profile, category, evt); err != nil {
		r.logger.Error("notification dispatch failed", "error", err, "business_id", bizCtx.Profile.ID, "category", string(category))
	}
}

func (r *Router) callerEvent(mem *Memory, message string) notify.Event {
	return notify.Event{
		BusinessID:  mem.BusinessID,
		CallerName:  mem.Remembered.Name,
		CallerPhone: mem.Remembered.Phone,
		CallerEmail: mem.Remembered.Email,
		Date:        mem.Remembered.RequestedDate,
		Time:        mem.Remembered.RequestedTime,
		PartySize:   mem.Remembered.PartySize,
		Message:     message,
	}
}

// matchService scans the caller's side of the transcript for a known service
// name.
func matchService(bizCtx *BusinessContext, mem *Memory) string {
	if len(bizCtx.Services) == 0 {
		return ""
	}
	var spoken strings.Builder
	for _, e := range mem.Transcript {
		if e.Speaker == SpeakerCaller {
			spoken.WriteString(strings.ToLower(e.Text))
			spoken.WriteByte(' ')
		}
	}
	text := spoken.String()
	for _, svc := range bizCtx.Services {
		if svc.Name != "" && strings.Contains(text, strings.ToLower(svc.Name)) {
			return svc.Name
		}
	}
	return ""
}

// missingContactAsk phrases a request for whichever contact fields are still
// unknown.
func missingContactAsk(e Entities) string {
	switch {
	case e.Name == "" && e.Phone == "":
		return "Could I get your name and the best number to reach you?"
	case e.Phone == "":
		return "Could I get the best number to reach you?"
	case e.Name == "":
		return "Could I get your name?"
	default:
		return ""
	}
}
