package conversation

import (
	"fmt"
	"strings"
	"time"

	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bytedance/sonic"
	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

var classifyTracer = otel.Tracer("frontdesk.internal.conversation.classifier")

// IntentClassifier is the swappable classification strategy. The LLM-backed
// implementation is the default; tests substitute fixed results.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string, mem *Memory, biz *business.Profile) (TurnClassification, error)
}

// FallbackClassification is the conservative result used when the LLM fails
// entirely: low confidence, routed to message taking, never a false booking.
func FallbackClassification() TurnClassification {
	return TurnClassification{
		Intent:       IntentOther,
		Confidence:   0.3,
		NeedsMessage: true,
	}
}

// LLMIntentClassifier classifies utterances via the completion provider with
// a structured-output constraint.
type LLMIntentClassifier struct {
	client  LLMClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
	now     func() time.Time
}

// ClassifierOption configures the classifier.
type ClassifierOption func(*LLMIntentClassifier)

// WithClassifierTimeout bounds each classification call.
func WithClassifierTimeout(d time.Duration) ClassifierOption {
	return func(c *LLMIntentClassifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClassifierClock overrides the clock used to resolve relative dates.
func WithClassifierClock(now func() time.Time) ClassifierOption {
	return func(c *LLMIntentClassifier) {
		if now != nil {
			c.now = now
		}
	}
}

// NewLLMIntentClassifier creates the default classifier.
func NewLLMIntentClassifier(client LLMClient, model string, logger *logging.Logger, opts ...ClassifierOption) *LLMIntentClassifier {
	if client == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &LLMIntentClassifier{
		client:  client,
		model:   model,
		timeout: 12 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ IntentClassifier = (*LLMIntentClassifier)(nil)

// classificationWire is the JSON shape the model must return.
type classificationWire struct {
	Intent       string  `json:"intent"`
	Confidence   float64 `json:"confidence"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	PartySize    int     `json:"party_size"`
	Notes        string  `json:"notes"`
	NeedsMessage bool    `json:"needs_message"`
}

// Classify runs the LLM with a structured-output constraint. Malformed
// output is salvage-parsed; total failure returns the conservative default
// rather than an error the router would have to guess about.
func (c *LLMIntentClassifier) Classify(ctx context.Context, utterance string, mem *Memory, biz *business.Profile) (TurnClassification, error) {
	ctx, span := classifyTracer.Start(ctx, "conversation.classify")
	defer span.End()

	localNow := c.now().In(biz.Location())
	systemPrompt := buildClassifierPrompt(localNow, mem.Remembered)

	messages := mem.History()
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: utterance})

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Complete(callCtx, LLMRequest{
		Model:       c.model,
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   512,
		Temperature: 0,
		JSONOutput:  true,
	})
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues(c.model, "classify", status).Observe(latency.Seconds())
	observeLLMUsage(c.model, resp.Usage)

	if err != nil {
		c.logger.Error("intent classification failed", "error", err, "model", c.model)
		intentTotal.WithLabelValues(string(IntentOther), "fallback").Inc()
		return FallbackClassification(), nil
	}

	wire, err := parseClassification(resp.Text)
	if err != nil {
		c.logger.Error("intent classification unparseable", "error", err, "model", c.model)
		intentTotal.WithLabelValues(string(IntentOther), "fallback").Inc()
		return FallbackClassification(), nil
	}

	result := normalizeClassification(wire, localNow, c.logger)
	intentTotal.WithLabelValues(string(result.Intent), "llm").Inc()
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("frontdesk.intent", string(result.Intent)),
			attribute.Float64("frontdesk.confidence", result.Confidence),
			attribute.Bool("frontdesk.needs_message", result.NeedsMessage),
		)
	}
	return result, nil
}

func buildClassifierPrompt(localNow time.Time, remembered Entities) string {
	var b strings.Builder
	b.WriteString(`You classify one caller utterance for a phone answering agent.

CRITICAL: Return ONLY a JSON object, nothing else. No markdown, no code fences, no explanation.

Return this exact format:
{"intent": "booking", "confidence": 0.9, "name": "", "phone": "", "email": "", "date": "", "time": "", "party_size": 0, "notes": "", "needs_message": false}

Rules:
- intent is one of: booking, question, other, goodbye, confirmation.
- confidence is between 0 and 1.
- Extract only what the caller actually said; leave fields empty otherwise.
- phone: digits as spoken; omit if fewer than 10 digits were given.
- date: YYYY-MM-DD. time: HH:MM:SS, 24-hour.
- Resolve relative dates against the business's local date below.
- party_size must be a whole number; 0 when not mentioned.
- Set needs_message=true when the request cannot be resolved by booking or
  answering from a knowledge base (complaints, custom quotes, staff requests).
`)
	fmt.Fprintf(&b, "\nBusiness local date: %s (%s)\n", localNow.Format("2006-01-02"), localNow.Weekday())
	if remembered != (Entities{}) {
		b.WriteString("Already known about the caller (do not re-extract unless corrected):\n")
		if remembered.Name != "" {
			fmt.Fprintf(&b, "- name: %s\n", remembered.Name)
		}
		if remembered.Phone != "" {
			fmt.Fprintf(&b, "- phone: %s\n", remembered.Phone)
		}
		if remembered.RequestedDate != "" {
			fmt.Fprintf(&b, "- date: %s\n", remembered.RequestedDate)
		}
		if remembered.RequestedTime != "" {
			fmt.Fprintf(&b, "- time: %s\n", remembered.RequestedTime)
		}
	}
	return b.String()
}

// parseClassification tolerates fenced or chatty model output by extracting
// the first JSON object substring.
func parseClassification(raw string) (classificationWire, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	jsonText := raw
	if !strings.HasPrefix(jsonText, "{") {
		start := strings.Index(jsonText, "{")
		end := strings.LastIndex(jsonText, "}")
		if start >= 0 && end > start {
			jsonText = jsonText[start : end+1]
		}
	}

	var wire classificationWire
	if err := sonic.Unmarshal([]byte(jsonText), &wire); err != nil {
		return classificationWire{}, fmt.Errorf("conversation: classification parse: %w", err)
	}
	return wire, nil
}

func normalizeClassification(wire classificationWire, localNow time.Time, logger *logging.Logger) TurnClassification {
	result := TurnClassification{
		Intent:       normalizeIntent(wire.Intent),
		Confidence:   clampConfidence(wire.Confidence),
		Notes:        strings.TrimSpace(wire.Notes),
		NeedsMessage: wire.NeedsMessage,
	}

	result.Entities = Entities{
		Name:          strings.TrimSpace(wire.Name),
		Email:         strings.TrimSpace(wire.Email),
		Phone:         NormalizePhone(wire.Phone),
		RequestedDate: normalizeDate(wire.Date, localNow),
		RequestedTime: normalizeTime(wire.Time),
	}
	if wire.PartySize > 0 {
		result.Entities.PartySize = wire.PartySize
	}

	if wire.Phone != "" && result.Entities.Phone == "" {
		logger.Info("discarded partial phone candidate", "digits", len(digitsOnly(wire.Phone)))
	}
	return result
}

func normalizeIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentBooking:
		return IntentBooking
	case IntentQuestion:
		return IntentQuestion
	case IntentGoodbye:
		return IntentGoodbye
	case IntentConfirmation:
		return IntentConfirmation
	default:
		return IntentOther
	}
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizePhone reduces a candidate to digits and rejects anything shorter
// than ten digits. Partial numbers are treated as absent.
func NormalizePhone(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) < 10 {
		return ""
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeDate accepts YYYY-MM-DD and the relative words callers actually
// use, resolved against the business's local date.
func normalizeDate(raw string, localNow time.Time) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}

	switch raw {
	case "today", "tonight":
		return localNow.Format("2006-01-02")
	case "tomorrow":
		return localNow.AddDate(0, 0, 1).Format("2006-01-02")
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

// normalizeTime coerces common clock spellings to HH:MM:SS.
func normalizeTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	layouts := []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "3 PM", "3PM", "3pm", "3:04 pm", "3:04pm"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04:05")
		}
	}
	return ""
}
