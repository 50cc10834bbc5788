package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

// Canned replies for the deterministic states. Phrasing is stable so the
// transcript scan for prior confirmations keeps working.
const (
	confirmedPrefix   = "You're all set"
	messageTakenReply = "I've taken down your message and someone from the team will get back to you as soon as possible. Is there anything else I can help with?"
	conflictPrefix    = "I'm sorry, that time is already taken."
	genericFallback   = "I want to make sure you get an accurate answer, so let me take a message and have the team follow up with you."
)

// ConfirmationReply renders the booking confirmation the caller hears after
// a successful commit.
func ConfirmationReply(name, date, slotTime string) string {
	booked := fmt.Sprintf("We have you down for %s at %s. We'll see you then!", spokenDate(date), spokenTime(slotTime))
	if who := firstName(name); who != "" {
		return fmt.Sprintf("%s, %s. %s", confirmedPrefix, who, booked)
	}
	return fmt.Sprintf("%s. %s", confirmedPrefix, booked)
}

// ConflictReply offers alternatives after a slot was taken, or routes to a
// message when none exist.
func ConflictReply(alternatives []string) string {
	if len(alternatives) == 0 {
		return conflictPrefix + " I don't see another opening nearby, so let me take a message and have the team find a time that works for you."
	}
	spoken := make([]string, len(alternatives))
	for i, alt := range alternatives {
		spoken[i] = spokenTime(alt)
	}
	return fmt.Sprintf("%s We do have %s available. Would any of those work?", conflictPrefix, joinSpoken(spoken))
}

// MissingFieldsReply asks for the next pieces of booking information.
func MissingFieldsReply(missing []string) string {
	if len(missing) == 0 {
		return "Got it. Let me get that booked for you."
	}
	return fmt.Sprintf("Happy to get that booked. Could I get your %s?", joinSpoken(missing))
}

// PhoneConfirmReply reads the remembered number back before committing.
func PhoneConfirmReply(phone string) string {
	return fmt.Sprintf("Just to confirm, the best number to reach you is %s, is that right?", spokenPhone(phone))
}

// ClosedReply tells the caller the requested day has no open window.
func ClosedReply(date string) string {
	return fmt.Sprintf("I'm sorry, we're closed on %s. Is there another day that would work for you?", spokenDate(date))
}

// GoodbyeReply uses the business's configured closing line when present.
func GoodbyeReply(closing string) string {
	if strings.TrimSpace(closing) != "" {
		return closing
	}
	return "Thanks for calling. Have a great day!"
}

// AckReply answers bare affirmations that carry no actionable content.
func AckReply() string {
	return "Great! Is there anything else I can help you with?"
}

// TranscriptConfirmed reports whether a prior turn already delivered a
// booking confirmation, used to skip re-booking on repeated affirmations.
func TranscriptConfirmed(mem *Memory) bool {
	return mem.TranscriptContains(func(e TranscriptEntry) bool {
		return e.Speaker == SpeakerAgent && strings.HasPrefix(e.Text, confirmedPrefix)
	})
}

// ReplyGenerator produces the grounded free-form replies for questions and
// generic turns.
type ReplyGenerator struct {
	client  LLMClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewReplyGenerator wires the generator.
func NewReplyGenerator(client LLMClient, model string, logger *logging.Logger) *ReplyGenerator {
	if client == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplyGenerator{client: client, model: model, timeout: 12 * time.Second, logger: logger}
}

// Generate answers a question grounded strictly in the business context. The
// model is told to defer rather than invent; any failure falls back to the
// message-taking phrasing so the caller is never left hanging.
func (g *ReplyGenerator) Generate(ctx context.Context, utterance string, mem *Memory, bizCtx *BusinessContext) (string, bool) {
	systemPrompt := buildReplyPrompt(bizCtx)

	messages := mem.History()
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: utterance})

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Complete(callCtx, LLMRequest{
		Model:       g.model,
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.4,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues(g.model, "reply", status).Observe(time.Since(start).Seconds())
	observeLLMUsage(g.model, resp.Usage)

	if err != nil {
		g.logger.Error("reply generation failed", "error", err, "model", g.model)
		return genericFallback, false
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" || strings.Contains(text, "TAKE_MESSAGE") {
		return genericFallback, false
	}
	return text, true
}

func buildReplyPrompt(bizCtx *BusinessContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the phone receptionist for %s. Answer the caller in one or two short sentences, warm and professional, as speech.\n\n", bizCtx.Profile.Name)
	b.WriteString("Answer ONLY from the facts below. If the answer is not in the facts, reply with exactly: TAKE_MESSAGE\n\n")
	fmt.Fprintf(&b, "Business hours:\n%s\n", bizCtx.Profile.HoursContext())
	if bizCtx.OpenNow {
		b.WriteString("The business is currently open.\n")
	} else {
		b.WriteString("The business is currently closed.\n")
	}
	if bizCtx.Profile.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", bizCtx.Profile.Address)
	}
	if bizCtx.Profile.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", bizCtx.Profile.Phone)
	}
	if kb := bizCtx.KnowledgeContext(); kb != "" {
		b.WriteString("\n")
		b.WriteString(kb)
	}
	return b.String()
}

func firstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return ""
	}
	if idx := strings.IndexByte(full, ' '); idx > 0 {
		return full[:idx]
	}
	return full
}

// spokenDate renders a stored YYYY-MM-DD date as natural speech.
func spokenDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2")
}

// spokenTime renders a stored HH:MM:SS slot as natural speech.
func spokenTime(slot string) string {
	t, err := time.Parse("15:04:05", slot)
	if err != nil {
		if t2, err2 := time.Parse("15:04", slot); err2 == nil {
			t = t2
		} else {
			return slot
		}
	}
	if t.Minute() == 0 {
		return strings.ToLower(t.Format("3 PM"))
	}
	return strings.ToLower(t.Format("3:04 PM"))
}

// spokenPhone groups a ten-digit number for readback.
func spokenPhone(phone string) string {
	if len(phone) == 10 {
		return fmt.Sprintf("%s-%s-%s", phone[:3], phone[3:6], phone[6:])
	}
	if len(phone) == 11 && phone[0] == '1' {
		return fmt.Sprintf("1-%s-%s-%s", phone[1:4], phone[4:7], phone[7:])
	}
	return phone
}

func joinSpoken(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
