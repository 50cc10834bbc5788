package conversation

import (
	"encoding/base64"
	"strings"

	"github.com/bytedance/sonic"
)

// maxTranscriptEntries bounds the memory blob: 25 exchanges.
const maxTranscriptEntries = 50

// Memory is the caller-carried conversation state. The orchestrator is
// stateless between turns; everything it needs round-trips through this
// blob. It is caller supplied and unauthenticated beyond the business ID
// reference, so datastore reads always re-scope by business ID.
type Memory struct {
	BusinessID string            `json:"business_id"`
	TurnCount  int               `json:"turn_count"`
	Transcript []TranscriptEntry `json:"transcript,omitempty"`
	Remembered Entities          `json:"remembered_entities"`

	// PhoneConfirmed is set once the agent has read the phone number back
	// and the caller agreed to it.
	PhoneConfirmed bool `json:"phone_confirmed,omitempty"`

	// Pending slot awaiting a caller yes/no, set when the agent proposes a
	// specific time. A bare affirmation commits exactly this slot.
	PendingDate string `json:"pending_date,omitempty"`
	PendingTime string `json:"pending_time,omitempty"`

	// MessageTaking records that the agent already told the caller it is
	// taking a message; later turns stay in that branch.
	MessageTaking bool `json:"message_taking,omitempty"`
}

// NewMemory returns an empty memory for a business.
func NewMemory(businessID string) Memory {
	return Memory{BusinessID: businessID}
}

// DecodeMemory parses the caller-supplied blob. Any failure returns a fresh
// default memory: the conversation restarts from scratch rather than the
// turn failing.
func DecodeMemory(raw, businessID string) Memory {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewMemory(businessID)
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return NewMemory(businessID)
	}

	var m Memory
	if err := sonic.Unmarshal(data, &m); err != nil {
		return NewMemory(businessID)
	}
	// A blob minted for another business never carries over.
	if m.BusinessID != "" && m.BusinessID != businessID {
		return NewMemory(businessID)
	}
	m.BusinessID = businessID
	m.capTranscript()
	return m
}

// EncodeMemory serializes memory into the opaque wire form. Encoding a
// well-formed memory cannot fail; a marshal error yields an empty blob and
// the next turn starts clean.
func EncodeMemory(m Memory) string {
	m.capTranscript()
	data, err := sonic.Marshal(&m)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Append adds a transcript line and drops the oldest entries past the cap.
func (m *Memory) Append(speaker Speaker, text string) {
	m.Transcript = append(m.Transcript, TranscriptEntry{Speaker: speaker, Text: text})
	m.capTranscript()
}

// TranscriptContains reports whether any line matches the predicate.
func (m *Memory) TranscriptContains(match func(TranscriptEntry) bool) bool {
	for _, e := range m.Transcript {
		if match(e) {
			return true
		}
	}
	return false
}

// History converts the transcript into chat messages for LLM prompts.
func (m *Memory) History() []ChatMessage {
	history := make([]ChatMessage, 0, len(m.Transcript))
	for _, e := range m.Transcript {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		role := ChatRoleUser
		if e.Speaker == SpeakerAgent {
			role = ChatRoleAssistant
		}
		history = append(history, ChatMessage{Role: role, Content: e.Text})
	}
	return history
}

func (m *Memory) capTranscript() {
	if len(m.Transcript) > maxTranscriptEntries {
		m.Transcript = m.Transcript[len(m.Transcript)-maxTranscriptEntries:]
	}
}
