package conversation

import "time"

// Intent is the classifier's read of what the caller wants this turn.
type Intent string

const (
	IntentBooking      Intent = "booking"
	IntentQuestion     Intent = "question"
	IntentOther        Intent = "other"
	IntentGoodbye      Intent = "goodbye"
	IntentConfirmation Intent = "confirmation"
)

// Speaker identifies who said a transcript line.
type Speaker string

const (
	SpeakerCaller Speaker = "caller"
	SpeakerAgent  Speaker = "agent"
)

// TranscriptEntry is one line of the running call transcript.
type TranscriptEntry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Entities holds booking-relevant fields. Empty string / zero means absent;
// once remembered a field persists across turns until overwritten by a newer
// non-empty extraction.
type Entities struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	RequestedDate string `json:"requested_date,omitempty"` // YYYY-MM-DD
	RequestedTime string `json:"requested_time,omitempty"` // HH:MM:SS
	PartySize     int    `json:"party_size,omitempty"`
}

// TurnClassification is the ephemeral per-turn classifier output.
type TurnClassification struct {
	Intent       Intent
	Confidence   float64
	Entities     Entities
	Notes        string
	NeedsMessage bool
}

// TurnState names the branch the router selected for a turn. Selected per
// turn, never persisted beyond it.
type TurnState string

const (
	StateSimpleAck           TurnState = "simple_ack"
	StateBookingInProgress   TurnState = "booking_in_progress"
	StateBookingConfirmPhone TurnState = "booking_confirm_phone"
	StateBookingCommit       TurnState = "booking_commit"
	StateBookingConflict     TurnState = "booking_conflict"
	StateMessageTaking       TurnState = "message_taking"
	StateGoodbye             TurnState = "goodbye"
	StateGenericReply        TurnState = "generic_reply"
)

// TurnRequest is one caller utterance plus the opaque client-carried state.
type TurnRequest struct {
	BusinessID  string `json:"business_id,omitempty"`
	Utterance   string `json:"utterance_text"`
	ClientState string `json:"opaque_client_state,omitempty"`
}

// TurnResponse is what the telephony layer speaks back and carries forward.
type TurnResponse struct {
	Reply                 string    `json:"reply_text"`
	ClientState           string    `json:"updated_opaque_client_state"`
	HasAppointment        bool      `json:"has_appointment"`
	NeedsMessage          bool      `json:"needs_message"`
	SuggestedAlternatives []string  `json:"suggested_alternatives,omitempty"`
	State                 TurnState `json:"-"`
	Timestamp             time.Time `json:"-"`
}
