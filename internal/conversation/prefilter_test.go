package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSimpleAffirmation(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"yes", true},
		{"Yeah!", true},
		{"  Sounds good. ", true},
		{"that works", true},
		{"OKAY", true},
		{"yes, book me for tuesday at 2", false},
		{"no", false},
		{"", false},
		{"absolutely wonderful weather today", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSimpleAffirmation(tt.utterance))
		})
	}
}

func TestVocabularyScans(t *testing.T) {
	assert.True(t, ContainsBookingVocabulary("I'd like to book a table for four"))
	assert.True(t, ContainsBookingVocabulary("do you have any AVAILABILITY friday?"))
	assert.False(t, ContainsBookingVocabulary("what are your hours?"))

	assert.True(t, ContainsMessageVocabulary("can you take a message for the owner"))
	assert.True(t, ContainsMessageVocabulary("have them call me back please"))
	assert.False(t, ContainsMessageVocabulary("I'd like an appointment"))

	assert.True(t, ContainsGoodbyeVocabulary("ok bye now"))
	assert.False(t, ContainsGoodbyeVocabulary("table for two"))
	assert.False(t, ContainsGoodbyeVocabulary("maybe a bit later"))
}

func TestNeedsClassification(t *testing.T) {
	transcript := []TranscriptEntry{
		{Speaker: SpeakerCaller, Text: "hi, do you have an opening tomorrow?"},
		{Speaker: SpeakerAgent, Text: "We do, what time works?"},
	}

	assert.True(t, NeedsClassification("around 2pm I think", transcript))
	assert.True(t, NeedsClassification("I want to book something", nil))
	assert.True(t, NeedsClassification("maybe tuesday instead?", nil))
	assert.False(t, NeedsClassification("what's your address?", nil))
}

func TestTranscriptMentionsMessageTaking(t *testing.T) {
	callerAsked := []TranscriptEntry{
		{Speaker: SpeakerCaller, Text: "I'd like to leave a message for the manager"},
	}
	agentSaid := []TranscriptEntry{
		{Speaker: SpeakerAgent, Text: "Of course, I can take a message."},
	}
	neither := []TranscriptEntry{
		{Speaker: SpeakerCaller, Text: "do you do walk-ins?"},
	}

	assert.True(t, TranscriptMentionsMessageTaking(callerAsked))
	assert.True(t, TranscriptMentionsMessageTaking(agentSaid))
	assert.False(t, TranscriptMentionsMessageTaking(neither))
}
