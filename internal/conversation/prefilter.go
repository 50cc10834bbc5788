package conversation

import (
	"regexp"
	"strings"
)

// The pre-filters below are heuristics, not a grammar. They exist to decide
// whether the expensive classification call is needed at all and to catch
// message/callback requests that must win over intent classification. They
// are deliberately isolated from the state machine so a stronger model can
// replace them without touching routing.

var bookingVocabulary = []string{
	"book", "booking", "appointment", "reserve", "reservation",
	"schedule", "reschedule", "availability", "available", "opening",
	"slot", "come in", "party of", "table for", "fit me in",
}

// Weekday and daypart words count as booking signals on their own: callers
// often name a time without ever saying "book".
var scheduleVocabulary = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday",
	"saturday", "sunday", "today", "tomorrow", "tonight",
	"this morning", "this afternoon", "this evening", "o'clock", "noon",
}

var messageVocabulary = []string{
	"leave a message", "take a message", "message for", "pass along",
	"call me back", "call back", "callback", "have them call",
	"have him call", "have her call", "speak to the", "talk to the",
	"speak with the", "tell the manager", "tell the owner",
}

var affirmations = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {},
	"ok": {}, "okay": {}, "perfect": {}, "great": {}, "sounds good": {},
	"that works": {}, "works for me": {}, "correct": {}, "right": {},
	"please": {}, "yes please": {}, "absolutely": {}, "definitely": {},
}

var goodbyeVocabulary = []string{
	"goodbye", "good bye", "see you", "that's all", "thats all",
	"thank you, that's it", "nothing else", "have a good day",
}

// "bye" needs word boundaries so "maybe" doesn't read as a farewell.
var byeWord = regexp.MustCompile(`(^|\W)bye($|\W)`)

// IsSimpleAffirmation reports whether the utterance is a bare short yes.
func IsSimpleAffirmation(utterance string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(utterance))
	cleaned = strings.Trim(cleaned, ".!,")
	if cleaned == "" || len(cleaned) > 24 {
		return false
	}
	_, ok := affirmations[cleaned]
	return ok
}

// ContainsBookingVocabulary scans one utterance for booking-ish wording.
func ContainsBookingVocabulary(text string) bool {
	return containsAny(text, bookingVocabulary)
}

// ContainsMessageVocabulary scans one utterance for message/callback wording.
func ContainsMessageVocabulary(text string) bool {
	return containsAny(text, messageVocabulary)
}

// ContainsGoodbyeVocabulary scans one utterance for closing wording.
func ContainsGoodbyeVocabulary(text string) bool {
	if byeWord.MatchString(strings.ToLower(text)) {
		return true
	}
	return containsAny(text, goodbyeVocabulary)
}

// NeedsClassification decides whether the turn justifies an LLM call:
// booking, schedule, or message vocabulary in the utterance, or anywhere
// earlier in the caller side of the transcript.
func NeedsClassification(utterance string, transcript []TranscriptEntry) bool {
	if classifiableVocabulary(utterance) {
		return true
	}
	for _, e := range transcript {
		if e.Speaker != SpeakerCaller {
			continue
		}
		if classifiableVocabulary(e.Text) {
			return true
		}
	}
	return false
}

func classifiableVocabulary(text string) bool {
	return ContainsBookingVocabulary(text) ||
		ContainsMessageVocabulary(text) ||
		containsAny(text, scheduleVocabulary)
}

// TranscriptMentionsMessageTaking reports whether the caller asked for a
// message earlier, or the agent already said it is taking one.
func TranscriptMentionsMessageTaking(transcript []TranscriptEntry) bool {
	for _, e := range transcript {
		if e.Speaker == SpeakerCaller && ContainsMessageVocabulary(e.Text) {
			return true
		}
		if e.Speaker == SpeakerAgent && strings.Contains(strings.ToLower(e.Text), "take a message") {
			return true
		}
	}
	return false
}

func containsAny(text string, vocabulary []string) bool {
	lowered := strings.ToLower(text)
	for _, word := range vocabulary {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
