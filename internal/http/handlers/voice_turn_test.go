package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

type stubProcessor struct {
	resp    conversation.TurnResponse
	err     error
	panics  bool
	lastReq conversation.TurnRequest
	calls   int
}

func (s *stubProcessor) ProcessTurn(_ context.Context, req conversation.TurnRequest) (conversation.TurnResponse, error) {
	s.calls++
	s.lastReq = req
	if s.panics {
		panic("processor exploded")
	}
	return s.resp, s.err
}

func turnBody(t *testing.T, req conversation.TurnRequest) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestVoiceTurnHandler_Success(t *testing.T) {
	proc := &stubProcessor{resp: conversation.TurnResponse{
		Reply:       "We have you down for Monday at 2 pm.",
		ClientState: "next-state",
	}}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", turnBody(t, conversation.TurnRequest{
		BusinessID:  "biz-1",
		Utterance:   "I'd like a table for four",
		ClientState: "prior-state",
	}))
	handler.HandleTurn(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp conversation.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "We have you down for Monday at 2 pm.", resp.Reply)
	assert.Equal(t, "next-state", resp.ClientState)
	assert.Equal(t, "biz-1", proc.lastReq.BusinessID)
	assert.Equal(t, "prior-state", proc.lastReq.ClientState)
}

func TestVoiceTurnHandler_BadJSON(t *testing.T) {
	proc := &stubProcessor{}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", strings.NewReader("{not json"))
	handler.HandleTurn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, proc.calls)
}

func TestVoiceTurnHandler_UnknownBusiness(t *testing.T) {
	proc := &stubProcessor{err: conversation.ErrBusinessNotFound}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", turnBody(t, conversation.TurnRequest{
		BusinessID: "nope",
		Utterance:  "hi there",
	}))
	handler.HandleTurn(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoiceTurnHandler_InvalidTurn(t *testing.T) {
	proc := &stubProcessor{err: conversation.ErrInvalidTurn}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", turnBody(t, conversation.TurnRequest{
		BusinessID: "biz-1",
		Utterance:  "hi",
	}))
	handler.HandleTurn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoiceTurnHandler_ProcessorErrorStillAnswers(t *testing.T) {
	proc := &stubProcessor{err: context.DeadlineExceeded}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", turnBody(t, conversation.TurnRequest{
		BusinessID:  "biz-1",
		Utterance:   "book me in",
		ClientState: "keep-this",
	}))
	handler.HandleTurn(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp conversation.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, genericFailureReply, resp.Reply)
	assert.Equal(t, "keep-this", resp.ClientState)
}

func TestVoiceTurnHandler_ProcessorPanicStillAnswers(t *testing.T) {
	proc := &stubProcessor{panics: true}
	handler := NewVoiceTurnHandler(proc, logging.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/turn", turnBody(t, conversation.TurnRequest{
		BusinessID:  "biz-1",
		Utterance:   "book me in",
		ClientState: "keep-this",
	}))
	handler.HandleTurn(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp conversation.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, genericFailureReply, resp.Reply)
	assert.Equal(t, "keep-this", resp.ClientState)
}
