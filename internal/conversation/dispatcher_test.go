package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

type countingProcessor struct {
	calls atomic.Int64
	resp  TurnResponse
	err   error
}

func (p *countingProcessor) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	p.calls.Add(1)
	resp := p.resp
	resp.Reply = "echo: " + req.Utterance
	return resp, p.err
}

func TestDispatcherRoundTrip(t *testing.T) {
	proc := &countingProcessor{resp: TurnResponse{State: StateGenericReply}}
	d := NewDispatcher(proc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(1))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := d.ProcessTurn(ctx, TurnRequest{BusinessID: "biz-1", Utterance: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", resp.Reply)
	assert.Equal(t, int64(1), proc.calls.Load())
}

func TestDispatcherPropagatesProcessorError(t *testing.T) {
	wantErr := errors.New("boom")
	proc := &countingProcessor{err: wantErr}
	d := NewDispatcher(proc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(1))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.ProcessTurn(ctx, TurnRequest{BusinessID: "biz-1", Utterance: "hello"})
	assert.ErrorIs(t, err, wantErr)
}

func TestDispatcherManyConcurrentTurns(t *testing.T) {
	proc := &countingProcessor{resp: TurnResponse{State: StateGenericReply}}
	d := NewDispatcher(proc, NewMemoryQueue(64), logging.Default(), WithWorkerCount(4))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := d.ProcessTurn(ctx, TurnRequest{BusinessID: "biz-1", Utterance: "hi"})
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int64(n), proc.calls.Load())
}

func TestDispatcherShutdown(t *testing.T) {
	proc := &countingProcessor{}
	d := NewDispatcher(proc, NewMemoryQueue(16), logging.Default(), WithWorkerCount(2))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
}

func TestMemoryQueueSendReceive(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "one"))
	require.NoError(t, q.Send(ctx, "two"))

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)

	// An empty queue with a wait returns no messages after the timeout.
	msgs, err = q.Receive(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestTurnPayloadCodec(t *testing.T) {
	payload := turnPayload{
		ID: "job-1",
		Turn: TurnRequest{
			BusinessID:  "biz-1",
			Utterance:   "table for two",
			ClientState: "abc123",
		},
	}

	body, err := encodeTurnPayload(payload)
	require.NoError(t, err)

	decoded, err := decodeTurnPayload(body)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = decodeTurnPayload("{not json")
	assert.Error(t, err)
}
