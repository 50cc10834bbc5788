package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

// TurnProcessor handles one utterance. The router is the real
// implementation; the dispatcher wraps it behind a queue.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error)
}

var _ TurnProcessor = (*Router)(nil)

// ErrDispatcherClosed indicates the dispatcher is no longer accepting work.
var ErrDispatcherClosed = errors.New("conversation: dispatcher closed")

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type turnPayload struct {
	ID   string      `json:"id"`
	Turn TurnRequest `json:"turn"`
}

// Dispatcher routes turns through a queue before invoking the turn engine.
// This allows the system to point at LocalStack SQS during development and
// swap to AWS SQS in production without touching the HTTP handlers.
type Dispatcher struct {
	processor TurnProcessor
	queue     queueClient
	logger    *logging.Logger

	cfg dispatcherConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending sync.Map // jobID -> chan dispatchResult
}

var _ TurnProcessor = (*Dispatcher)(nil)

const (
	defaultWorkers          = 2
	defaultReceiveWait      = 2  // seconds
	defaultReceiveMax       = 5  // messages
	maxReceiveWaitSeconds   = 20 // SQS limit
	maxReceiveBatchMessages = 10
)

type dispatcherConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*dispatcherConfig)

// WithWorkerCount overrides the number of queue polling goroutines.
func WithWorkerCount(workers int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for ReceiveMessage calls.
func WithReceiveWaitSeconds(seconds int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWaitSeconds {
			seconds = maxReceiveWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchMessages {
			size = maxReceiveBatchMessages
		}
		cfg.receiveBatchSize = size
	}
}

// NewDispatcher wires a queue-backed dispatcher around the supplied processor.
func NewDispatcher(processor TurnProcessor, queue queueClient, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if processor == nil {
		panic("conversation: processor cannot be nil")
	}
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := dispatcherConfig{
		workers:          defaultWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		processor: processor,
		queue:     queue,
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(i + 1)
	}

	return d
}

// ProcessTurn enqueues the turn and blocks until a worker completes it.
func (d *Dispatcher) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	jobID := uuid.NewString()
	body, err := encodeTurnPayload(turnPayload{ID: jobID, Turn: req})
	if err != nil {
		return TurnResponse{}, err
	}

	resultCh := make(chan dispatchResult, 1)
	d.pending.Store(jobID, resultCh)
	defer d.pending.Delete(jobID)

	if err := d.queue.Send(ctx, body); err != nil {
		return TurnResponse{}, fmt.Errorf("conversation: enqueue turn: %w", err)
	}

	select {
	case <-ctx.Done():
		return TurnResponse{}, ctx.Err()
	case res := <-resultCh:
		return res.response, res.err
	}
}

// Shutdown stops worker goroutines and notifies any pending callers.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	d.pending.Range(func(key, value any) bool {
		if ch, ok := value.(chan dispatchResult); ok {
			select {
			case ch <- dispatchResult{err: ErrDispatcherClosed}:
			default:
			}
		}
		d.pending.Delete(key)
		return true
	})

	return nil
}

func (d *Dispatcher) runWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("turn dispatcher worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Debug("turn dispatcher worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(d.ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive turn jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if len(messages) == 0 {
			continue
		}

		for _, msg := range messages {
			d.handleQueueMessage(msg)
		}
	}
}

func (d *Dispatcher) handleQueueMessage(msg queueMessage) {
	payload, err := decodeTurnPayload(msg.Body)
	if err != nil {
		d.logger.Error("failed to decode turn job", "error", err)
		deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.queue.Delete(deleteCtx, msg.ReceiptHandle)
		return
	}

	resp, procErr := d.processor.ProcessTurn(d.ctx, payload.Turn)

	deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if delErr := d.queue.Delete(deleteCtx, msg.ReceiptHandle); delErr != nil {
		d.logger.Error("failed to delete turn job", "error", delErr)
	}

	d.deliverResult(payload.ID, resp, procErr)
}

func (d *Dispatcher) deliverResult(jobID string, resp TurnResponse, err error) {
	value, ok := d.pending.Load(jobID)
	if !ok {
		d.logger.Debug("no waiting caller for turn job", "job_id", jobID)
		return
	}

	ch, ok := value.(chan dispatchResult)
	if !ok {
		d.logger.Error("turn dispatcher pending map corrupted", "job_id", jobID)
		d.pending.Delete(jobID)
		return
	}

	select {
	case ch <- dispatchResult{response: resp, err: err}:
	default:
	}
}

type dispatchResult struct {
	response TurnResponse
	err      error
}
