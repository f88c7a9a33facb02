package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

// errNoToken is the per-recipient error recorded when no device token exists.
const errNoToken = "No FCM token"

// Config bounds the dispatcher's external calls. An unbounded hang on one
// recipient must not block aggregation of the others.
type Config struct {
	// ProviderTimeout bounds a single provider submission.
	ProviderTimeout time.Duration
	// StoreTimeout bounds a single token lookup, token delete or history append.
	StoreTimeout time.Duration
	// BatchTimeout, if set, bounds the whole dispatch call. Recipients still
	// unresolved at the deadline are folded into the error list, never dropped.
	BatchTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 10 * time.Second
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
}

// Dispatcher fans a single message out to a set of recipients. All three
// collaborators are constructed dependencies so the core runs without a real
// network or database in tests.
type Dispatcher struct {
	tokens   push.TokenStore
	provider push.Provider
	history  push.HistoryStore
	cfg      Config
	logger   *slog.Logger
}

func NewDispatcher(
	tokens push.TokenStore,
	provider push.Provider,
	history push.HistoryStore,
	cfg Config,
	logger *slog.Logger,
) *Dispatcher {
	cfg.applyDefaults()
	return &Dispatcher{
		tokens:   tokens,
		provider: provider,
		history:  history,
		cfg:      cfg,
		logger:   logger.With("component", "Dispatcher"),
	}
}

// Dispatch delivers the message to every recipient concurrently and returns
// once every recipient's independent task has completed. Partial success is
// the normal case: per-recipient failures land in the result's error list and
// never propagate. The only errors returned are precondition violations,
// checked before any store or provider call.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	recipientIDs []string,
	title string,
	body string,
	data map[string]string,
) (*push.DispatchResult, error) {
	if len(recipientIDs) == 0 {
		return nil, fmt.Errorf("%w: recipientIds required", push.ErrInvalidRequest)
	}
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title and body required", push.ErrInvalidRequest)
	}

	if d.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.BatchTimeout)
		defer cancel()
	}

	start := time.Now()
	result := &push.DispatchResult{Sent: make([]push.SentReceipt, 0, len(recipientIDs))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range recipientIDs {
		wg.Add(1)
		go func(recipientID string) {
			defer wg.Done()
			receipt, dispatchErr := d.deliverOne(ctx, recipientID, title, body, data, start)

			mu.Lock()
			defer mu.Unlock()
			if dispatchErr != nil {
				result.Errors = append(result.Errors, *dispatchErr)
				return
			}
			result.Sent = append(result.Sent, receipt)
		}(id)
	}
	wg.Wait()

	result.TotalElapsedMs = time.Since(start).Milliseconds()
	d.logger.Info("Dispatch complete",
		"recipients", len(recipientIDs),
		"sent", len(result.Sent),
		"errors", len(result.Errors),
		"elapsed_ms", result.TotalElapsedMs,
	)
	return result, nil
}

// deliverOne runs a single recipient's pipeline:
// token lookup -> provider submission (in parallel with the history append).
// Every failure is folded into a DispatchError; nothing escapes.
func (d *Dispatcher) deliverOne(
	ctx context.Context,
	recipientID string,
	title string,
	body string,
	data map[string]string,
	start time.Time,
) (push.SentReceipt, *push.DispatchError) {
	logger := d.logger.With("recipient_id", recipientID)

	lookupCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	record, err := d.tokens.Get(lookupCtx, recipientID)
	cancel()

	if errors.Is(err, push.ErrTokenNotFound) {
		d.appendHistory(ctx, push.HistoryRecord{
			RecipientID: recipientID,
			Title:       title,
			Body:        body,
			Data:        data,
			Outcome:     push.OutcomeSkipped,
			ErrorDetail: errNoToken,
			CreatedAt:   time.Now().UTC(),
		})
		return push.SentReceipt{}, &push.DispatchError{RecipientID: recipientID, Error: errNoToken}
	}
	if err != nil {
		logger.Error("Token lookup failed", "err", err)
		d.appendHistory(ctx, push.HistoryRecord{
			RecipientID: recipientID,
			Title:       title,
			Body:        body,
			Data:        data,
			Outcome:     push.OutcomeFailed,
			ErrorDetail: err.Error(),
			CreatedAt:   time.Now().UTC(),
		})
		return push.SentReceipt{}, &push.DispatchError{RecipientID: recipientID, Error: classify(err)}
	}

	env := newEnvelope(title, body, data)

	// The history entry is written at submission time, concurrently with the
	// provider call, and is not rolled back on delivery failure. The log may
	// briefly say "sent" ahead of confirmed delivery; that gap is accepted.
	histDone := make(chan struct{})
	go func() {
		defer close(histDone)
		d.appendHistory(ctx, push.HistoryRecord{
			RecipientID:   recipientID,
			Token:         record.Token,
			Title:         title,
			Body:          body,
			Data:          data,
			Outcome:       push.OutcomeSent,
			CorrelationID: env.CorrelationID,
			CreatedAt:     env.SentAt,
		})
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.ProviderTimeout)
	messageID, err := d.provider.Send(sendCtx, env, record.Token)
	cancel()
	<-histDone

	if err != nil {
		if push.IsTokenNotRegistered(err) {
			// Self-healing: the provider says this token is dead, so drop the
			// record before reporting the failure. Delete is idempotent.
			delCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
			if delErr := d.tokens.Delete(delCtx, recipientID); delErr != nil {
				logger.Warn("Failed to delete invalid token", "err", delErr)
			} else {
				logger.Info("Removed invalid device token")
			}
			cancel()
		}
		logger.Warn("Provider submission failed", "correlation_id", env.CorrelationID, "err", err)
		return push.SentReceipt{}, &push.DispatchError{RecipientID: recipientID, Error: classify(err)}
	}

	return push.SentReceipt{
		RecipientID: recipientID,
		MessageID:   messageID,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}, nil
}

func (d *Dispatcher) appendHistory(ctx context.Context, rec push.HistoryRecord) {
	// History is best-effort audit, not a transaction: a failed append is
	// logged and never changes the recipient's delivery outcome.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.StoreTimeout)
	defer cancel()
	if err := d.history.Append(appendCtx, rec); err != nil {
		d.logger.Warn("History append failed", "recipient_id", rec.RecipientID, "err", err)
	}
}

func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout: " + err.Error()
	}
	return err.Error()
}
