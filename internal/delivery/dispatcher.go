package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmacy_backend/internal/logger"
)

const defaultTimeout = 5 * time.Second

// Dispatcher runs a Notifier off the request path.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if notifier == nil {
		notifier = Disabled
	}
	return &Dispatcher{notifier: notifier, timeout: timeout}
}

// Dispatch sends msg in the background and returns immediately. The request
// context's values (request id, user id) are kept for logging; its
// cancellation is not, so a finished request does not abort delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if d == nil {
		return
	}
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.CtxError(bg, "notification delivery panicked",
					"recipient", msg.UserID,
					"panic", fmt.Sprint(r),
				)
			}
		}()

		sendCtx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()

		if err := d.notifier.Notify(sendCtx, msg); err != nil {
			logger.CtxWarn(bg, "notification delivery failed",
				"recipient", msg.UserID,
				"type", msg.Type,
				"error", err.Error(),
			)
			return
		}
		logger.CtxDebug(bg, "notification delivered", "recipient", msg.UserID, "type", msg.Type)
	}()
}

// Wait blocks until every dispatched delivery has finished. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
