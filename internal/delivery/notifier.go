// Package delivery carries notifications to users other than the caller.
// Delivery is best effort: it runs after the primary write and its failures
// never reach the request that triggered it.
package delivery

import (
	"context"
	"errors"
)

// Message is one notification addressed to UserID. Email is optional and only
// used by channels that need it.
type Message struct {
	UserID string
	Email  string
	Title  string
	Body   string
	Type   string
	Data   map[string]interface{}
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// MultiNotifier sends to every channel and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Disabled drops every message.
var Disabled = NotifierFunc(func(context.Context, Message) error { return nil })
