package translator

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pricofy/product-catalog/internal/obs"
)

// Breaker fails fast while the wrapped backend keeps failing. It never
// retries a call.
type Breaker struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. The circuit opens after maxFailures consecutive
// failures and lets a trial request through after timeout.
func NewBreaker(name string, next Translator, maxFailures uint32, timeout time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A cancelled request says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			obs.Logger.Warn("translator_breaker_state", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Translate calls the wrapped backend unless the circuit is open.
func (b *Breaker) Translate(ctx context.Context, text, targetLang string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, targetLang)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the current circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
