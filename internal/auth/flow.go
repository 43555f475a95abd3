package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Errors surfaced to the user. The messages carry the exact command to run
// to recover, so they can be printed as-is.
var (
	ErrNotAuthenticated = errors.New("not authenticated — run `actl auth login` first")
	ErrUnauthorized     = errors.New("credential rejected by the service — run `actl auth login` again")
	ErrDenied           = errors.New("authorization was denied in the wallet")
	ErrExpired          = errors.New("pairing code expired before approval — run `actl auth login` again")
	ErrCancelled        = errors.New("login cancelled")
)

// State is the device-authorization flow state.
type State int

const (
	StateIdle State = iota
	StateCodeRequested
	StatePolling
	StateAuthenticated
	StateExpired
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCodeRequested:
		return "code-requested"
	case StatePolling:
		return "polling"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Clock abstracts time so the polling loop can be driven synchronously in
// tests without real delays. Sleep must return the context error if the
// context is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const (
	defaultPollInterval = 2 * time.Second
	defaultNetRetries   = 3
	retryBackoffBase    = 500 * time.Millisecond
)

// Flow drives a device authorization to a terminal state:
//
//	Idle → CodeRequested → Polling → {Authenticated, Expired, Cancelled, Failed}
//
// Network errors while requesting the code or polling are retried up to a
// bounded count with doubling backoff before the flow fails.
type Flow struct {
	client     *Client
	clock      Clock
	netRetries int
	state      State

	// OnCode is invoked once with the pairing code so the caller can show
	// the URL to the user before polling starts.
	OnCode func(*DeviceCode)
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithClock injects a clock (used by tests).
func WithClock(c Clock) FlowOption {
	return func(f *Flow) { f.clock = c }
}

// WithNetRetries sets how many times a failed network call is retried.
func WithNetRetries(n int) FlowOption {
	return func(f *Flow) { f.netRetries = n }
}

// NewFlow creates a device-authorization flow in the Idle state.
func NewFlow(client *Client, opts ...FlowOption) *Flow {
	f := &Flow{
		client:     client,
		clock:      systemClock{},
		netRetries: defaultNetRetries,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current flow state.
func (f *Flow) State() State { return f.state }

// Run executes the flow to a terminal state. On success the returned
// credential is non-nil and the state is StateAuthenticated. Cancelling ctx
// moves the flow to StateCancelled.
func (f *Flow) Run(ctx context.Context) (*CredentialPayload, error) {
	f.state = StateCodeRequested
	code, err := withRetry(ctx, f, func() (*DeviceCode, error) {
		return f.client.RequestCode(ctx)
	})
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("requesting pairing code: %w", err))
	}

	if f.OnCode != nil {
		f.OnCode(code)
	}

	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := f.clock.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

	f.state = StatePolling
	for {
		status, err := withRetry(ctx, f, func() (*StatusResult, error) {
			return f.client.PollStatus(ctx, code.PollToken)
		})
		if err != nil {
			return nil, f.fail(ctx, fmt.Errorf("polling authorization status: %w", err))
		}

		switch status.Status {
		case "approved":
			if status.Credential == nil || status.Credential.Token == "" {
				return nil, f.fail(ctx, fmt.Errorf("auth service: approved without a credential"))
			}
			f.state = StateAuthenticated
			return status.Credential, nil
		case "denied":
			f.state = StateFailed
			return nil, ErrDenied
		case "expired":
			f.state = StateExpired
			return nil, ErrExpired
		}

		// Still pending. The flow self-terminates at the server-declared
		// expiry; the sleep below overshoots it by at most one interval.
		if err := f.clock.Sleep(ctx, interval); err != nil {
			f.state = StateCancelled
			return nil, ErrCancelled
		}
		if f.clock.Now().After(deadline) {
			f.state = StateExpired
			return nil, ErrExpired
		}
	}
}

// fail resolves an error from a network call into the right terminal state:
// a cancelled context means the user interrupted, anything else is Failed.
func (f *Flow) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		f.state = StateCancelled
		return ErrCancelled
	}
	f.state = StateFailed
	return err
}

// withRetry calls fn up to netRetries+1 times, sleeping with doubling
// backoff between attempts. The last error is returned.
func withRetry[T any](ctx context.Context, f *Flow, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	backoff := retryBackoffBase
	for attempt := 0; attempt <= f.netRetries; attempt++ {
		if attempt > 0 {
			if err := f.clock.Sleep(ctx, backoff); err != nil {
				return zero, err
			}
			backoff *= 2
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
