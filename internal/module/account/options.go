package account

import (
	"time"

	"github.com/google/uuid"
)

// Metrics is the subset of application metrics the services record.
type Metrics interface {
	RecordOperation(operation string, err error)
	RecordRosterConflict()
	RecordInviteMail(err error)
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(string, error) {}
func (nopMetrics) RecordRosterConflict()         {}
func (nopMetrics) RecordInviteMail(error)        {}

type options struct {
	now     func() time.Time
	newID     func() string
	metrics   Metrics
	validator EmailValidator
}

// Option customizes a service.
type Option func(*options)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator sets the generator for account, invite and activity ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithEmailValidator checks addresses before they are looked up.
func WithEmailValidator(v EmailValidator) Option {
	return func(o *options) {
		o.validator = v
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
