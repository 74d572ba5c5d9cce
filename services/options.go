package services

import (
	"time"

	"go.uber.org/zap"
)

const (
	defaultStoreTimeout = 5 * time.Second
	defaultBulkMaxItems = 100
)

// Options carries the collaborators shared by the store-backed services.
type Options struct {
	Timeout      time.Duration
	BulkMaxItems int
	Logger       *zap.Logger
	Notifier     *Notifier
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultStoreTimeout
	}
	if o.BulkMaxItems <= 0 {
		o.BulkMaxItems = defaultBulkMaxItems
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
	}
	return o
}
