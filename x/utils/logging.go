package utils

import (
	"time"

	"github.com/iov-one/poa"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ poa.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx poa.Context, store poa.KVStore, tx poa.Tx, next poa.Checker) (*poa.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx poa.Context, store poa.KVStore, tx poa.Tx, next poa.Deliverer) (*poa.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx poa.Context, tx poa.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := poa.GetLogger(ctx).With(
		"path", poa.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
	if height, ok := poa.GetHeight(ctx); ok {
		logger = logger.With("height", height)
	}

	// The entry is emitted even for an empty message, the key values are
	// what matters.
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
