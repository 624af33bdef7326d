package poa

import (
	"encoding/json"

	"github.com/iov-one/poa/errors"
)

// Handler is a core engine that can process a few specific messages
// This could represent "propose a validator", or "bind an operating key"
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Ticker is a method that is called the beginning of every block,
// which can be used to perform periodic or delayed tasks
type Ticker interface {
	Tick(ctx Context, store KVStore) (TickResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of provided type.
	// Using a message as an argument serves as a documentation and acts
	// as a safety measure.
	Handle(Msg, Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %q options: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function.
// Initializers run in the given order, so an extension that depends on the
// state created by another must be listed after it.
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

// FromGenesis passes the options to all initializers stopping at the first
// error.
func (c chainInitializer) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

// ChainTickers lets you run many Tickers in a row. Tags and diffs of all of
// them are joined together.
func ChainTickers(tickers ...Ticker) Ticker {
	return chainTicker(tickers)
}

type chainTicker []Ticker

func (c chainTicker) Tick(ctx Context, store KVStore) (TickResult, error) {
	var res TickResult
	for _, t := range c {
		r, err := t.Tick(ctx, store)
		if err != nil {
			return res, err
		}
		res.Tags = append(res.Tags, r.Tags...)
		res.Diff = append(res.Diff, r.Diff...)
	}
	return res, nil
}
