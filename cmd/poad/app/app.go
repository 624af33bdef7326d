/*
Package app links together all the various components
to construct the poad application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/app"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/store/iavl"
	"github.com/iov-one/poa/x"
	"github.com/iov-one/poa/x/session"
	"github.com/iov-one/poa/x/sigs"
	"github.com/iov-one/poa/x/utils"
	"github.com/iov-one/poa/x/validators"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by abci.Info.
const Name = "poad"

// Authenticator returns the authentication used by the application,
// public key signatures only.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewActionTagger(),
		// on DeliverTx, a failing message still increments the
		// sequence of the signers
		utils.NewSavepoint().OnDeliver(),
	)
}

// Modules holds the governance and session components sharing the same
// key rotation.
type Modules struct {
	Keeper     session.Keeper
	Controller validators.Controller
}

// NewModules wires the governance controller to the session keeper.
func NewModules() Modules {
	keeper := session.NewKeeper()
	return Modules{
		Keeper:     keeper,
		Controller: validators.NewController(keeper),
	}
}

// Router returns the router dispatching all governance and session
// messages.
func (m Modules) Router(auth x.Authenticator) *app.Router {
	r := app.NewRouter()
	validators.RegisterRoutes(r, auth, m.Controller)
	session.RegisterRoutes(r, auth, m.Keeper)
	return r
}

// Ticker returns the session boundary, run at every BeginBlock.
func (m Modules) Ticker() poa.Ticker {
	return session.NewTicker(m.Keeper, m.Controller)
}

// Initializer loads the genesis. Governance must run first, it fills the
// key queue that the session initializer promotes.
func (m Modules) Initializer() poa.Initializer {
	return poa.ChainInitializers(
		validators.Initializer{Rotator: m.Keeper},
		session.Initializer{Keeper: m.Keeper},
	)
}

// QueryRouter returns a query router giving access to "/poa/validators",
// "/poa/addvotes", "/poa/rmvotes", "/session/keys", "/session/queued",
// "/session/active" and "/auth".
func QueryRouter() poa.QueryRouter {
	r := poa.NewQueryRouter()
	r.RegisterAll(
		validators.RegisterQuery,
		session.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Stack wires up the router with the decorator chain. This can be passed
// into BaseApp.
func (m Modules) Stack() poa.Handler {
	return Chain().WithHandler(m.Router(Authenticator()))
}

// Application constructs the ABCI application storing its state under
// dbPath. An empty dbPath keeps the state in memory.
func Application(dbPath string, logger log.Logger, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	m := NewModules()
	store := app.NewStoreApp(Name, kv, QueryRouter(), context.Background()).
		WithInit(m.Initializer()).
		WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, m.Stack(), m.Ticker(), debug), nil
}

// GenerateApp creates the application with its database in the home
// directory.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "poa.db")
	}
	return Application(dbPath, logger, debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (poa.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
