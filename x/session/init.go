package session

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
	"github.com/iov-one/poa/orm"
)

// Initializer loads the session configuration and makes the queued set the
// active one. It must run after the governance initializer, which fills the
// queue with the genesis validators. The consensus engine gets the genesis
// validators from its own genesis, so no update is emitted.
type Initializer struct {
	Keeper Keeper
}

var _ poa.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts poa.Options, db poa.KVStore) error {
	conf := DefaultConfiguration()
	switch err := gconf.InitConfig(db, opts, ConfPkg, &conf); {
	case errors.ErrNotFound.Is(err):
		conf = DefaultConfiguration()
		if err := gconf.Save(db, ConfPkg, &conf); err != nil {
			return errors.Wrap(err, "save default configuration")
		}
	case err != nil:
		return errors.Wrap(err, "init configuration")
	}

	queued, err := i.Keeper.Queued(db)
	if err != nil {
		return err
	}
	for _, e := range queued {
		if err := i.Keeper.bindings.Save(db, orm.NewSimpleObj(e.Account, &SessionKey{PubKey: e.PubKey})); err != nil {
			return errors.Wrapf(err, "bind key of %s", e.Account)
		}
	}
	if err := i.Keeper.activate(db, queued); err != nil {
		return err
	}
	return i.Keeper.saveState(db, &State{})
}
