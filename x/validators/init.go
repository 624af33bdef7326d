package validators

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
)

const optKey = "poa"

// Genesis is the "poa" section of the genesis file.
type Genesis struct {
	Validators []Validator `json:"validators"`
}

// Initializer fulfils the poa.Initializer interface to load the
// configuration and the initial validator set from the genesis file.
type Initializer struct {
	Rotator KeyRotator
}

var _ poa.Initializer = Initializer{}

// FromGenesis saves the configuration, or the default one if the genesis
// has none, and seeds the validator set. Every genesis validator is
// registered with the rotator using the key given in the genesis.
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

	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	ctrl := NewController(i.Rotator)
	for n, v := range gen.Validators {
		if err := v.Validate(); err != nil {
			return errors.Field("Validators", err, "validator %d", n)
		}
		if err := ctrl.Seed(db, &conf, v); err != nil {
			return errors.Wrapf(err, "validator %d", n)
		}
	}
	if len(gen.Validators) != 0 {
		if err := i.Rotator.Rotate(db); err != nil {
			return errors.Wrap(err, "rotate")
		}
	}
	return nil
}
