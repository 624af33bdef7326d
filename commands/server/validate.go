package server

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/store"
)

// ValidateGenesis runs the initializer over the app_state of each genesis
// file, discarding the result.
func ValidateGenesis(ini poa.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrInput, "no genesis file given")
	}
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini poa.Initializer, genesisPath string) error {
	b, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var genesis struct {
		State poa.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot JSON deserialize genesis")
	}
	if genesis.State == nil {
		return errors.Wrap(errors.ErrEmpty, "no app_state")
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()
	if err := ini.FromGenesis(genesis.State, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
