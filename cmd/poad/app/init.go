package app

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/commands/server"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/session"
	"github.com/iov-one/poa/x/sigs"
	"github.com/iov-one/poa/x/validators"
)

// GenInitOptions produces the app_state of a new chain.
//
// The first argument, if given and not "-", is the admin address. Every
// following argument is a genesis validator written as
// "<address>:<hex ed25519 public key>". Without any, the local node is the
// only validator, owned by the address of its own key.
func GenInitOptions(args []string, nodeKey []byte) (server.AppState, error) {
	conf := validators.DefaultConfiguration()
	if len(args) > 0 && args[0] != "-" {
		admin, err := poa.ParseAddress(args[0])
		if err != nil {
			return server.AppState{}, errors.Wrap(err, "admin address")
		}
		conf.Admin = admin
	}

	var gen validators.Genesis
	if len(args) > 1 {
		for _, arg := range args[1:] {
			v, err := parseValidator(arg)
			if err != nil {
				return server.AppState{}, errors.Wrapf(err, "validator %q", arg)
			}
			gen.Validators = append(gen.Validators, v)
		}
	} else {
		v := validators.Validator{Address: sigs.Condition(nodeKey).Address(), PubKey: nodeKey}
		if err := v.Validate(); err != nil {
			return server.AppState{}, errors.Wrap(err, "node key")
		}
		gen.Validators = []validators.Validator{v}
	}

	sconf := session.DefaultConfiguration()
	state := map[string]interface{}{
		"conf": map[string]interface{}{
			validators.ConfPkg: conf,
			session.ConfPkg:    sconf,
		},
		"poa": gen,
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return server.AppState{}, err
	}

	keys := make([][]byte, len(gen.Validators))
	for i, v := range gen.Validators {
		keys[i] = v.PubKey
	}
	return server.AppState{Options: raw, Validators: keys, Power: sconf.Power}, nil
}

// parseValidator reads "<address>:<hex public key>". In the account scheme
// the key moves to the session keeper at genesis.
func parseValidator(arg string) (validators.Validator, error) {
	// the address may carry its own format prefix
	i := strings.LastIndex(arg, ":")
	if i <= 0 {
		return validators.Validator{}, errors.Wrap(errors.ErrInput, "want <address>:<pubkey>")
	}
	addr, err := poa.ParseAddress(arg[:i])
	if err != nil {
		return validators.Validator{}, errors.Wrap(err, "address")
	}
	pubKey, err := hex.DecodeString(arg[i+1:])
	if err != nil {
		return validators.Validator{}, errors.Wrap(errors.ErrInput, "pubkey is not hex")
	}
	v := validators.Validator{Address: addr, PubKey: pubKey}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}
