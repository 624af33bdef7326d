package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/iov-one/poa/errors"
	cfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/crypto/ed25519"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	tmtypes "github.com/tendermint/tendermint/types"
	tmtime "github.com/tendermint/tendermint/types/time"
)

const appStateKey = "app_state"

// AppState is the application part of a new genesis file.
type AppState struct {
	// Options is written as app_state.
	Options json.RawMessage
	// Validators are the ed25519 keys of the initial consensus set. They
	// must match the validators declared in Options.
	Validators [][]byte
	// Power is given to every initial validator.
	Power int64
}

// GenOptions can parse command-line arguments to generate the app_state of
// the genesis file. nodeKey is the ed25519 public key of the local private
// validator, to use when no validator is given explicitly.
//
// This is application-specific
type GenOptions func(args []string, nodeKey []byte) (AppState, error)

// InitCmd will initialize all files for tendermint, along with proper
// app_state. An existing genesis file is extended with the app_state, its
// validators are kept.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	config := cfg.DefaultConfig()
	config.SetRoot(home)
	cfg.EnsureRoot(home)

	pv, err := loadOrGenPrivValidator(config, logger)
	if err != nil {
		return err
	}
	if _, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile()); err != nil {
		return errors.Wrap(err, "node key")
	}

	nodeKey, ok := pv.GetPubKey().(ed25519.PubKeyEd25519)
	if !ok {
		return errors.Wrapf(errors.ErrType, "private validator key %T", pv.GetPubKey())
	}
	state, err := gen(args, nodeKey[:])
	if err != nil {
		return err
	}

	genFile := config.GenesisFile()
	if !cmn.FileExists(genFile) {
		if err := writeGenesis(genFile, state); err != nil {
			return err
		}
		logger.Info("Generated genesis file", "path", genFile)
	}
	return addGenesisOptions(genFile, state.Options)
}

func loadOrGenPrivValidator(config *cfg.Config, logger log.Logger) (*privval.FilePV, error) {
	keyFile := config.PrivValidatorKeyFile()
	stateFile := config.PrivValidatorStateFile()
	if cmn.FileExists(keyFile) {
		logger.Info("Found private validator", "path", keyFile)
		return privval.LoadFilePV(keyFile, stateFile), nil
	}
	pv := privval.GenFilePV(keyFile, stateFile)
	pv.Save()
	logger.Info("Generated private validator", "path", keyFile)
	return pv, nil
}

func writeGenesis(genFile string, state AppState) error {
	genDoc := tmtypes.GenesisDoc{
		ChainID:         fmt.Sprintf("poa-chain-%v", cmn.RandStr(6)),
		GenesisTime:     tmtime.Now(),
		ConsensusParams: tmtypes.DefaultConsensusParams(),
	}
	for _, raw := range state.Validators {
		if len(raw) != ed25519.PubKeyEd25519Size {
			return errors.Wrapf(errors.ErrInput, "validator key of %d bytes", len(raw))
		}
		var key ed25519.PubKeyEd25519
		copy(key[:], raw)
		genDoc.Validators = append(genDoc.Validators, tmtypes.GenesisValidator{
			Address: key.Address(),
			PubKey:  key,
			Power:   state.Power,
		})
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return genDoc.SaveAs(genFile)
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, out, os.FileMode(0600))
}
