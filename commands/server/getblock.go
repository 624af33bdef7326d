package server

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iov-one/poa/errors"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

// GetBlockCmd extracts a block from a blockstore.db and writes it as json.
// It takes the last block when height is zero.
func GetBlockCmd(out io.Writer, dbPath string, height int64) error {
	db, err := openDb(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store := blockchain.NewBlockStore(db)
	if height == 0 {
		height = store.Height()
	}
	block := store.LoadBlock(height)
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "no block for height %d", height)
	}
	js, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(js))
	return err
}

func openDb(path string) (dbm.DB, error) {
	path = strings.TrimSuffix(filepath.Clean(path), string(filepath.Separator))
	if filepath.Ext(path) != ".db" {
		return nil, errors.Wrap(errors.ErrInput, "database directory must end with .db")
	}
	dir, name := filepath.Split(strings.TrimSuffix(path, ".db"))
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return db, nil
}
