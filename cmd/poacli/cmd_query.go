package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/session"
	"github.com/iov-one/poa/x/validators"
	"github.com/spf13/cobra"
)

func queryCmd(connect connector) *cobra.Command {
	query := &cobra.Command{
		Use:   "query",
		Short: "Query the state of the node",
	}

	run := func(fn func(ctx context.Context, n node) (interface{}, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			n, err := connect(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := fn(ctx, n)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		}
	}

	query.AddCommand(
		&cobra.Command{
			Use:   "validators",
			Short: "List the current validator set",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, n node) (interface{}, error) {
				return queryValidators(ctx, n)
			}),
		},
		&cobra.Command{
			Use:   "active",
			Short: "List the operating keys of the current session",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, n node) (interface{}, error) {
				return querySessionKeys(ctx, n, "/session/active?prefix")
			}),
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the bound operating keys",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, n node) (interface{}, error) {
				return querySessionKeys(ctx, n, "/session/keys?prefix")
			}),
		},
	)
	return query
}

func queryValidators(ctx context.Context, n node) ([]validators.Validator, error) {
	models, err := n.Query(ctx, "/poa/validators?prefix", nil)
	if err != nil {
		return nil, err
	}
	vals := make([]validators.Validator, len(models))
	for i, m := range models {
		if err := vals[i].Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "validator %d", i)
		}
	}
	return vals, nil
}

type sessionKey struct {
	Account poa.Address `json:"account"`
	PubKey  string      `json:"pubkey"`
}

func querySessionKeys(ctx context.Context, n node, path string) ([]sessionKey, error) {
	models, err := n.Query(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	keys := make([]sessionKey, len(models))
	for i, m := range models {
		var key session.SessionKey
		if err := key.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "key %d", i)
		}
		keys[i] = sessionKey{Account: accountOf(m.Key), PubKey: hex.EncodeToString(key.PubKey)}
	}
	return keys, nil
}

// accountOf strips the bucket prefix from a session key.
func accountOf(dbKey []byte) poa.Address {
	for i, b := range dbKey {
		if b == ':' {
			return poa.Address(dbKey[i+1:])
		}
	}
	return poa.Address(dbKey)
}
