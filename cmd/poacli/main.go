/*
Command poacli is the client of a poad node. It manages the signing key,
builds and submits governance transactions, and queries the validator set.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/client"
	"github.com/spf13/cobra"
)

const (
	flagNode    = "node"
	flagKey     = "key"
	flagChainID = "chain-id"
)

// node is the part of a poad node the commands talk to.
type node interface {
	Status(ctx context.Context) (*client.Status, error)
	Query(ctx context.Context, path string, data []byte) ([]poa.Model, error)
	CommitTx(ctx context.Context, tx poa.Tx) (*client.CommitResult, error)
}

// dialer opens a connection to the node at given address.
type dialer func(remote string) node

func dialHTTP(remote string) node {
	return client.Dial(remote)
}

func main() {
	if err := RootCmd(os.Stdout, dialHTTP).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// env returns the value of the environment variable, or the fallback if
// it is not set.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// RootCmd returns the poacli command with all its subcommands.
func RootCmd(out io.Writer, dial dialer) *cobra.Command {
	root := &cobra.Command{
		Use:           "poacli",
		Short:         "Client of the proof of authority node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.String(flagNode, env("POACLI_NODE", "http://localhost:26657"),
		"tendermint rpc address of the node, POACLI_NODE environment variable can be used")
	pf.String(flagKey, env("POACLI_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".poacli.priv.key")),
		"private key file the transaction is signed with, POACLI_PRIV_KEY environment variable can be used")
	pf.String(flagChainID, "", "chain id the transaction is signed for (default the chain of the node)")

	connect := func(cmd *cobra.Command) (node, error) {
		remote, err := cmd.Flags().GetString(flagNode)
		if err != nil {
			return nil, err
		}
		return dial(remote), nil
	}

	root.AddCommand(
		keygenCmd(),
		keyaddrCmd(),
		setKeysCmd(connect),
		queryCmd(connect),
	)
	root.AddCommand(governanceCmds(connect)...)
	return root
}

type connector func(cmd *cobra.Command) (node, error)
