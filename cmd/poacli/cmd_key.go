package main

import (
	"crypto/rand"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/sigs"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Long: `Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString(flagKey)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				// Do not allow to overwrite an existing private
				// key, it must be deleted manually first.
				return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists, delete this file and try again", path)
			}
			pub, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return errors.Wrap(errors.ErrHuman, err.Error())
			}
			if err := ioutil.WriteFile(path, priv, 0600); err != nil {
				return errors.Wrap(errors.ErrInput, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", sigs.Condition(pub).Address())
			return nil
		},
	}
}

func keyaddrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keyaddr",
		Short: "Print the address and the public key of the private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(cmd)
			if err != nil {
				return err
			}
			pub := key.Public().(ed25519.PublicKey)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %X\n", sigs.Condition(pub).Address(), []byte(pub))
			return nil
		},
	}
}

func readKey(cmd *cobra.Command) (ed25519.PrivateKey, error) {
	path, err := cmd.Flags().GetString(flagKey)
	if err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}
