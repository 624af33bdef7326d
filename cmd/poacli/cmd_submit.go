package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/iov-one/poa"
	poad "github.com/iov-one/poa/cmd/poad/app"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/session"
	"github.com/iov-one/poa/x/sigs"
	"github.com/iov-one/poa/x/validators"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"
)

// submit signs the message with the key of the command and waits until it
// is included in a block.
func submit(cmd *cobra.Command, connect connector, msg poa.Msg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	key, err := readKey(cmd)
	if err != nil {
		return err
	}
	n, err := connect(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	chainID, err := cmd.Flags().GetString(flagChainID)
	if err != nil {
		return err
	}
	if chainID == "" {
		status, err := n.Status(ctx)
		if err != nil {
			return err
		}
		chainID = status.ChainID
	}

	signer := sigs.Condition(key.Public().(ed25519.PublicKey)).Address()
	seq, err := sequence(ctx, n, signer)
	if err != nil {
		return errors.Wrap(err, "sequence")
	}

	tx := &poad.Tx{Msg: msg}
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	res, err := n.CommitTx(ctx, tx)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "committed at height %d\n", res.Height)
	for _, t := range res.Tags {
		fmt.Fprintf(out, "%s=%s\n", t.Key, t.Value)
	}
	return nil
}

// sequence returns the sequence the next signature of the signer must use.
func sequence(ctx context.Context, n node, signer poa.Address) (int64, error) {
	models, err := n.Query(ctx, "/auth", signer)
	if err != nil {
		return 0, err
	}
	if len(models) == 0 {
		return 0, nil
	}
	var user sigs.UserData
	if err := user.Unmarshal(models[0].Value); err != nil {
		return 0, err
	}
	return user.Sequence, nil
}

func setKeysCmd(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "set-keys <pubkey-hex>",
		Short: "Bind the ed25519 operating key of the signer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubKey, err := hex.DecodeString(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrInput, "pubkey is not hex")
			}
			return submit(cmd, connect, &session.SetKeysMsg{PubKey: pubKey})
		},
	}
}

// governanceCmds returns one command per governance message.
func governanceCmds(connect connector) []*cobra.Command {
	kinds := []struct {
		use   string
		short string
		msg   func(validators.CandidateMsg) poa.Msg
	}{
		{"propose-add", "Vote for the admission of a candidate", func(c validators.CandidateMsg) poa.Msg {
			return &validators.ProposeAddMsg{CandidateMsg: c}
		}},
		{"resolve-add", "Admit a candidate all validators voted for", func(c validators.CandidateMsg) poa.Msg {
			return &validators.ResolveAddMsg{CandidateMsg: c}
		}},
		{"admin-add", "Admit a candidate without a vote", func(c validators.CandidateMsg) poa.Msg {
			return &validators.AdminAddMsg{CandidateMsg: c}
		}},
		{"propose-remove", "Vote for the removal of a validator", func(c validators.CandidateMsg) poa.Msg {
			return &validators.ProposeRemoveMsg{CandidateMsg: c}
		}},
		{"resolve-remove", "Remove a validator all others voted against", func(c validators.CandidateMsg) poa.Msg {
			return &validators.ResolveRemoveMsg{CandidateMsg: c}
		}},
		{"admin-remove", "Remove a validator without a vote", func(c validators.CandidateMsg) poa.Msg {
			return &validators.AdminRemoveMsg{CandidateMsg: c}
		}},
	}

	cmds := make([]*cobra.Command, 0, len(kinds))
	for _, k := range kinds {
		k := k
		cmds = append(cmds, &cobra.Command{
			Use:   k.use + " <candidate-address> [pubkey-hex]",
			Short: k.short,
			Long:  k.short + ".\n\nThe public key is required when the chain identifies candidates by key.",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cand, err := parseCandidate(args)
				if err != nil {
					return err
				}
				return submit(cmd, connect, k.msg(cand))
			},
		})
	}
	return cmds
}

func parseCandidate(args []string) (validators.CandidateMsg, error) {
	var cand validators.CandidateMsg
	addr, err := poa.ParseAddress(args[0])
	if err != nil {
		return cand, errors.Wrap(err, "candidate address")
	}
	cand.Candidate = addr
	if len(args) > 1 {
		if cand.PubKey, err = hex.DecodeString(args[1]); err != nil {
			return cand, errors.Wrap(errors.ErrInput, "pubkey is not hex")
		}
	}
	return cand, nil
}
