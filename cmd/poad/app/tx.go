package app

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/session"
	"github.com/iov-one/poa/x/sigs"
	"github.com/iov-one/poa/x/validators"
)

// messages lists every message the application accepts, by path.
var messages = map[string]func() poa.Msg{
	validators.PathProposeAdd:          func() poa.Msg { return &validators.ProposeAddMsg{} },
	validators.PathResolveAdd:          func() poa.Msg { return &validators.ResolveAddMsg{} },
	validators.PathAdminAdd:            func() poa.Msg { return &validators.AdminAddMsg{} },
	validators.PathProposeRemove:       func() poa.Msg { return &validators.ProposeRemoveMsg{} },
	validators.PathResolveRemove:       func() poa.Msg { return &validators.ResolveRemoveMsg{} },
	validators.PathAdminRemove:         func() poa.Msg { return &validators.AdminRemoveMsg{} },
	validators.PathUpdateConfiguration: func() poa.Msg { return &validators.UpdateConfigurationMsg{} },
	session.PathSetKeys:                func() poa.Msg { return &session.SetKeysMsg{} },
}

// Tx is the transaction format of the poa application. The message is
// stored together with its path so that it can be decoded without a
// type switch.
type Tx struct {
	Signatures []*sigs.StdSignature
	Msg        poa.Msg
}

var _ poa.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// Marshal encodes signatures as field 1, the message path as field 2 and
// the message itself as field 3.
func (tx *Tx) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	for _, s := range tx.Signatures {
		if s != nil {
			w.Message(1, s)
		}
	}
	if err := tx.writeMsg(w); err != nil {
		return nil, err
	}
	return w.Data()
}

func (tx *Tx) writeMsg(w *codec.Writer) error {
	if tx.Msg == nil {
		return nil
	}
	if _, ok := messages[tx.Msg.Path()]; !ok {
		return errors.Wrapf(errors.ErrMsg, "unknown message path %q", tx.Msg.Path())
	}
	w.String(2, tx.Msg.Path())
	w.Message(3, tx.Msg)
	return nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	var (
		path string
		body []byte
	)
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			var s sigs.StdSignature
			r.Message(&s)
			tx.Signatures = append(tx.Signatures, &s)
		case 2:
			path = r.String()
		case 3:
			body = r.Bytes()
		default:
			r.Skip()
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	fn, ok := messages[path]
	if !ok {
		return errors.Wrapf(errors.ErrMsg, "unknown message path %q", path)
	}
	msg := fn()
	if err := msg.Unmarshal(body); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	tx.Msg = msg
	return nil
}

// GetMsg returns the message of the transaction.
func (tx *Tx) GetMsg() (poa.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "empty transaction")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures attached to the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized transaction without signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	w := codec.NewWriter()
	if err := tx.writeMsg(w); err != nil {
		return nil, err
	}
	return w.Data()
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (poa.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
