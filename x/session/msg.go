package session

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
)

// PathSetKeys is the path of SetKeysMsg.
const PathSetKeys = "session/set_keys"

// SetKeysMsg binds the operating key of the signer.
type SetKeysMsg struct {
	PubKey []byte `json:"pubkey"`
}

var _ poa.Msg = (*SetKeysMsg)(nil)

func (SetKeysMsg) Path() string { return PathSetKeys }

func (m *SetKeysMsg) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, m.PubKey)
	return w.Data()
}

func (m *SetKeysMsg) Unmarshal(raw []byte) error {
	*m = SetKeysMsg{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.PubKey = r.Bytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (m *SetKeysMsg) Validate() error {
	return errors.Field("PubKey", validatePubKey(m.PubKey), "invalid operating key")
}
