package weavetest

import "github.com/iov-one/poa"

// Tx carries a message and, optionally, the error returned by GetMsg.
type Tx struct {
	Msg poa.Msg
	Err error
}

var _ poa.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (poa.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg is a message routed by its RoutePath.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
	ValidErr   error
}

var _ poa.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.ValidErr
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}
