package poa

import (
	"testing"

	"github.com/iov-one/poa/errors"
)

type pingMsg struct {
	Text string
}

func (m *pingMsg) Marshal() ([]byte, error) { return []byte(m.Text), nil }
func (m *pingMsg) Unmarshal(b []byte) error { m.Text = string(b); return nil }
func (*pingMsg) Path() string               { return "test/ping" }

func (m *pingMsg) Validate() error {
	if m.Text == "" {
		return errors.Wrap(errors.ErrEmpty, "text")
	}
	return nil
}

type otherMsg struct {
	pingMsg
}

type msgTx struct {
	msg Msg
	err error
}

func (tx *msgTx) Marshal() ([]byte, error) { return nil, nil }
func (tx *msgTx) Unmarshal([]byte) error   { return nil }
func (tx *msgTx) GetMsg() (Msg, error)     { return tx.msg, tx.err }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dest    interface{}
		wantErr *errors.Error
		want    string
	}{
		"value destination": {
			tx:   &msgTx{msg: &pingMsg{Text: "hi"}},
			dest: &pingMsg{},
			want: "hi",
		},
		"invalid message": {
			tx:      &msgTx{msg: &pingMsg{}},
			dest:    &pingMsg{},
			wantErr: errors.ErrEmpty,
		},
		"type mismatch": {
			tx:      &msgTx{msg: &pingMsg{Text: "hi"}},
			dest:    &otherMsg{},
			wantErr: errors.ErrType,
		},
		"not a pointer": {
			tx:      &msgTx{msg: &pingMsg{Text: "hi"}},
			dest:    pingMsg{},
			wantErr: errors.ErrType,
		},
		"missing message": {
			tx:      &msgTx{},
			dest:    &pingMsg{},
			wantErr: errors.ErrMsg,
		},
		"decoding failure": {
			tx:      &msgTx{err: errors.Wrap(errors.ErrSchema, "broken")},
			dest:    &pingMsg{},
			wantErr: errors.ErrSchema,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := LoadMsg(tc.tx, tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			if got := tc.dest.(*pingMsg).Text; got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}

	var ptr *pingMsg
	if err := LoadMsg(&msgTx{msg: &pingMsg{Text: "x"}}, &ptr); err != nil {
		t.Fatalf("pointer destination: %+v", err)
	}
	if ptr.Text != "x" {
		t.Fatalf("unexpected message: %v", ptr)
	}
}

func TestGetPath(t *testing.T) {
	if p := GetPath(&msgTx{msg: &pingMsg{}}); p != "test/ping" {
		t.Fatalf("unexpected path %q", p)
	}
	if p := GetPath(&msgTx{}); p != "(missing)" {
		t.Fatalf("unexpected path %q", p)
	}
}
