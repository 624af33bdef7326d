package gconf

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/store"
	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/weavetest/assert"
)

type myconfig struct {
	Owner poa.Address `json:"owner"`
	Num   int64       `json:"num"`
	Str   string      `json:"str"`
}

func (c *myconfig) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, c.Owner)
	w.Int64(2, c.Num)
	w.String(3, c.Str)
	return w.Data()
}

func (c *myconfig) Unmarshal(raw []byte) error {
	*c = myconfig{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.Owner = r.Bytes()
		case 2:
			c.Num = r.Int64()
		case 3:
			c.Str = r.String()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (c *myconfig) Validate() error {
	if c.Num < 0 {
		return errors.Field("Num", errors.ErrInput, "must not be negative")
	}
	return nil
}

func (c *myconfig) GetOwner() poa.Address {
	return c.Owner
}

type myconfigMsg struct {
	Patch *myconfig
}

func (m *myconfigMsg) Path() string             { return "test/update_config" }
func (m *myconfigMsg) Validate() error          { return nil }
func (m *myconfigMsg) Marshal() ([]byte, error) { return nil, nil }
func (m *myconfigMsg) Unmarshal([]byte) error   { return nil }

func TestSaveLoad(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	cases := map[string]struct {
		Conf        *myconfig
		WantSaveErr *errors.Error
	}{
		"all fields":    {Conf: &myconfig{Owner: owner, Num: 852151421, Str: "foobar"}},
		"zero config":   {Conf: &myconfig{}},
		"invalid value": {Conf: &myconfig{Num: -1}, WantSaveErr: errors.ErrInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.Conf, &got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var got myconfig
	err := Load(store.MemStore(), "mypkg", &got)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	genesis := `{"conf": {"mypkg": {"owner": "` + owner.String() + `", "num": 7, "str": "hi"}}}`
	var opts poa.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot parse genesis: %s", err)
	}

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "mypkg", &myconfig{}))

	var got myconfig
	assert.Nil(t, Load(db, "mypkg", &got))
	assert.Equal(t, myconfig{Owner: owner, Num: 7, Str: "hi"}, got)

	err := InitConfig(db, opts, "otherpkg", &myconfig{})
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestUpdateConfigurationHandler(t *testing.T) {
	cond := weavetest.NewCondition()
	other := weavetest.NewCondition()

	cases := map[string]struct {
		Init           *myconfig
		Msg            poa.Msg
		Signer         poa.Condition
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		WantConfig     *myconfig
	}{
		"success": {
			Init:       &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg:        &myconfigMsg{Patch: &myconfig{Num: 333}},
			Signer:     cond,
			WantConfig: &myconfig{Owner: cond.Address(), Num: 333, Str: "foobar"},
		},
		"owner can be changed": {
			Init:       &myconfig{Owner: cond.Address(), Num: 1},
			Msg:        &myconfigMsg{Patch: &myconfig{Owner: other.Address()}},
			Signer:     cond,
			WantConfig: &myconfig{Owner: other.Address(), Num: 1},
		},
		"message must be signed by the configuration owner": {
			Init:           &myconfig{Owner: cond.Address(), Num: 5125},
			Msg:            &myconfigMsg{Patch: &myconfig{Num: 1}},
			Signer:         other,
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
			WantConfig:     &myconfig{Owner: cond.Address(), Num: 5125},
		},
		"configuration without owner cannot be changed": {
			Init:           &myconfig{Num: 5125},
			Msg:            &myconfigMsg{Patch: &myconfig{Num: 1}},
			Signer:         cond,
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"missing configuration": {
			Msg:            &myconfigMsg{Patch: &myconfig{Num: 1}},
			Signer:         cond,
			WantCheckErr:   errors.ErrNotFound,
			WantDeliverErr: errors.ErrNotFound,
		},
		"patch is required": {
			Init:           &myconfig{Owner: cond.Address()},
			Msg:            &myconfigMsg{},
			Signer:         cond,
			WantCheckErr:   errors.ErrState,
			WantDeliverErr: errors.ErrState,
		},
		"message without patch field": {
			Init:           &myconfig{Owner: cond.Address()},
			Msg:            &weavetest.Msg{RoutePath: "test/update_config"},
			Signer:         cond,
			WantCheckErr:   errors.ErrInput,
			WantDeliverErr: errors.ErrInput,
		},
		"invalid patch is not saved": {
			Init:           &myconfig{Owner: cond.Address()},
			Msg:            &myconfigMsg{Patch: &myconfig{Num: -4}},
			Signer:         cond,
			WantCheckErr:   errors.ErrInput,
			WantDeliverErr: errors.ErrInput,
			WantConfig:     &myconfig{Owner: cond.Address()},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			if tc.Init != nil {
				assert.Nil(t, Save(db, "mypkg", tc.Init))
			}
			auth := &weavetest.Auth{Signer: tc.Signer}
			h := NewUpdateConfigurationHandler("mypkg", &myconfig{}, auth)
			tx := &weavetest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := h.Check(context.Background(), cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %s", err)
			}
			cache.Discard()

			if _, err := h.Deliver(context.Background(), db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %s", err)
			}

			if tc.WantConfig != nil {
				var got myconfig
				assert.Nil(t, Load(db, "mypkg", &got))
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}
