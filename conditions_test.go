package poa

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/iov-one/poa/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte{0xca, 0xfe})
	ext, typ, data, err := cond.Parse()
	require.NoError(t, err)
	assert.Equal(t, "sigs", ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, []byte{0xca, 0xfe}, data)
	assert.Equal(t, "sigs/ed25519/CAFE", cond.String())
	assert.NoError(t, cond.Validate())

	bad := Condition("no-slashes")
	_, _, _, err = bad.Parse()
	assert.True(t, errors.ErrInput.Is(err))
	assert.Error(t, bad.Validate())
}

func TestConditionJSON(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte("xyz"))
	raw, err := json.Marshal(cond)
	require.NoError(t, err)

	var got Condition
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, cond.Equals(got))
}

func TestParseAddress(t *testing.T) {
	addr := NewAddress([]byte("alice"))
	b32, err := addr.Bech32("poa")
	require.NoError(t, err)
	cond := NewCondition("sigs", "ed25519", []byte("alice"))

	cases := map[string]struct {
		enc     string
		want    Address
		wantErr *errors.Error
	}{
		"plain hex": {
			enc:  hex.EncodeToString(addr),
			want: addr,
		},
		"prefixed hex": {
			enc:  "hex:" + hex.EncodeToString(addr),
			want: addr,
		},
		"bech32": {
			enc:  "bech32:" + b32,
			want: addr,
		},
		"condition": {
			enc:  "cond:" + cond.String(),
			want: cond.Address(),
		},
		"empty": {
			enc:  "",
			want: nil,
		},
		"wrong length": {
			enc:     "cafe",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			enc:     "morse:..--",
			wantErr: errors.ErrType,
		},
		"broken bech32": {
			enc:     "bech32:notvalid",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAddress(tc.enc)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := NewAddress([]byte("bob"))
	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))

	clone := addr.Clone()
	clone[0]++
	assert.False(t, addr.Equals(clone))
}

func TestAddressValidate(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(Address("short").Validate()))
	assert.NoError(t, NewAddress([]byte("x")).Validate())
	assert.Equal(t, "(nil)", Address(nil).String())
}
