package poa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopQuery struct{}

func (nopQuery) Query(ReadOnlyKVStore, string, []byte) ([]Model, error) {
	return nil, nil
}

func TestQueryRouter(t *testing.T) {
	qr := NewQueryRouter()
	qr.RegisterAll(
		func(r QueryRouter) { r.Register("/b", nopQuery{}) },
		func(r QueryRouter) { r.Register("/a/c", nopQuery{}) },
	)

	assert.Equal(t, []string{"/a/c", "/b"}, qr.Paths())
	assert.NotNil(t, qr.Handler("/b"))
	assert.Nil(t, qr.Handler("/a"))

	assert.Panics(t, func() { qr.Register("/b", nopQuery{}) })
	assert.Panics(t, func() { qr.Register("relative", nopQuery{}) })
	assert.Panics(t, func() { qr.Register("/with?prefix", nopQuery{}) })
}
