package session

import (
	"encoding/json"

	"github.com/iov-one/poa"
)

func mustJSON(v interface{}, opts poa.Options, key string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	opts[key] = raw
	return nil
}
