package session

import (
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
)

// ConfPkg is the name used for the configuration in the "conf" section of
// the genesis file.
const ConfPkg = "session"

// Configuration of the session boundary.
type Configuration struct {
	// SessionLength is the number of blocks a session lasts. Zero means
	// sessions end only when a rotation is requested.
	SessionLength int64 `json:"session_length"`
	// Power is the voting power given to every validator.
	Power int64 `json:"power"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when the genesis does not configure
// sessions.
func DefaultConfiguration() Configuration {
	return Configuration{Power: 10}
}

func (c *Configuration) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Int64(1, c.SessionLength)
	w.Int64(2, c.Power)
	return w.Data()
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.SessionLength = r.Int64()
		case 2:
			c.Power = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (c *Configuration) Validate() error {
	var errs error
	if c.SessionLength < 0 {
		errs = errors.Append(errs, errors.Field("SessionLength", errors.ErrInput, "must not be negative"))
	}
	if c.Power <= 0 {
		errs = errors.Append(errs, errors.Field("Power", errors.ErrInput, "must be positive"))
	}
	return errs
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
