package validators

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
)

const (
	// ConfPkg is the name used for the configuration in the "conf"
	// section of the genesis file.
	ConfPkg = "poa"

	// KeySchemeAccount identifies proposals and votes by the candidate
	// account alone. The operating key is resolved by the KeyRotator.
	KeySchemeAccount = "account"
	// KeySchemeKeyed identifies proposals and votes by the candidate
	// account paired with the operating key given in the message.
	KeySchemeKeyed = "keyed"
)

// Configuration of the governance.
//
// An update patch applies only its non-zero fields. ProposalTTL cannot be
// reset to zero and Admin cannot be cleared by an update, both take their
// zero value only from the genesis.
type Configuration struct {
	// Admin may add and remove validators without a vote. Empty
	// disables the administrative override.
	Admin poa.Address `json:"admin"`
	// KeyScheme is either KeySchemeAccount (default) or KeySchemeKeyed.
	// It is fixed at genesis.
	KeyScheme string `json:"key_scheme"`
	// ProposalTTL is the number of blocks a proposal stays open. Zero
	// means proposals never expire.
	ProposalTTL int64 `json:"proposal_ttl"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// DefaultConfiguration is used when the genesis does not configure the
// governance.
func DefaultConfiguration() Configuration {
	return Configuration{KeyScheme: KeySchemeAccount}
}

func (c *Configuration) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, c.Admin)
	w.String(2, c.KeyScheme)
	w.Int64(3, c.ProposalTTL)
	return w.Data()
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			c.Admin = r.Bytes()
		case 2:
			c.KeyScheme = r.String()
		case 3:
			c.ProposalTTL = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (c *Configuration) Validate() error {
	var errs error
	if len(c.Admin) != 0 {
		errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	}
	switch c.KeyScheme {
	case KeySchemeAccount, KeySchemeKeyed:
	default:
		errs = errors.Append(errs, errors.Field("KeyScheme", errors.ErrInput, "unknown scheme %q", c.KeyScheme))
	}
	if c.ProposalTTL < 0 {
		errs = errors.Append(errs, errors.Field("ProposalTTL", errors.ErrInput, "must not be negative"))
	}
	return errs
}

// GetOwner returns the address allowed to update the configuration.
func (c *Configuration) GetOwner() poa.Address {
	return c.Admin
}

// Keyed returns true if candidates are identified by account and key.
func (c *Configuration) Keyed() bool {
	return c.KeyScheme == KeySchemeKeyed
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
