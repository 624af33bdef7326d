package sigs

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData is the per signer state: the public key and the sequence
// expected in the next signature.
type UserData struct {
	PubKey   []byte
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, u.PubKey)
	w.Int64(2, u.Sequence)
	return w.Data()
}

func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			u.PubKey = r.Bytes()
		case 2:
			u.Sequence = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	} else if seq > 0 && u.PubKey == nil {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs PubKey"))
	}
	if u.PubKey != nil {
		errs = errors.AppendField(errs, "PubKey", ValidatePubKey(u.PubKey))
	}
	return errs
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	// The greatest nonce a javascript client can represent.
	const maxSequenceValue = (1 << 53) - 1
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(ErrInvalidSequence, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// AsUser will safely type-cast any value from Bucket to a UserData
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser constructs an object keyed by the address of the public key
// condition.
func NewUser(pubKey []byte) orm.Object {
	var key poa.Address
	if pubKey != nil {
		key = Condition(pubKey).Address()
	}
	return orm.NewSimpleObj(key, &UserData{PubKey: pubKey})
}

// Bucket extends orm.Bucket with GetOrCreate
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewUser(nil)),
	}
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db poa.KVStore, pubKey []byte) (orm.Object, error) {
	obj, err := b.Get(db, Condition(pubKey).Address())
	if err == nil && obj == nil {
		obj = NewUser(pubKey)
	}
	return obj, err
}

// NextSequence returns the sequence the next signature of given signer
// address must use.
func NextSequence(db poa.ReadOnlyKVStore, signer poa.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return AsUser(obj).Sequence, nil
}

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr poa.QueryRouter) {
	NewBucket().Register("auth", qr)
}
