package orm

import (
	"reflect"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db poa.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists, and
	// ErrNotFound otherwise.
	Has(db poa.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database.
	Put(db poa.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db poa.KVStore, key []byte) error

	// PrefixScan returns all stored entities whose primary key starts
	// with the prefix, ordered by key.
	PrefixScan(db poa.ReadOnlyKVStore, prefix []byte) ([]Object, error)

	// Register registers this bucket for queries under the given name.
	Register(name string, r poa.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as the given one.
func NewModelBucket(name string, m Model) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, m))
	return &modelBucket{
		b:     b,
		model: reflect.TypeOf(m),
	}
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

func (mb *modelBucket) One(db poa.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Has(db poa.ReadOnlyKVStore, key []byte) error {
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model)
	}
	return nil
}

func (mb *modelBucket) Put(db poa.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.b.Name())
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db poa.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) PrefixScan(db poa.ReadOnlyKVStore, prefix []byte) ([]Object, error) {
	return mb.b.PrefixScan(db, prefix)
}

func (mb *modelBucket) Register(name string, r poa.QueryRouter) {
	mb.b.Register(name, r)
}

var _ ModelBucket = (*modelBucket)(nil)
