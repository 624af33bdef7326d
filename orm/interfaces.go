package orm

import (
	"github.com/iov-one/poa"
)

// Object is a model together with the key it is stored under. The bucket
// prefix is joined with the key to build the database key.
type Object interface {
	Keyed
	Cloneable
	// Validate returns an error if the object must not be saved.
	Validate() error
	Value() poa.Persistent
}

// Keyed is anything that knows its own primary key.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable returns an empty copy to load stored data into.
type Cloneable interface {
	Clone() Object
}

// Model is the value of an object: any persistent entity that can validate
// itself.
type Model interface {
	poa.Persistent
	Validate() error
}
