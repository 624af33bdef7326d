package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of a message or model attribute to err. It
// returns nil when err is nil, so validation code can wrap the result of a
// check unconditionally.
//
// Field names follow Go naming, for example Candidate or PubKey. Nested
// attributes use dot notation, for example Voters.2.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField groups errs with a field error built from err.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

// FieldErrors returns the errors created for the named field. Groups are
// searched recursively.
func FieldErrors(err error, name string) []error {
	var found []error
	walkFields(err, func(f *fieldError) {
		if f.field == name {
			found = append(found, f)
		}
	})
	return found
}

// walkFields calls fn for every outermost field error within err.
func walkFields(err error, fn func(*fieldError)) {
	for !isNilErr(err) {
		switch e := err.(type) {
		case *fieldError:
			fn(e)
			return
		case unpacker:
			for _, child := range e.Unpack() {
				walkFields(child, fn)
			}
			return
		case causer:
			err = e.Cause()
		default:
			return
		}
	}
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error { return e.parent }

// Field returns the attribute name the error was created for.
func (e *fieldError) Field() string { return e.field }
