package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil error is provided, nil is returned.
// If only one non-nil error is provided, it is returned unchanged.
// Otherwise a group error is returned that represents all of them. The first
// error determines the ABCI code of the group.
func Append(errs ...error) error {
	var all []error
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if u, ok := err.(unpacker); ok {
			all = append(all, u.Unpack()...)
		} else {
			all = append(all, err)
		}
	}

	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return multiErr(all)
	}
}

type multiErr []error

func (errs multiErr) Error() string {
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf(
		"%d errors occurred:\n\t%s\n",
		len(errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error.
func (errs multiErr) ABCICode() uint32 {
	return abciCode(errs[0])
}

// Unpack implements unpacker interface.
func (errs multiErr) Unpack() []error {
	return errs
}

// unpacker is implemented by errors that are a group of errors.
type unpacker interface {
	Unpack() []error
}
