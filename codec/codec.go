/*
Package codec implements the protobuf wire encoding used by every model,
message and transaction stored or exchanged by the node.

Models implement Marshal and Unmarshal by hand on top of a Writer and a
Reader, so that the binary representation stays compatible with protobuf
decoders written in other languages while avoiding generated code.

	func (m *Vote) Marshal() ([]byte, error) {
		w := codec.NewWriter()
		w.Bytes(1, m.Voter)
		w.Int64(2, m.Height)
		return w.Data()
	}

Fields with a zero value are not written.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/poa/errors"
)

// Marshaller is implemented by anything that can be written as a nested
// message.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Unmarshaller is implemented by anything that can be read from a nested
// message.
type Unmarshaller interface {
	Unmarshal([]byte) error
}

// Writer accumulates protobuf encoded fields.
type Writer struct {
	buf *proto.Buffer
	err error
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{buf: proto.NewBuffer(nil)}
}

func (w *Writer) tag(field int, wire int) {
	if w.err != nil {
		return
	}
	w.err = w.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Bytes writes a length delimited field. Empty values are skipped.
func (w *Writer) Bytes(field int, b []byte) {
	if len(b) == 0 {
		return
	}
	w.tag(field, proto.WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeRawBytes(b)
	}
}

// RepeatedBytes writes each element as a separate field entry. Unlike Bytes,
// empty elements are written so that the element count is preserved.
func (w *Writer) RepeatedBytes(field int, bs [][]byte) {
	for _, b := range bs {
		w.tag(field, proto.WireBytes)
		if w.err == nil {
			w.err = w.buf.EncodeRawBytes(b)
		}
	}
}

// String writes a string field. Empty values are skipped.
func (w *Writer) String(field int, s string) {
	if s == "" {
		return
	}
	w.tag(field, proto.WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeStringBytes(s)
	}
}

// Uint64 writes a varint field. Zero is skipped.
func (w *Writer) Uint64(field int, v uint64) {
	if v == 0 {
		return
	}
	w.tag(field, proto.WireVarint)
	if w.err == nil {
		w.err = w.buf.EncodeVarint(v)
	}
}

// Int64 writes a varint field. Zero is skipped.
func (w *Writer) Int64(field int, v int64) {
	w.Uint64(field, uint64(v))
}

// Bool writes a varint field. False is skipped.
func (w *Writer) Bool(field int, v bool) {
	if v {
		w.Uint64(field, 1)
	}
}

// Message writes a nested message. A nil message is skipped.
func (w *Writer) Message(field int, m Marshaller) {
	if w.err != nil || m == nil {
		return
	}
	raw, err := m.Marshal()
	if err != nil {
		w.err = err
		return
	}
	w.tag(field, proto.WireBytes)
	if w.err == nil {
		w.err = w.buf.EncodeRawBytes(raw)
	}
}

// Data returns the encoded representation or the first error that happened
// during writing.
func (w *Writer) Data() ([]byte, error) {
	if w.err != nil {
		return nil, errors.Wrap(w.err, "encode")
	}
	if bz := w.buf.Bytes(); bz != nil {
		return bz, nil
	}
	// an empty message must still be distinguishable from a missing one
	return []byte{}, nil
}

// Reader iterates over fields of an encoded message.
type Reader struct {
	data  []byte
	field int
	wire  int
	err   error
}

// NewReader returns a reader of the given encoded message.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next moves to the next field and returns false when the message is
// consumed or an error happened. Check Err after iterating.
func (r *Reader) Next() bool {
	if r.err != nil || len(r.data) == 0 {
		return false
	}
	key, n := proto.DecodeVarint(r.data)
	if n == 0 {
		r.err = errors.Wrap(errors.ErrSchema, "malformed field key")
		return false
	}
	r.data = r.data[n:]
	r.field = int(key >> 3)
	r.wire = int(key & 7)
	if r.field <= 0 {
		r.err = errors.Wrapf(errors.ErrSchema, "illegal field number %d", r.field)
		return false
	}
	return true
}

// Field returns the number of the current field.
func (r *Reader) Field() int {
	return r.field
}

// Err returns the first error that happened during reading.
func (r *Reader) Err() error {
	return r.err
}

// Bytes reads the current field as a length delimited value. The returned
// slice is a copy.
func (r *Reader) Bytes() []byte {
	if r.err != nil {
		return nil
	}
	if r.wire != proto.WireBytes {
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: unexpected wire type %d", r.field, r.wire)
		return nil
	}
	size, n := proto.DecodeVarint(r.data)
	if n == 0 || uint64(len(r.data)-n) < size {
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: truncated", r.field)
		return nil
	}
	end := n + int(size)
	b := make([]byte, size)
	copy(b, r.data[n:end])
	r.data = r.data[end:]
	return b
}

// String reads the current field as a string.
func (r *Reader) String() string {
	return string(r.Bytes())
}

// Uint64 reads the current field as a varint.
func (r *Reader) Uint64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.wire != proto.WireVarint {
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: unexpected wire type %d", r.field, r.wire)
		return 0
	}
	v, n := proto.DecodeVarint(r.data)
	if n == 0 {
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: malformed varint", r.field)
		return 0
	}
	r.data = r.data[n:]
	return v
}

// Int64 reads the current field as a signed varint.
func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// Bool reads the current field as a boolean.
func (r *Reader) Bool() bool {
	return r.Uint64() != 0
}

// Message reads the current field into the given nested message.
func (r *Reader) Message(m Unmarshaller) {
	raw := r.Bytes()
	if r.err != nil {
		return
	}
	if err := m.Unmarshal(raw); err != nil {
		r.err = errors.Wrapf(err, "field %d", r.field)
	}
}

// Skip consumes the current field without interpreting it. Unknown fields
// must be skipped to stay forward compatible.
func (r *Reader) Skip() {
	switch r.wire {
	case proto.WireVarint:
		r.Uint64()
	case proto.WireBytes:
		r.Bytes()
	case proto.WireFixed64:
		r.advance(8)
	case proto.WireFixed32:
		r.advance(4)
	default:
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: unsupported wire type %d", r.field, r.wire)
	}
}

func (r *Reader) advance(n int) {
	if len(r.data) < n {
		r.err = errors.Wrapf(errors.ErrSchema, "field %d: truncated", r.field)
		return
	}
	r.data = r.data[n:]
}
