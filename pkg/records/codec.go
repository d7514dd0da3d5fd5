package records

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Codec serializes one record kind to its fixed-size XDR form.
//
// XDR encodes int32 as 4 bytes, int64 as 8, and fixed byte arrays as fixed
// opaque data padded to a 4-byte boundary, so Size is a constant per kind.
type Codec[T any] struct {
	size int
}

// NewCodec computes the encoded size for T by marshaling a zero value.
// It panics if T is not XDR-serializable; that is a programmer error caught
// at startup, not a runtime condition.
func NewCodec[T any]() Codec[T] {
	var zero T
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &zero); err != nil {
		panic(fmt.Sprintf("records: type %T is not XDR-serializable: %v", zero, err))
	}
	return Codec[T]{size: buf.Len()}
}

// Size returns the constant encoded record size in bytes.
func (c Codec[T]) Size() int { return c.size }

// Encode serializes rec. The result is always exactly Size() bytes.
func (c Codec[T]) Encode(rec *T) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(c.size)
	if _, err := xdr.Marshal(&buf, rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if buf.Len() != c.size {
		return nil, fmt.Errorf("encode record: got %d bytes, want %d", buf.Len(), c.size)
	}
	return buf.Bytes(), nil
}

// Decode deserializes exactly one record from data.
func (c Codec[T]) Decode(data []byte, rec *T) error {
	if len(data) != c.size {
		return fmt.Errorf("decode record: got %d bytes, want %d", len(data), c.size)
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
