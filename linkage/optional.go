package linkage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Opt is a field value that is either present or absent.
// The zero Opt is absent. A present empty string is not the same as absent.
type Opt[T comparable] struct {
	value T
	set   bool
}

// Some returns a present value.
func Some[T comparable](v T) Opt[T] { return Opt[T]{value: v, set: true} }

// None returns an absent value.
func None[T comparable]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) Get() (T, bool) { return o.value, o.set }
func (o Opt[T]) IsSet() bool     { return o.set }

// OrElse returns the value, or fallback when absent.
func (o Opt[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

func (o Opt[T]) String() string {
	if !o.set {
		return "None"
	}
	return fmt.Sprintf("Some(%#v)", o.value)
}

// MarshalJSON writes null for absent values.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats null as absent. A missing key never reaches here and
// leaves the zero (absent) value in place.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Opt[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !o.set {
		return enc.EncodeNil()
	}
	return enc.Encode(o.value)
}

func (o *Opt[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		*o = Opt[T]{}
		return dec.DecodeNil()
	}
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
