package linkage

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// WriteRecordsMsgpack writes records as a MessagePack array.
func WriteRecordsMsgpack(w io.Writer, records []Record) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.EncodeArrayLen(len(records)); err != nil {
		return err
	}
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecordsMsgpack reads records encoded by WriteRecordsMsgpack.
func ReadRecordsMsgpack(r io.Reader, fn func(Record) error) error {
	dec := msgpack.NewDecoder(r)
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return err
		}
		ensureID(&rec)
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
