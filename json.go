package pgcopy

import (
	"encoding/json"
	"io"
)

// jsonbVersion prefixes every jsonb payload.
const jsonbVersion byte = 1

// JSON is a json column holding already-encoded JSON text.
type JSON []byte

// JSONB is a jsonb column holding already-encoded JSON text.
type JSONB []byte

// JSONOf marshals v for a json column.
func JSONOf(v any) (JSON, error) {
	b, err := json.Marshal(v)
	return JSON(b), err
}

// JSONBOf marshals v for a jsonb column.
func JSONBOf(v any) (JSONB, error) {
	b, err := json.Marshal(v)
	return JSONB(b), err
}

func (j JSON) Size() int { return len(j) }

func (j JSON) WriteTo(w io.Writer) (int64, error) {
	return Bytea(j).WriteTo(w)
}

func (j JSONB) Size() int { return 1 + len(j) }

func (j JSONB) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{jsonbVersion})
	if err != nil {
		return int64(n), err
	}
	m, err := Bytea(j).WriteTo(w)
	return int64(n) + m, err
}
