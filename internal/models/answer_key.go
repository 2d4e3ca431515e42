package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerKeyEntry is one key/value pair of an AnswerKey.
type AnswerKeyEntry struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// AnswerKey is an insertion-ordered string map. On the wire it is a JSON
// object whose members keep their order; in storage it is a list of entries.
type AnswerKey []AnswerKeyEntry

// Get returns the value stored for key.
func (k AnswerKey) Get(key string) (string, bool) {
	for _, e := range k {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key or appends a new entry.
func (k *AnswerKey) Set(key, value string) {
	for i := range *k {
		if (*k)[i].Key == key {
			(*k)[i].Value = value
			return
		}
	}
	*k = append(*k, AnswerKeyEntry{Key: key, Value: value})
}

// Len returns the number of entries.
func (k AnswerKey) Len() int {
	return len(k)
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range k {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping member order. Null members are
// skipped, a null object yields an empty key.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*k = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("answer key: expected object, got %v", tok)
	}

	result := AnswerKey{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("answer key: expected string key, got %v", tok)
		}

		var value *string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("answer key: value for %q: %w", key, err)
		}
		if value == nil {
			continue
		}
		result.Set(key, *value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*k = result
	return nil
}
