package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrNotObject = errors.New("extraction payload is not a JSON object")

type pair struct {
	key string
	raw json.RawMessage
}

// Decode parses an extraction payload. It accepts the flat field object itself or
// an envelope whose "content" (optionally under "data") is an object, a JSON string
// encoding an object, or an array of objects merged in order.
func Decode(data []byte) (*Record, error) {
	pairs, err := readObject(data)
	if err != nil {
		return nil, err
	}
	if raw, ok := find(pairs, "data"); ok && !hasKey(pairs, "content") {
		if inner, err := readObject(raw); err == nil && hasKey(inner, "content") {
			pairs = inner
		}
	}
	raw, ok := find(pairs, "content")
	if !ok {
		return fromPairs(pairs)
	}
	return decodeContent(raw, pairs)
}

func decodeContent(raw json.RawMessage, envelope []pair) (*Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fromPairs(envelope)
	}
	switch trimmed[0] {
	case '{':
		inner, err := readObject(trimmed)
		if err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
		return fromPairs(inner)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("decode content string: %w", err)
		}
		inner, err := readObject([]byte(s))
		if err != nil {
			// content was plain text; keep the envelope as the record
			return fromPairs(envelope)
		}
		return fromPairs(inner)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode content list: %w", err)
		}
		rec := newRecord()
		for _, item := range items {
			inner, err := readObject(item)
			if err != nil {
				continue
			}
			if err := appendPairs(rec, inner); err != nil {
				return nil, err
			}
		}
		return rec, nil
	}
	return fromPairs(envelope)
}

func fromPairs(pairs []pair) (*Record, error) {
	rec := newRecord()
	if err := appendPairs(rec, pairs); err != nil {
		return nil, err
	}
	return rec, nil
}

func appendPairs(rec *Record, pairs []pair) error {
	for _, p := range pairs {
		v, err := scalar(p.raw)
		if err != nil {
			return fmt.Errorf("decode field %q: %w", p.key, err)
		}
		rec.add(p.key, v)
	}
	return nil
}

func scalar(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Absent, err
	}
	return Value{v: v}, nil
}

// readObject walks one JSON object keeping key order.
func readObject(data []byte) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}
	var out []pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read value of %q: %w", key, err)
		}
		out = append(out, pair{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read payload end: %w", err)
	}
	return out, nil
}

func find(pairs []pair, key string) (json.RawMessage, bool) {
	for _, p := range pairs {
		if p.key == key {
			return p.raw, true
		}
	}
	return nil, false
}

func hasKey(pairs []pair, key string) bool {
	_, ok := find(pairs, key)
	return ok
}
