package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the normalized config document sent to PUT /imposters.
// Imposters are opaque JSON values. A document that was already an object
// with an "imposters" key keeps its other top-level keys.
type Document struct {
	Imposters []json.RawMessage `json:"imposters"`

	raw json.RawMessage
}

// MarshalJSON encodes the document, reproducing the original object when
// there is one.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return d.raw, nil
	}
	return json.Marshal(struct {
		Imposters []json.RawMessage `json:"imposters"`
	}{nonNil(d.Imposters)})
}

// Len returns the number of imposters in the document.
func (d Document) Len() int {
	return len(d.Imposters)
}

// Normalize parses data and returns it in the object-with-imposters shape:
//   - an object with an "imposters" key is used as is, other keys included
//   - a bare list becomes the imposters list
//   - any other value is treated as a single imposter
func Normalize(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("%w: document is empty", ErrInvalidJSON)
	}
	if !json.Valid(trimmed) {
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidJSON, syntaxError(trimmed))
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return Document{Imposters: nonNil(list)}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		raw, ok := fields["imposters"]
		if !ok {
			return Document{Imposters: []json.RawMessage{json.RawMessage(trimmed)}}, nil
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return Document{}, fmt.Errorf("%w: \"imposters\" must be a list", ErrInvalidJSON)
		}
		doc := Document{Imposters: nonNil(list), raw: json.RawMessage(trimmed)}
		if list == nil {
			// "imposters": null is sent as an empty list.
			fields["imposters"] = json.RawMessage("[]")
			out, err := json.Marshal(fields)
			if err != nil {
				return Document{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			}
			doc.raw = out
		}
		return doc, nil
	}

	return Document{Imposters: []json.RawMessage{json.RawMessage(trimmed)}}, nil
}

// nonNil keeps an empty list encoding as [] rather than null.
func nonNil(list []json.RawMessage) []json.RawMessage {
	if list == nil {
		return []json.RawMessage{}
	}
	return list
}

// syntaxError describes where data stops being valid JSON.
func syntaxError(data []byte) string {
	var v any
	err := json.Unmarshal(data, &v)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		line, col := lineColumn(data, se.Offset)
		return fmt.Sprintf("line %d, column %d: %s", line, col, se.Error())
	}
	if err != nil {
		return err.Error()
	}
	return "invalid JSON"
}

// lineColumn finds the line and column number for a byte offset.
func lineColumn(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset-1 && int(i) < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
