package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"object with imposters", `{"imposters":[{"port":1}]}`, `{"imposters":[{"port":1}]}`},
		{"bare list", `[{"port":1},{"port":2}]`, `{"imposters":[{"port":1},{"port":2}]}`},
		{"empty list", `[]`, `{"imposters":[]}`},
		{"single imposter", `{"protocol":"http","port":3000}`, `{"imposters":[{"protocol":"http","port":3000}]}`},
		{"null imposters", `{"imposters":null}`, `{"imposters":[]}`},
		{"sibling keys kept", `{"imposters":[{"port":1}],"note":"kept","defaults":{"x":1}}`, `{"imposters":[{"port":1}],"note":"kept","defaults":{"x":1}}`},
		{"null imposters with sibling", `{"imposters":null,"note":"kept"}`, `{"imposters":[],"note":"kept"}`},
		{"surrounding whitespace", "\n  [ {\"port\":1} ]\n", `{"imposters":[{"port":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Normalize([]byte(tt.in))
			require.NoError(t, err)
			out, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"truncated", `{"imposters":[`},
		{"imposters not a list", `{"imposters":{"port":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.in))
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}
}

func TestLineColumn(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := lineColumn(data, 5)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}
