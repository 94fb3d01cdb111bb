package config

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mb/pkg/adminclient"
	"github.com/getmockd/mb/pkg/cliconfig"
)

// fakeAdmin records every PUT /imposters body.
type fakeAdmin struct {
	mu     sync.Mutex
	bodies []string
}

func (f *fakeAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut || r.URL.Path != "/imposters" {
		http.NotFound(w, r)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (f *fakeAdmin) puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

func newFakeAdmin(t *testing.T) (*fakeAdmin, *adminclient.Client) {
	t.Helper()
	fake := &fakeAdmin{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, adminclient.New(server.URL)
}

func writeConfig(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func optionsFor(path string) cliconfig.Options {
	opts := cliconfig.Defaults()
	opts.ConfigFile = path
	return opts
}

func TestLoad_NoConfigFileIsNoop(t *testing.T) {
	fake, client := newFakeAdmin(t)
	opts := cliconfig.Defaults()

	require.NoError(t, NewLoader(opts, client).Load(context.Background()))
	assert.Empty(t, fake.puts())
}

func TestLoad_BareListIsWrapped(t *testing.T) {
	fake, client := newFakeAdmin(t)
	path := writeConfig(t, t.TempDir(), "imposters.json", `[{"protocol":"http","port":3000}]`)

	require.NoError(t, NewLoader(optionsFor(path), client).Load(context.Background()))

	puts := fake.puts()
	require.Len(t, puts, 1)
	assert.JSONEq(t, `{"imposters":[{"protocol":"http","port":3000}]}`, puts[0])
}

func TestLoad_ObjectWithImpostersIsSentAsIs(t *testing.T) {
	fake, client := newFakeAdmin(t)
	path := writeConfig(t, t.TempDir(), "imposters.json",
		`{"imposters":[{"protocol":"tcp"},{"protocol":"http"}],"comment":"team stubs","meta":{"owner":"qa"}}`)

	require.NoError(t, NewLoader(optionsFor(path), client).Load(context.Background()))

	puts := fake.puts()
	require.Len(t, puts, 1)
	assert.JSONEq(t, `{"imposters":[{"protocol":"tcp"},{"protocol":"http"}],"comment":"team stubs","meta":{"owner":"qa"}}`, puts[0])
}

func TestLoad_MissingFile(t *testing.T) {
	fake, client := newFakeAdmin(t)
	path := filepath.Join(t.TempDir(), "nope.json")

	err := NewLoader(optionsFor(path), client).Load(context.Background())
	assert.ErrorIs(t, err, ErrConfigFileMissing)
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, fake.puts())
}

func TestLoad_InvalidJSON(t *testing.T) {
	fake, client := newFakeAdmin(t)
	path := writeConfig(t, t.TempDir(), "imposters.json", "{\n  \"imposters\": [,]\n}")

	err := NewLoader(optionsFor(path), client).Load(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, path, parseErr.Path)
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.Contains(t, err.Error(), "line 2")
	assert.False(t, errors.Is(err, ErrConfigFileMissing))
	assert.Empty(t, fake.puts())
}

func TestLoad_RendersIncludes(t *testing.T) {
	fake, client := newFakeAdmin(t)
	dir := t.TempDir()
	writeConfig(t, dir, "bodies/hello.txt", "hello \"world\"")
	path := writeConfig(t, dir, "imposters.ejs",
		`{"imposters":[{"protocol":"http","stubs":[{"responses":[{"is":{"body":"<%- stringify(filename, 'bodies/hello.txt') %>"}}]}]}]}`)

	require.NoError(t, NewLoader(optionsFor(path), client).Load(context.Background()))

	puts := fake.puts()
	require.Len(t, puts, 1)
	var sent struct {
		Imposters []struct {
			Stubs []struct {
				Responses []struct {
					Is struct {
						Body string `json:"body"`
					} `json:"is"`
				} `json:"responses"`
			} `json:"stubs"`
		} `json:"imposters"`
	}
	require.NoError(t, json.Unmarshal([]byte(puts[0]), &sent))
	assert.Equal(t, "hello \"world\"", sent.Imposters[0].Stubs[0].Responses[0].Is.Body)
}

func TestLoad_NoParseSkipsRendering(t *testing.T) {
	_, client := newFakeAdmin(t)
	dir := t.TempDir()
	writeConfig(t, dir, "body.txt", "x")
	path := writeConfig(t, dir, "imposters.json", `[{"note":"<%- stringify(filename, 'body.txt') %>"}]`)

	opts := optionsFor(path)
	opts.NoParse = true
	doc, err := NewLoader(opts, client).Read()
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.JSONEq(t, `{"note":"<%- stringify(filename, 'body.txt') %>"}`, string(doc.Imposters[0]))
}

func TestLoad_TemplateErrorIsParseError(t *testing.T) {
	_, client := newFakeAdmin(t)
	path := writeConfig(t, t.TempDir(), "imposters.ejs", `[<% include other %>]`)

	err := NewLoader(optionsFor(path), client).Load(context.Background())
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoad_PutFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":"bad data"}]}`))
	}))
	defer server.Close()
	path := writeConfig(t, t.TempDir(), "imposters.json", `[]`)

	err := NewLoader(optionsFor(path), adminclient.New(server.URL)).Load(context.Background())
	var apiErr *adminclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
