package admin

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/httputil"
)

func newTestAPI(t *testing.T, mutate func(*cliconfig.Options)) *API {
	t.Helper()
	opts := cliconfig.Defaults()
	opts.Host = "127.0.0.1"
	opts.Port = 0
	if mutate != nil {
		mutate(&opts)
	}
	api, err := NewAPI(opts)
	require.NoError(t, err)
	return api
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeImposters(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body struct {
		Imposters []map[string]any `json:"imposters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Imposters
}

const proxyConfig = `{"imposters":[{
	"protocol":"http","port":4545,"numberOfRequests":3,"requests":[{"path":"/"}],
	"stubs":[
		{"responses":[{"proxy":{"to":"http://origin"}}]},
		{"responses":[{"is":{"body":"recorded"}},{"proxy":{"to":"http://origin"}}],"matches":[{"x":1}]},
		{"responses":[{"is":{"statusCode":201}}]}
	]}]}`

func TestStartStop(t *testing.T) {
	api := newTestAPI(t, nil)
	require.NoError(t, api.Start())
	port := api.Port()
	require.NotZero(t, port)

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, api.Stop())
	require.NoError(t, api.Stop())

	_, err = http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
	assert.Error(t, err)
}

func TestStart_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	api := newTestAPI(t, func(o *cliconfig.Options) { o.Port = busy })
	err = api.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(busy))
	assert.NoError(t, api.Stop())
}

func TestPutThenGet(t *testing.T) {
	h := newTestAPI(t, nil).Handler()

	rec := do(t, h, http.MethodPut, "/imposters", `{"imposters":[{"protocol":"http","port":3000}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	installed := decodeImposters(t, rec)
	require.Len(t, installed, 1)
	assert.Equal(t, "http", installed[0]["protocol"])

	rec = do(t, h, http.MethodGet, "/imposters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	imposters := decodeImposters(t, rec)
	require.Len(t, imposters, 1)
	assert.Equal(t, float64(0), imposters[0]["numberOfRequests"])
	assert.Contains(t, imposters[0], "_links")
}

func TestPut_ReplacesEverything(t *testing.T) {
	h := newTestAPI(t, nil).Handler()
	do(t, h, http.MethodPut, "/imposters", `{"imposters":[{"port":1},{"port":2}]}`)
	do(t, h, http.MethodPut, "/imposters", `{"imposters":[{"port":3}]}`)

	imposters := decodeImposters(t, do(t, h, http.MethodGet, "/imposters?replayable=true", ""))
	require.Len(t, imposters, 1)
	assert.Equal(t, float64(3), imposters[0]["port"])
}

func TestPut_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty body", "", httputil.CodeBadData},
		{"invalid JSON", "{", httputil.CodeBadData},
		{"bare list", `[{"port":1}]`, httputil.CodeBadData},
		{"non-object imposter", `{"imposters":[1]}`, httputil.CodeBadData},
		{"duplicate port", `{"imposters":[{"port":1},{"port":1}]}`, httputil.CodeResourceConflict},
		{"injection", `{"imposters":[{"stubs":[{"responses":[{"inject":"function(){}"}]}]}]}`, httputil.CodeInvalidInjection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAPI(t, nil).Handler()
			rec := do(t, h, http.MethodPut, "/imposters", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.code, body.Errors[0].Code)
		})
	}
}

func TestPut_AllowInjection(t *testing.T) {
	h := newTestAPI(t, func(o *cliconfig.Options) { o.AllowInjection = true }).Handler()
	rec := do(t, h, http.MethodPut, "/imposters", `{"imposters":[{"stubs":[{"predicates":[{"inject":"x"}]}]}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGet_ReplayableStripsRuntimeFields(t *testing.T) {
	h := newTestAPI(t, nil).Handler()
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/imposters", proxyConfig).Code)

	imposters := decodeImposters(t, do(t, h, http.MethodGet, "/imposters?replayable=true", ""))
	require.Len(t, imposters, 1)
	imp := imposters[0]
	assert.NotContains(t, imp, "numberOfRequests")
	assert.NotContains(t, imp, "requests")
	assert.NotContains(t, imp, "_links")

	stubs := imp["stubs"].([]any)
	require.Len(t, stubs, 3)
	assert.NotContains(t, stubs[1].(map[string]any), "matches")
}

func TestGet_RemoveProxies(t *testing.T) {
	h := newTestAPI(t, nil).Handler()
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/imposters", proxyConfig).Code)

	imposters := decodeImposters(t, do(t, h, http.MethodGet, "/imposters?replayable=true&removeProxies=true", ""))
	require.Len(t, imposters, 1)

	stubs := imposters[0]["stubs"].([]any)
	require.Len(t, stubs, 2, "stub with only a proxy response is dropped")
	first := stubs[0].(map[string]any)["responses"].([]any)
	require.Len(t, first, 1)
	assert.Contains(t, first[0].(map[string]any), "is")

	// The stored definition is not modified by a filtered read.
	imposters = decodeImposters(t, do(t, h, http.MethodGet, "/imposters?replayable=true", ""))
	assert.Len(t, imposters[0]["stubs"].([]any), 3)
}

func TestPost_AddsImposter(t *testing.T) {
	h := newTestAPI(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/imposters", `{"protocol":"tcp","port":5000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/imposters/5000"))

	rec = do(t, h, http.MethodPost, "/imposters", `{"protocol":"http","port":5000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	imposters := decodeImposters(t, do(t, h, http.MethodGet, "/imposters", ""))
	assert.Len(t, imposters, 1)
}

func TestDelete_ReturnsRemovedSet(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.Handler()
	do(t, h, http.MethodPut, "/imposters", proxyConfig)

	rec := do(t, h, http.MethodDelete, "/imposters", "")
	require.Equal(t, http.StatusOK, rec.Code)
	removed := decodeImposters(t, rec)
	require.Len(t, removed, 1)
	assert.NotContains(t, removed[0], "requests")
	assert.Equal(t, 0, api.Store().Len())
}

func TestConfigEndpoint(t *testing.T) {
	api, err := NewAPI(cliconfig.Defaults(), WithVersion("1.2.3"))
	require.NoError(t, err)

	rec := do(t, api.Handler(), http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.2.3", body.Version)
	assert.NotZero(t, body.Process.PID)
	assert.Equal(t, float64(cliconfig.DefaultPort), body.Options.(map[string]any)["port"])
}

func TestRoot(t *testing.T) {
	h := newTestAPI(t, nil).Handler()
	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/imposters")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}

func TestAccessControl(t *testing.T) {
	tests := []struct {
		name      string
		localOnly bool
		whitelist []string
		remote    string
		allowed   bool
	}{
		{"default allows all", false, []string{"*"}, "10.1.2.3:1234", true},
		{"no patterns allows all", false, nil, "10.1.2.3:1234", true},
		{"local only loopback", true, nil, "127.0.0.1:1234", true},
		{"local only ipv6 loopback", true, nil, "[::1]:1234", true},
		{"local only remote", true, nil, "10.1.2.3:1234", false},
		{"whitelist glob match", false, []string{"192.168.*"}, "192.168.1.20:1", true},
		{"whitelist glob miss", false, []string{"192.168.*"}, "10.0.0.1:1", false},
		{"whitelist second pattern", false, []string{"10.0.0.2", "127.0.0.1"}, "127.0.0.1:1", true},
		{"ipv4 mapped", false, []string{"127.0.0.1"}, "[::ffff:127.0.0.1]:1", true},
		{"loopback bypasses whitelist", false, []string{"192.168.*", "10.0.*"}, "127.0.0.1:1", true},
		{"ipv6 loopback bypasses whitelist", false, []string{"192.168.*"}, "[::1]:1", true},
		{"ipv4 mapped loopback bypasses whitelist", false, []string{"10.*"}, "[::ffff:127.0.0.1]:1", true},
		{"local only ignores whitelist", true, []string{"10.*"}, "10.1.1.1:1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, err := newAccessControl(tt.localOnly, tt.whitelist)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ac.allowed(tt.remote))
		})
	}
}

func TestAccessControl_Middleware(t *testing.T) {
	h := newTestAPI(t, func(o *cliconfig.Options) { o.IPWhitelist = []string{"10.*"} }).Handler()
	rec := do(t, h, http.MethodGet, "/imposters", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewAPI_InvalidPattern(t *testing.T) {
	opts := cliconfig.Defaults()
	opts.IPWhitelist = []string{"[unclosed"}
	_, err := NewAPI(opts)
	assert.Error(t, err)
}
