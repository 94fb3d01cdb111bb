package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strconv"

	"github.com/getmockd/mb/pkg/httputil"
)

const maxBodySize = 10 << 20

type link struct {
	Href string `json:"href"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Links map[string]link `json:"_links"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime int    `json:"uptime"`
}

// ConfigResponse is the body of GET /config.
type ConfigResponse struct {
	Version string      `json:"version"`
	Options any         `json:"options"`
	Process ProcessInfo `json:"process"`
}

// ProcessInfo describes the server process.
type ProcessInfo struct {
	PID          int    `json:"pid"`
	GoVersion    string `json:"goVersion"`
	Architecture string `json:"architecture"`
	Platform     string `json:"platform"`
	Uptime       int    `json:"uptime"`
	Cwd          string `json:"cwd"`
}

// ImpostersResponse is the body of the imposters resource.
type ImpostersResponse struct {
	Imposters []Imposter `json:"imposters"`
}

func (a *API) baseURL(r *http.Request) string {
	return "http://" + r.Host
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	base := a.baseURL(r)
	httputil.WriteJSON(w, http.StatusOK, RootResponse{Links: map[string]link{
		"imposters": {Href: base + "/imposters"},
		"config":    {Href: base + "/config"},
		"health":    {Href: base + "/health"},
	}})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Uptime: a.Uptime()})
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	cwd, _ := os.Getwd()
	httputil.WriteJSON(w, http.StatusOK, ConfigResponse{
		Version: a.version,
		Options: a.opts,
		Process: ProcessInfo{
			PID:          os.Getpid(),
			GoVersion:    runtime.Version(),
			Architecture: runtime.GOARCH,
			Platform:     runtime.GOOS,
			Uptime:       a.Uptime(),
			Cwd:          cwd,
		},
	})
}

// handleListImposters handles GET /imposters.
func (a *API) handleListImposters(w http.ResponseWriter, r *http.Request) {
	imposters, err := a.store.All()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeBadData, err.Error())
		return
	}
	a.writeImposters(w, r, http.StatusOK, imposters)
}

// handleReplaceImposters handles PUT /imposters.
func (a *API) handleReplaceImposters(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Imposters []json.RawMessage `json:"imposters"`
	}
	if err := decodeBody(r, &body); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	imposters := make([]Imposter, 0, len(body.Imposters))
	for i, raw := range body.Imposters {
		imp, err := decodeImposter(raw)
		if err != nil {
			httputil.WriteBadRequest(w, fmt.Sprintf("imposter %d: must be a JSON object", i))
			return
		}
		if !a.checkInjection(w, imp) {
			return
		}
		imposters = append(imposters, imp)
	}

	installed, err := a.store.Replace(imposters)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.log.Info("imposters replaced", "count", len(installed))
	a.writeImposters(w, r, http.StatusOK, installed)
}

// handleCreateImposter handles POST /imposters.
func (a *API) handleCreateImposter(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	imp, err := decodeImposter(data)
	if err != nil {
		httputil.WriteBadRequest(w, "imposter must be a JSON object")
		return
	}
	if !a.checkInjection(w, imp) {
		return
	}
	if err := a.store.Add(imp); err != nil {
		a.writeStoreError(w, err)
		return
	}

	addLinks(imp, a.baseURL(r))
	if port, ok := portOf(imp); ok {
		w.Header().Set("Location", a.baseURL(r)+"/imposters/"+port)
	}
	a.log.Info("imposter created", "port", imp["port"], "protocol", imp["protocol"])
	httputil.WriteJSON(w, http.StatusCreated, imp)
}

// handleDeleteImposters handles DELETE /imposters. The removed imposters are
// returned in replayable form.
func (a *API) handleDeleteImposters(w http.ResponseWriter, r *http.Request) {
	removed, err := a.store.DeleteAll()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeBadData, err.Error())
		return
	}
	for _, imp := range removed {
		makeReplayable(imp)
		if queryBool(r, "removeProxies") {
			removeProxies(imp)
		}
	}
	a.log.Info("imposters deleted", "count", len(removed))
	httputil.WriteJSON(w, http.StatusOK, ImpostersResponse{Imposters: removed})
}

func (a *API) writeImposters(w http.ResponseWriter, r *http.Request, status int, imposters []Imposter) {
	replayable := queryBool(r, "replayable")
	dropProxies := queryBool(r, "removeProxies")
	base := a.baseURL(r)

	for _, imp := range imposters {
		if replayable {
			makeReplayable(imp)
		} else {
			addLinks(imp, base)
		}
		if dropProxies {
			removeProxies(imp)
		}
	}
	httputil.WriteJSON(w, status, ImpostersResponse{Imposters: imposters})
}

func (a *API) checkInjection(w http.ResponseWriter, imp Imposter) bool {
	if a.opts.AllowInjection || !usesInjection(imp) {
		return true
	}
	httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidInjection,
		"JavaScript injection is not allowed unless mb is run with the --allowInjection flag")
	return false
}

func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	var conflict *PortConflictError
	if errors.As(err, &conflict) {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeResourceConflict, err.Error())
		return
	}
	httputil.WriteBadRequest(w, err.Error())
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("request body is empty")
	}
	return data, nil
}

func decodeBody(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
