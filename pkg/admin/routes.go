package admin

import "net/http"

func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /config", a.handleConfig)

	mux.HandleFunc("GET /imposters", a.handleListImposters)
	mux.HandleFunc("PUT /imposters", a.handleReplaceImposters)
	mux.HandleFunc("POST /imposters", a.handleCreateImposter)
	mux.HandleFunc("DELETE /imposters", a.handleDeleteImposters)
}
