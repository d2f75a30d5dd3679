// Package server exposes the collection to the local UI over a JSON API plus
// a WebSocket push channel. It binds to loopback; there is no remote access,
// no auth, no multi-user anything.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/boardvault/backup"
	"github.com/wfunc/boardvault/collection"
	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
	"github.com/wfunc/boardvault/monitor"
	"github.com/wfunc/boardvault/notify"
	"github.com/wfunc/boardvault/query"
)

// MetadataLookup 外部元数据查询接口
type MetadataLookup interface {
	FetchGameDetails(ctx context.Context, gameName string) (*models.AIInfoResponse, error)
	FetchExpansions(ctx context.Context, query string) ([]models.Expansion, error)
}

type VaultServer struct {
	addr       string
	store      *collection.Store
	lookup     MetadataLookup
	hub        *notify.Hub
	mon        *monitor.Monitor
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// gamePayload is the request body for create/update: the editable form
// fields plus the owned expansions.
type gamePayload struct {
	models.GameFormData
	Expansions []models.Expansion `json:"ownedExpansions"`
}

func NewVaultServer(addr string, store *collection.Store, lookup MetadataLookup, mon *monitor.Monitor) *VaultServer {
	s := &VaultServer{
		addr:   addr,
		store:  store,
		lookup: lookup,
		hub:    notify.NewHub(),
		mon:    mon,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // loopback only
			},
		},
	}

	// Every mutation fans out to connected UI sessions and the gauge.
	store.SetOnChange(func(games []models.BoardGame) {
		if s.mon != nil {
			s.mon.SetCollectionSize(len(games))
		}
		s.hub.Broadcast(notify.Event{Type: notify.EventCollectionChanged, Count: len(games)})
	})
	if s.mon != nil {
		s.mon.SetCollectionSize(store.Len())
	}

	return s
}

func (s *VaultServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("PUT /api/games/{id}", s.handleUpdateGame)
	mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/editor", s.handleEditorGet)
	mux.HandleFunc("PUT /api/editor", s.handleEditorSave)

	mux.HandleFunc("POST /api/lookup", s.handleLookupDetails)
	mux.HandleFunc("POST /api/lookup/expansions", s.handleLookupExpansions)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

func (s *VaultServer) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	logger.Log.Infof("Vault server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *VaultServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *VaultServer) handleListGames(w http.ResponseWriter, r *http.Request) {
	opts := parseQueryOptions(r)
	games := s.store.Query(opts)
	if s.mon != nil {
		s.mon.IncQueries()
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *VaultServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var payload gamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	game := s.store.Create(payload.GameFormData, payload.Expansions)
	if s.mon != nil {
		s.mon.IncMutations()
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *VaultServer) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	var payload gamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, ok := s.store.Update(r.PathValue("id"), payload.GameFormData, payload.Expansions)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if s.mon != nil {
		s.mon.IncMutations()
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *VaultServer) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if s.mon != nil {
		s.mon.IncMutations()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *VaultServer) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := backup.Export(s.store.Games())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(time.Now())+`"`)
	w.Write(data)
}

func (s *VaultServer) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	raw, err := backup.ParseImport(body)
	if err != nil {
		// Format error: report it, mutate nothing.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	games := s.store.ReplaceAll(raw)
	if s.mon != nil {
		s.mon.IncMutations()
	}

	// Imports are the one mutation whose save failure the user must see
	// immediately; the in-memory state is kept either way.
	if err := s.store.Flush(r.Context()); err != nil {
		logger.Log.Errorf("Failed to persist imported collection: %v", err)
		writeError(w, http.StatusInternalServerError, "import loaded but could not be saved")
		return
	}

	writeJSON(w, http.StatusOK, games)
}

func (s *VaultServer) handleEditorGet(w http.ResponseWriter, r *http.Request) {
	text, err := backup.EditorText(s.store.Games())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not render collection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *VaultServer) handleEditorSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raw, err := backup.ParseEditorText(req.Text)
	if err != nil {
		// The editor stays open and the store untouched.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	games := s.store.ReplaceAll(raw)
	if s.mon != nil {
		s.mon.IncMutations()
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *VaultServer) handleLookupDetails(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata lookup not configured")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	start := time.Now()
	info, err := s.lookup.FetchGameDetails(r.Context(), req.Name)
	if s.mon != nil {
		s.mon.ObserveLookupLatency(time.Since(start))
	}
	if err != nil {
		logger.Log.Errorf("Metadata lookup for %q failed: %v", req.Name, err)
		writeError(w, http.StatusBadGateway, "metadata lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *VaultServer) handleLookupExpansions(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata lookup not configured")
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	expansions, err := s.lookup.FetchExpansions(r.Context(), req.Query)
	if s.mon != nil {
		s.mon.ObserveLookupLatency(time.Since(start))
	}
	if err != nil {
		logger.Log.Errorf("Expansion lookup for %q failed: %v", req.Query, err)
		writeError(w, http.StatusBadGateway, "expansion lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, expansions)
}

func (s *VaultServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"games":    s.store.Len(),
		"sessions": s.hub.Count(),
	})
}

func (s *VaultServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	sess := notify.NewSession(uuid.New().String(), conn)
	s.hub.Add(sess)
	if s.mon != nil {
		s.mon.SetConnectedSessions(s.hub.Count())
	}
	logger.Log.Infof("UI session connected: %s", sess.ID)

	defer func() {
		s.hub.Remove(sess.ID)
		if s.mon != nil {
			s.mon.SetConnectedSessions(s.hub.Count())
		}
		sess.Close()
		logger.Log.Infof("UI session closed: %s", sess.ID)
	}()

	// The push channel is one-way; the read loop only notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func parseQueryOptions(r *http.Request) query.Options {
	q := r.URL.Query()
	opts := query.Options{
		Search: q.Get("search"),
		SortBy: query.SortBy(q.Get("sortBy")),
		Order:  query.Order(q.Get("order")),
	}
	opts.Players = atoiOrZero(q.Get("players"))
	opts.MaxTime = atoiOrZero(q.Get("maxTime"))
	opts.MinAge = atoiOrZero(q.Get("minAge"))
	if opts.SortBy == "" {
		opts.SortBy = query.SortByName
	}
	if opts.Order == "" {
		opts.Order = query.OrderAsc
	}
	return opts
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logger.Log.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
