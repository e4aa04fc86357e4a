// Package api provides the HTTP API for observing and playing a match.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token and are applied on the tick goroutine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexturn/internal/engine"
	"github.com/talgya/hexturn/internal/persistence"
	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

const commandTimeout = 5 * time.Second

// Server serves match state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	commandLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/unit/", s.handleUnitRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	if s.Hub != nil {
		mux.Handle("/api/v1/stream", s.Hub)
	}

	// Player and admin commands.
	mux.HandleFunc("/api/v1/join", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleJoin)))
	mux.HandleFunc("/api/v1/ready", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleReady)))
	mux.HandleFunc("/api/v1/path", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handlePath)))
	mux.HandleFunc("/api/v1/spawn", s.adminOnly(RateLimitMiddleware(commandLimiter, s.handleSpawn)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "stream", s.Hub != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require POST with bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "commands disabled (no HEXTURN_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	status := map[string]any{
		"name":    "hexturn",
		"match":   snap.Match,
		"tick":    snap.Tick,
		"state":   snap.State,
		"players": snap.Players,
		"units":   len(snap.Units),
	}
	if !snap.Deadline.IsZero() {
		status["deadline"] = snap.Deadline
	}
	if s.Eng != nil {
		status["running"] = s.Eng.Running()
		status["uptime"] = engine.Uptime(snap.Tick, s.Eng.Interval)
	}
	if s.Hub != nil {
		status["stream_sessions"] = s.Hub.SessionCount()
	}
	writeJSON(w, status)
}

// handleMap returns every cell record with its coordinate, for map renderers.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type cellEntry struct {
		world.CellRecord
		X       int    `json:"x"`
		Z       int    `json:"z"`
		Terrain string `json:"terrain"`
	}

	g := s.Sim.Grid()
	records := s.Sim.MapRecords()
	cells := make([]cellEntry, 0, len(records))
	for _, rec := range records {
		col, row := int(rec.Index)%g.CellCountX, int(rec.Index)/g.CellCountX
		coord := world.FromOffset(col, row)
		cells = append(cells, cellEntry{
			CellRecord: rec,
			X:          coord.X,
			Z:          coord.Z,
			Terrain:    world.TerrainName(int(rec.TerrainType)),
		})
	}

	writeJSON(w, map[string]any{
		"cell_count_x": g.CellCountX,
		"cell_count_z": g.CellCountZ,
		"cells":        cells,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	result := snap.Units
	if t := r.URL.Query().Get("team"); t != "" {
		team, err := strconv.Atoi(t)
		if err != nil {
			http.Error(w, "invalid team", http.StatusBadRequest)
			return
		}
		result = make([]engine.UnitState, 0, len(snap.Units))
		for _, u := range snap.Units {
			if int(u.Team) == team {
				result = append(result, u)
			}
		}
	}
	writeJSON(w, result)
}

// handleUnitRoutes serves /api/v1/unit/:id and /api/v1/unit/:id/path.
func (s *Server) handleUnitRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/unit/"), "/"), "/")
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		http.Error(w, "invalid unit id", http.StatusBadRequest)
		return
	}

	u, ok := s.Sim.Snapshot().Unit(world.UnitID(id))
	if !ok {
		http.Error(w, "unit not found", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 1:
		writeJSON(w, u)
	case len(parts) == 2 && parts[1] == "path":
		writeJSON(w, map[string]any{
			"unit":           u.ID,
			"budget":         u.Budget,
			"path":           u.Path,
			"exceeds_budget": u.ExceedsBudget,
		})
	default:
		http.Error(w, "usage: /api/v1/unit/:id[/path]", http.StatusNotFound)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var events []engine.Event
	if r.URL.Query().Get("source") == "db" {
		if s.DB == nil {
			http.Error(w, "database not available", http.StatusServiceUnavailable)
			return
		}
		var err error
		if events, err = s.DB.RecentEvents(limit); err != nil {
			slog.Error("reading events", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
	} else {
		events = s.Sim.Events(0)
	}

	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

type coordRequest struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (c coordRequest) coord() world.Coordinate {
	return world.Coordinate{X: c.X, Z: c.Z}
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
		Team   uint8  `json:"team"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Player == "" {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}
	s.command(w, r, engine.Command{Kind: engine.CommandJoin, Player: req.Player, Team: req.Team})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Player string `json:"player"`
		Ready  *bool  `json:"ready"`
	}{}
	if !decodeJSON(w, r, &req) {
		return
	}
	ready := req.Ready == nil || *req.Ready
	s.command(w, r, engine.Command{Kind: engine.CommandReady, Player: req.Player, Ready: ready})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string       `json:"player"`
		Unit   world.UnitID `json:"unit"`
		Mode   string       `json:"mode"` // "set" (default), "extend" or "clear"
		Target coordRequest `json:"target"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := engine.Command{Player: req.Player, Unit: req.Unit, Target: req.Target.coord()}
	switch req.Mode {
	case "", "set":
		cmd.Kind = engine.CommandSetPath
	case "extend":
		cmd.Kind = engine.CommandExtendPath
	case "clear":
		cmd.Kind = engine.CommandClearPath
	default:
		http.Error(w, "unknown mode (use: set, extend, clear)", http.StatusBadRequest)
		return
	}
	if !s.apply(w, r, cmd) {
		return
	}

	u, _ := s.Sim.Snapshot().Unit(req.Unit)
	writeJSON(w, map[string]any{
		"unit":           u.ID,
		"path":           u.Path,
		"exceeds_budget": u.ExceedsBudget,
	})
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string       `json:"player"`
		Type   string       `json:"type"`
		Target coordRequest `json:"target"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.command(w, r, engine.Command{
		Kind:     engine.CommandSpawn,
		Player:   req.Player,
		UnitType: req.Type,
		Target:   req.Target.coord(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveGame(s.Sim, nil); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    s.Sim.Snapshot().Tick,
		"message": "snapshot saved",
	})
}

// command applies cmd and replies with the resulting turn state.
func (s *Server) command(w http.ResponseWriter, r *http.Request, cmd engine.Command) {
	if !s.apply(w, r, cmd) {
		return
	}
	writeJSON(w, map[string]any{
		"command": cmd.Kind.String(),
		"state":   s.Sim.Snapshot().State,
	})
}

// apply waits for the tick goroutine to apply cmd and writes an error
// response when it is rejected.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, cmd engine.Command) bool {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	err := s.Sim.Do(ctx, cmd)
	if err == nil {
		return true
	}
	slog.Debug("command failed", "kind", cmd.Kind, "player", cmd.Player, "error", err)
	http.Error(w, err.Error(), commandStatus(err))
	return false
}

// commandStatus maps a command error to an HTTP status code.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrWrongPhase), errors.Is(err, engine.ErrNotAccepting),
		errors.Is(err, engine.ErrPlayerExists), errors.Is(err, units.ErrCellOccupied):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrUnknownPlayer), errors.Is(err, engine.ErrUnknownUnit),
		errors.Is(err, units.ErrUnknownType):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInboxFull), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
