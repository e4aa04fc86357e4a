// Command hexserver runs an authoritative hexturn match and serves it over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hexturn/internal/api"
	"github.com/talgya/hexturn/internal/engine"
	"github.com/talgya/hexturn/internal/persistence"
	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

const (
	deployPerTeam = 3
	deployTeams   = 2
	saveInterval  = time.Minute
)

func main() {
	setupLogging()

	configPath := envOr("HEXTURN_CONFIG", "configs/game.yaml")
	unitsPath := envOr("HEXTURN_UNITS", "configs/units.yaml")
	dbPath := envOr("HEXTURN_DB", "data/hexturn.db")
	apiPort := 8080
	if p, err := strconv.Atoi(os.Getenv("HEXTURN_PORT")); err == nil {
		apiPort = p
	}

	// ── Configuration ────────────────────────────────────────────────
	cfg, err := engine.LoadConfigFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", configPath)
		cfg, err = engine.DefaultConfig(), nil
	}
	if err != nil {
		fatal("failed to load config", err)
	}
	if s, err := strconv.ParseInt(os.Getenv("HEXTURN_SEED"), 10, 64); err == nil {
		cfg.Map.Seed = s
	}

	catalog, err := loadCatalog(unitsPath)
	if err != nil {
		fatal("failed to load unit catalog", err)
	}
	slog.Info("unit catalog loaded", "path", unitsPath, "types", len(catalog.Units))

	// ── Database ─────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Map and match ────────────────────────────────────────────────
	g, err := world.NewGrid(cfg.Map.Width, cfg.Map.Height, cfg.Metrics)
	if err != nil {
		fatal("invalid map size", err)
	}

	resumed := db.HasGame()
	var seed int64
	if !resumed {
		seed = world.Generate(g, cfg.GenConfig())
		for t, n := range world.TerrainCounts(g) {
			slog.Info("terrain", "type", world.TerrainName(t), "cells", humanize.Comma(int64(n)))
		}
	}

	sim, err := engine.NewSimulation(cfg, g, catalog)
	if err != nil {
		fatal("failed to create simulation", err)
	}

	if resumed {
		slog.Info("found saved match, loading...")
		if err := db.LoadGame(sim); err != nil {
			fatal("failed to load match", err)
		}
	} else {
		slog.Info("no saved match found, deploying armies...", "seed", seed)
		deploy(sim, seed)
		if err := db.SaveMeta("seed", strconv.FormatInt(seed, 10)); err != nil {
			slog.Error("saving seed failed", "error", err)
		}
		if err := db.SaveGame(sim, sim.Events(0)); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	slog.Info("match ready",
		"match", sim.ID,
		"cells", humanize.Comma(int64(g.CellCount())),
		"units", len(sim.Snapshot().Units),
	)

	// ── Engine ───────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewEngine(cfg.TickInterval)
	saver := &autosaver{db: db, sim: sim, every: max(uint64(saveInterval/cfg.TickInterval), 1)}
	eng.OnTick = func(tick uint64, now time.Time, dt time.Duration) {
		sim.Tick(now, dt)
		saver.tick(tick)
	}

	hub := api.NewHub(sim)
	go hub.Run(ctx)

	// ── HTTP API ─────────────────────────────────────────────────────
	adminKey := os.Getenv("HEXTURN_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HEXTURN_ADMIN_KEY not set, command endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("\nhexturn match %s: %d units on a %dx%d map.\n",
		sim.ID, len(sim.Snapshot().Units), g.CellCountX, g.CellCountZ)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Running... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	saver.save()
	fmt.Println("Match stopped. State saved.")
}

// setupLogging installs a text handler on terminals and a JSON handler
// otherwise. HEXTURN_LOG_LEVEL=debug enables debug output.
func setupLogging() {
	level := slog.LevelInfo
	if os.Getenv("HEXTURN_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadCatalog(path string) (*units.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err == nil {
		slog.Debug("reading unit catalog", "size", humanize.Bytes(uint64(info.Size())))
	}
	return units.LoadCatalog(f)
}

// deploy spawns a starting army for each team, cycling through the catalog.
func deploy(sim *engine.Simulation, seed int64) {
	types := sim.UnitTypes()
	if len(types) == 0 {
		return
	}
	placed := world.PlaceDeployments(sim.Grid(), deployTeams, deployPerTeam, 2, seed)
	count := make(map[uint8]int)
	for _, d := range placed {
		name := types[count[d.Team]%len(types)]
		count[d.Team]++
		if _, err := sim.Spawn(name, d.Coord, d.Team); err != nil {
			slog.Warn("deployment skipped", "coord", d.Coord, "team", d.Team, "error", err)
		}
	}
}

// autosaver persists the match periodically. It runs on the tick goroutine.
type autosaver struct {
	db        *persistence.DB
	sim       *engine.Simulation
	every     uint64
	savedTick uint64
}

func (a *autosaver) tick(tick uint64) {
	if tick%a.every == 0 {
		a.save()
	}
}

// save writes the match along with the events recorded since the last save.
func (a *autosaver) save() {
	var fresh []engine.Event
	for _, e := range a.sim.Events(0) {
		if e.Tick > a.savedTick {
			fresh = append(fresh, e)
		}
	}
	if err := a.db.SaveGame(a.sim, fresh); err != nil {
		slog.Error("save failed", "error", err)
		return
	}
	a.savedTick = a.sim.CurrentTick()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
