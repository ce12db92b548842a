// cmd/viewer/main.go
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"go-power-towers/internal/app"
	"go-power-towers/internal/config"
	"go-power-towers/internal/state"
)

const startFromGame = false // true: начинать с игры, false: с экрана управления

type AppGame struct {
	stateMachine   *state.StateMachine
	lastUpdateTime time.Time
	maxDeltaTime   float64
	width, height  int
}

func (a *AppGame) Update() error {
	now := time.Now()
	deltaTime := now.Sub(a.lastUpdateTime).Seconds()
	if deltaTime > a.maxDeltaTime {
		deltaTime = a.maxDeltaTime
	}
	a.lastUpdateTime = now
	a.stateMachine.Update(deltaTime)
	return nil
}

func (a *AppGame) Draw(screen *ebiten.Image) {
	a.stateMachine.Draw(screen)
}

func (a *AppGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenarioPath := flag.String("scenario", "", "Path to scenario YAML (empty = built-in scenario)")
	seed := flag.Int64("seed", 0, "Map/wind seed (0 = scenario seed)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	sc, err := app.LoadScenario(*scenarioPath)
	if err != nil {
		logger.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}
	g, err := app.NewGame(cfg, sc, app.Options{Logger: logger, Seed: *seed})
	if err != nil {
		logger.Error("failed to start game", "error", err)
		os.Exit(1)
	}

	// Карта по центру окна
	mapW := float64(sc.Map.Width) * cfg.Viewer.CellSize
	mapH := float64(sc.Map.Height) * cfg.Viewer.CellSize
	offsetX := (float64(cfg.Viewer.Width) - mapW) / 2
	offsetY := (float64(cfg.Viewer.Height)-mapH)/2 + 40

	sm := state.NewStateMachine() // Создаём машину состояний
	gs := state.NewGameState(sm, g, offsetX, offsetY)
	if startFromGame {
		sm.SetState(gs)
	} else {
		sm.SetState(state.NewMenuState(sm, gs))
	}
	appGame := &AppGame{
		stateMachine:   sm,
		lastUpdateTime: time.Now(),
		maxDeltaTime:   cfg.Viewer.MaxDeltaTime,
		width:          cfg.Viewer.Width,
		height:         cfg.Viewer.Height,
	}
	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("Power Towers: " + sc.Name)
	if err := ebiten.RunGame(appGame); err != nil {
		logger.Error("viewer exited", "error", err)
		os.Exit(1)
	}
}
