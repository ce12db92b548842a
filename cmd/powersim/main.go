// cmd/powersim/main.go
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"go-power-towers/internal/app"
	"go-power-towers/internal/config"
	"go-power-towers/internal/defs"
	"go-power-towers/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenarioPath := flag.String("scenario", "", "Path to scenario YAML (empty = built-in scenario)")
	buildingsPath := flag.String("buildings", "", "Building definitions JSON (empty = embedded)")
	towersPath := flag.String("towers", "", "Tower definitions JSON (empty = embedded)")
	seconds := flag.Float64("seconds", 60, "Simulated seconds to run")
	outputDir := flag.String("out", "", "Base directory for run output; a run directory named by UUID is created inside")
	seed := flag.Int64("seed", 0, "Map/wind seed (0 = scenario seed)")
	dumpState := flag.Bool("dump-state", false, "Print the final network snapshot as JSON to stdout")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *scenarioPath, *buildingsPath, *towersPath, *outputDir, *seconds, *seed, *dumpState, logger); err != nil {
		logger.Error("powersim failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, scenarioPath, buildingsPath, towersPath, outputDir string, seconds float64, seed int64, dumpState bool, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sc, err := app.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	lib, err := defs.Load(buildingsPath, towersPath)
	if err != nil {
		return err
	}
	out, err := telemetry.NewRunOutput(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	g, err := app.NewGame(cfg, sc, app.Options{Library: lib, Output: out, Logger: logger, Seed: seed})
	if err != nil {
		return err
	}

	logger.Info("starting headless simulation",
		"scenario", sc.Name,
		"seconds", seconds,
		"tick_rate", cfg.Network.TickRate,
		"flow_order", cfg.Network.FlowOrder,
		"run", out.RunID(),
	)
	ticks := g.RunFor(seconds)

	powered := g.Network.PoweredNodes()
	logger.Info("simulation finished",
		"ticks", ticks,
		"totals", g.Telemetry.Totals(),
		"last", g.Telemetry.Last(),
		"reachable", len(powered),
		"islands", len(g.Network.Islands()),
		"gold", g.Ledger.Gold(),
		"output", out.Dir(),
	)
	if err := g.Telemetry.Err(); err != nil {
		return err
	}

	if dumpState {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(g.State())
	}
	return nil
}
