// internal/app/game.go
package app

import (
	"fmt"
	"log/slog"
	"math"

	"go-power-towers/internal/building"
	"go-power-towers/internal/config"
	"go-power-towers/internal/defs"
	"go-power-towers/internal/economy"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/entity"
	"go-power-towers/internal/event"
	"go-power-towers/internal/telemetry"
	"go-power-towers/internal/types"
	"go-power-towers/internal/utils"
	"go-power-towers/pkg/gridmap"
)

// Options are the optional collaborators of NewGame.
// A nil Library loads the embedded definitions, a nil Output disables CSV
// output and a zero Seed keeps the scenario seed.
type Options struct {
	Library *defs.Library
	Output  *telemetry.OutputManager
	Logger  *slog.Logger
	Seed    int64
}

// Game holds one simulation session: map, economy, network, buildings and
// towers.
type Game struct {
	Config          *config.Config
	Scenario        *Scenario
	Grid            *gridmap.GridMap
	ECS             *entity.ECS
	Network         *energy.Network
	Buildings       *building.Manager
	Ledger          *economy.Ledger
	Library         *defs.Library
	EventDispatcher *event.Dispatcher
	Rng             *utils.PRNGService
	Telemetry       *telemetry.Collector
	SpeedMultiplier float64

	names     map[string]types.EntityID
	gameTime  float64
	isPaused  bool
	speedStep int
	lastToast event.ToastMessage
	logger    *slog.Logger
}

// NewGame wires a session from cfg and builds the scenario on it.
func NewGame(cfg *config.Config, sc *Scenario, opts Options) (*Game, error) {
	if cfg == nil || sc == nil {
		return nil, fmt.Errorf("new game: config and scenario are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lib := opts.Library
	if lib == nil {
		var err error
		if lib, err = defs.LoadDefaults(); err != nil {
			return nil, err
		}
	}
	seed := sc.Map.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	rng := utils.NewPRNGService(seed)
	grid, err := sc.Map.BuildMap(cfg.Viewer.CellSize, rng)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	dispatcher := event.NewDispatcher()
	ecs := entity.NewECS()
	rules := Rules(cfg)
	network := energy.NewNetwork(energy.Options{
		TickRate:   cfg.Network.TickRate,
		Passes:     cfg.Network.Passes,
		FlowOrder:  energy.FlowOrder(cfg.Network.FlowOrder),
		Rules:      &rules,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	gold := sc.Gold
	if gold <= 0 {
		gold = int(cfg.Economy.StartingGold)
	}
	ledger := economy.NewLedger(gold, dispatcher)

	g := &Game{
		Config:          cfg,
		Scenario:        sc,
		Grid:            grid,
		ECS:             ecs,
		Network:         network,
		Ledger:          ledger,
		Library:         lib,
		EventDispatcher: dispatcher,
		Rng:             rng,
		SpeedMultiplier: 1,
		names:           make(map[string]types.EntityID),
		logger:          logger.With("component", "app"),
	}
	g.Buildings = building.NewManager(building.Deps{
		Network:    network,
		Library:    lib,
		ECS:        ecs,
		Grid:       grid,
		Economy:    ledger,
		Random:     rng,
		Dispatcher: dispatcher,
		Logger:     logger,
	}, BuildingOptions(cfg))

	listener := &GameEventListener{game: g}
	dispatcher.Subscribe(event.Toast, listener)
	dispatcher.Subscribe(event.GoldChanged, listener)
	dispatcher.Subscribe(event.BuildingUpgraded, listener)

	g.Telemetry = telemetry.NewCollector(cfg.Telemetry.SampleEvery, opts.Output, logger)
	g.Telemetry.Attach(dispatcher)
	if err := opts.Output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	if err := g.applyScenario(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	g.logger.Info("game ready",
		"scenario", sc.Name,
		"seed", rng.Seed(),
		"nodes", network.NodeCount(),
		"connections", len(network.Connections()),
		"gold", ledger.Gold(),
	)
	return g, nil
}

// applyScenario places the scenario's buildings and towers, then links and
// upgrades them by name.
func (g *Game) applyScenario() error {
	sc := g.Scenario
	for _, p := range sc.Buildings {
		b, err := g.Buildings.Place(p.Type, p.X, p.Y)
		if err != nil {
			return fmt.Errorf("building %q: %w", p.Name, err)
		}
		g.name(p.Name, b.ID)
	}
	for _, p := range sc.Towers {
		id, err := g.Buildings.PlaceTower(p.Type, p.X, p.Y)
		if err != nil {
			return fmt.Errorf("tower %q: %w", p.Name, err)
		}
		if p.Draw > 0 {
			g.Buildings.SetPowerDraw(id, p.Draw)
		}
		g.name(p.Name, id)
	}
	for _, l := range sc.Links {
		from, to := g.names[l.From], g.names[l.To]
		if err := g.Network.CanConnect(from, to); err != nil {
			return fmt.Errorf("link %s -> %s: %w", l.From, l.To, err)
		}
		g.Buildings.Connect(from, to)
	}
	for _, u := range sc.Upgrades {
		if _, err := g.Buildings.Upgrade(g.names[u.Target], u.Type); err != nil {
			return fmt.Errorf("upgrade %s: %w", u.Target, err)
		}
	}
	return nil
}

func (g *Game) name(name string, id types.EntityID) {
	if name != "" {
		g.names[name] = id
	}
}

// Entity resolves a scenario name.
func (g *Game) Entity(name string) (types.EntityID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Update advances the session by one frame and returns the number of network
// ticks run. Large frame gaps are clamped before the speed multiplier.
func (g *Game) Update(deltaTime float64) int {
	if g.isPaused {
		return 0
	}
	if limit := g.Config.Network.MaxDeltaTime; limit > 0 && deltaTime > limit {
		deltaTime = limit
	}
	dt := deltaTime * g.SpeedMultiplier
	g.gameTime += dt

	g.Grid.Update(dt)
	return g.Network.Update(dt)
}

// Step runs exactly one network tick.
func (g *Game) Step() {
	dt := g.Network.TickInterval()
	g.gameTime += dt
	g.Grid.Update(dt)
	g.Network.ProcessTick(dt)
}

// RunFor runs whole ticks covering seconds of simulated time.
func (g *Game) RunFor(seconds float64) int {
	ticks := int(math.Round(seconds / g.Network.TickInterval()))
	for i := 0; i < ticks; i++ {
		g.Step()
	}
	return ticks
}

func (g *Game) HandlePauseClick() {
	g.isPaused = !g.isPaused
}

// IsPaused возвращает текущее состояние паузы.
func (g *Game) IsPaused() bool {
	return g.isPaused
}

// HandleSpeedClick cycles 1x, 2x, 4x.
func (g *Game) HandleSpeedClick() {
	g.speedStep = (g.speedStep + 1) % 3
	g.SpeedMultiplier = math.Pow(2, float64(g.speedStep))
}

func (g *Game) GetGameTime() float64 {
	return g.gameTime
}

// LastToast is the most recent user-facing message.
func (g *Game) LastToast() event.ToastMessage {
	return g.lastToast
}

// State returns the snapshot of the last tick.
func (g *Game) State() energy.NetworkState {
	return g.Network.State()
}

// GameEventListener обрабатывает события, важные для основного игрового цикла.
type GameEventListener struct {
	game *Game
}

// OnEvent реализует интерфейс event.Listener.
func (l *GameEventListener) OnEvent(e event.Event) {
	switch e.Type {
	case event.Toast:
		if msg, ok := e.Data.(event.ToastMessage); ok {
			l.game.lastToast = msg
			l.game.logger.Info("toast", "message", msg.Message, "kind", msg.Kind)
		}
	case event.GoldChanged:
		l.game.logger.Debug("gold changed", "gold", e.Data)
	case event.BuildingUpgraded:
		if u, ok := e.Data.(building.Upgraded); ok {
			l.game.logger.Debug("upgrade bought", "id", u.ID, "type", u.Type, "cost", u.Cost)
		}
	}
}
