// internal/state/game_state.go
package state

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"go-power-towers/internal/app"
	"go-power-towers/internal/render"
	"go-power-towers/internal/types"
)

// mapRefreshInterval is how often the pre-rendered map is redrawn so
// harvested and regrown trees show up.
const mapRefreshInterval = 1.0

var buildKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9}

// GameState: состояние игры: сеть работает, ввод управляет постройками.
type GameState struct {
	sm       *StateMachine
	game     *app.Game
	ctrl     *Controller
	renderer *render.NetworkRenderer
	palette  render.Palette
	offsetX  float64
	offsetY  float64

	sinceRefresh float64
}

func NewGameState(sm *StateMachine, g *app.Game, offsetX, offsetY float64) *GameState {
	return &GameState{
		sm:      sm,
		game:    g,
		ctrl:    NewController(g),
		palette: render.DefaultPalette(),
		offsetX: offsetX,
		offsetY: offsetY,
	}
}

// GetGame returns the running session.
func (g *GameState) GetGame() *app.Game {
	return g.game
}

func (g *GameState) Enter() {
	if g.renderer == nil {
		g.renderer = render.NewNetworkRenderer(g.game.Grid, g.game.Library, g.palette, g.offsetX, g.offsetY)
	}
}

func (g *GameState) Update(deltaTime float64) {
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) || inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.game.HandlePauseClick()
		g.sm.SetState(NewPauseState(g.sm, g))
		return
	}
	g.handleKeys()
	g.handleMouse()

	g.game.Update(deltaTime)

	g.sinceRefresh += deltaTime
	if g.sinceRefresh >= mapRefreshInterval && g.renderer != nil {
		g.renderer.RenderMapImage()
		g.sinceRefresh = 0
	}
}

func (g *GameState) handleKeys() {
	for i, key := range buildKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.ctrl.SelectBuilding(i)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.ctrl.CycleTower()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if err := g.ctrl.StartConnection(); err != nil {
			g.game.Buildings.CancelConnection()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyU):
		g.ctrl.UpgradeSelected()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.ctrl.AdjustDraw(0.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.ctrl.AdjustDraw(-0.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.game.HandleSpeedClick()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.ctrl.Cancel()
	}
}

func (g *GameState) handleMouse() {
	if g.renderer == nil {
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if x, y, ok := g.renderer.ScreenToGrid(ebiten.CursorPosition()); ok {
			g.ctrl.LeftClick(x, y)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if x, y, ok := g.renderer.ScreenToGrid(ebiten.CursorPosition()); ok {
			g.ctrl.RightClick(x, y)
		}
	}
}

func (g *GameState) overlay() render.Overlay {
	s := g.game.State()
	o := render.Overlay{
		Selected:   g.ctrl.Selected(),
		Connecting: g.ctrl.Connecting(),
		Targets:    g.ctrl.Targets(),
		Toast:      g.game.LastToast(),
		Paused:     g.game.IsPaused(),
		HUD: []string{
			fmt.Sprintf("t=%.1fs tick %d  x%.0f  gold %d", s.SimTime, s.Tick, g.game.SpeedMultiplier, g.game.Ledger.Gold()),
			fmt.Sprintf("gen %.2f  stored %.0f/%.0f  loss %.3f  consumed %.2f",
				s.TotalGeneration, s.TotalStored, s.TotalCapacity, s.Stats.Loss, s.Stats.Consumed),
			fmt.Sprintf("build: %s  [1-9] type  [T] tower  [C] link  [U] upgrade  [+/-] draw", g.ctrl.PlacingType()),
		},
	}
	if d := g.ctrl.Describe(); d != "" {
		o.HUD = append(o.HUD, d)
	}
	if g.renderer != nil {
		cx, cy := ebiten.CursorPosition()
		o.HoverX, o.HoverY, o.Hovering = g.renderer.ScreenToGrid(cx, cy)
	}
	return o
}

func (g *GameState) towerViews() map[types.EntityID]render.TowerView {
	views := make(map[types.EntityID]render.TowerView, len(g.game.ECS.Towers))
	for id, t := range g.game.ECS.Towers {
		v := render.TowerView{}
		if def, ok := g.game.Library.Tower(t.DefID); ok {
			v.Color = def.Visuals.Color
			if def.Name != "" {
				v.Label = def.Name[:1]
			}
		}
		views[id] = v
	}
	return views
}

func (g *GameState) Draw(screen *ebiten.Image) {
	if g.renderer == nil {
		return
	}
	g.renderer.Draw(screen, g.game.State(), g.towerViews(), g.overlay())
}

func (g *GameState) Exit() {
	// Ничего не делаем при выходе
}
