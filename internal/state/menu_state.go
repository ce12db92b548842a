// internal/state/menu_state.go
package state

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var menuLines = []string{
	"POWER TOWERS",
	"",
	"1-9    choose building",
	"T      choose / cycle tower",
	"LMB    select, build, or finish a link",
	"RMB    remove, or cancel a link",
	"C      link from selected",
	"U      buy cheapest upgrade",
	"+/-    tower power draw",
	"Tab    speed   Space pause   Esc cancel",
	"",
	"press Space to start",
}

// MenuState: заставка со списком управления.
type MenuState struct {
	sm   *StateMachine
	next *GameState
}

func NewMenuState(sm *StateMachine, next *GameState) *MenuState {
	return &MenuState{sm: sm, next: next}
}

func (m *MenuState) Enter() {
	// Ничего не делаем при входе
}

func (m *MenuState) Update(deltaTime float64) {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		m.sm.SetState(m.next)
	}
}

func (m *MenuState) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0, 0, 0, 255}) // Чёрный экран
	for i, line := range menuLines {
		text.Draw(screen, line, basicfont.Face7x13, 40, 60+i*18, color.White)
	}
}

func (m *MenuState) Exit() {
	// Ничего не делаем при выходе
}
