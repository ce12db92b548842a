package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"go-power-towers/internal/defs"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
	"go-power-towers/pkg/gridmap"
)

// Overlay is the interaction state drawn on top of the network.
type Overlay struct {
	Selected   types.EntityID
	Connecting bool
	Targets    []types.EntityID // valid connection targets while connecting
	HoverX     int
	HoverY     int
	Hovering   bool
	HUD        []string
	Toast      event.ToastMessage
	Paused     bool
}

// NetworkRenderer draws the grid, power nodes, links and towers.
type NetworkRenderer struct {
	grid     *gridmap.GridMap
	lib      *defs.Library
	palette  Palette
	cellSize float64
	offsetX  float64
	offsetY  float64
	fontFace font.Face
	mapImage *ebiten.Image // Предрендеренная карта

	fillImg *ebiten.Image
	fillVs  []ebiten.Vertex
	fillIs  []uint16
}

// NewNetworkRenderer creates a renderer and pre-renders the map. The map is
// drawn with its top-left cell at (offsetX, offsetY).
func NewNetworkRenderer(grid *gridmap.GridMap, lib *defs.Library, palette Palette, offsetX, offsetY float64) *NetworkRenderer {
	fillImg := ebiten.NewImage(1, 1)
	fillImg.Fill(color.White)

	r := &NetworkRenderer{
		grid:     grid,
		lib:      lib,
		palette:  palette,
		cellSize: grid.CellSize,
		offsetX:  offsetX,
		offsetY:  offsetY,
		fontFace: basicfont.Face7x13,
		mapImage: ebiten.NewImage(int(float64(grid.Width)*grid.CellSize)+1, int(float64(grid.Height)*grid.CellSize)+1),
		fillImg:  fillImg,
		fillVs:   make([]ebiten.Vertex, 0, 64),
		fillIs:   make([]uint16, 0, 96),
	}
	r.RenderMapImage()
	return r
}

// RenderMapImage redraws the static background. Call it after terrain
// changes, e.g. when trees are harvested or regrow.
func (r *NetworkRenderer) RenderMapImage() {
	r.mapImage.Clear()
	size := float32(r.cellSize)
	for y := 0; y < r.grid.Height; y++ {
		for x := 0; x < r.grid.Width; x++ {
			t, _ := r.grid.Tile(x, y)
			px, py := float32(x)*size, float32(y)*size
			vector.DrawFilledRect(r.mapImage, px, py, size, size, r.palette.TileColor(t), false)
			vector.StrokeRect(r.mapImage, px, py, size, size, 1, r.palette.GridLine, false)
			if t.Trees {
				vector.DrawFilledCircle(r.mapImage, px+size/2, py+size/2, size*0.25, r.palette.Tree, true)
			} else if t.Regrowing() {
				vector.DrawFilledCircle(r.mapImage, px+size/2, py+size/2, size*0.1, r.palette.Tree, true)
			}
		}
	}
}

// ScreenToGrid converts a cursor position to a cell.
func (r *NetworkRenderer) ScreenToGrid(sx, sy int) (int, int, bool) {
	x, y := r.grid.WorldToGrid(float64(sx)-r.offsetX, float64(sy)-r.offsetY)
	return x, y, r.grid.InBounds(x, y)
}

func (r *NetworkRenderer) toScreen(wx, wy float64) (float32, float32) {
	return float32(wx + r.offsetX), float32(wy + r.offsetY)
}

// Draw renders one frame from the last network snapshot.
func (r *NetworkRenderer) Draw(screen *ebiten.Image, s energy.NetworkState, towers map[types.EntityID]TowerView, o Overlay) {
	screen.Fill(r.palette.Background)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(r.offsetX, r.offsetY)
	screen.DrawImage(r.mapImage, op)

	if o.Hovering {
		size := float32(r.cellSize)
		px, py := r.toScreen(float64(o.HoverX)*r.cellSize, float64(o.HoverY)*r.cellSize)
		vector.StrokeRect(screen, px, py, size, size, 1, r.palette.Selection, false)
	}

	nodes := make(map[types.EntityID]energy.NodeState, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes[n.ID] = n
	}
	if sel, ok := nodes[o.Selected]; ok && sel.Range > 0 {
		cx, cy := r.toScreen(sel.WorldX, sel.WorldY)
		vector.StrokeCircle(screen, cx, cy, float32(sel.Range*r.cellSize), 1, r.palette.RangeOutline, true)
	}
	if o.Connecting {
		src := nodes[o.Selected]
		for _, id := range o.Targets {
			dst, ok := nodes[id]
			if !ok {
				continue
			}
			x0, y0 := r.toScreen(src.WorldX, src.WorldY)
			x1, y1 := r.toScreen(dst.WorldX, dst.WorldY)
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, r.palette.LinkPreview, true)
		}
	}

	for _, c := range s.Connections {
		r.drawConnection(screen, c)
	}
	for _, n := range s.Nodes {
		if n.NodeType == energy.CategoryConsumer {
			r.drawTower(screen, n, towers[n.ID])
		} else {
			r.drawNode(screen, n)
		}
		if n.ID == o.Selected {
			cx, cy := r.toScreen(n.WorldX, n.WorldY)
			vector.StrokeCircle(screen, cx, cy, float32(r.cellSize*0.55), r.palette.StrokeWidth, r.palette.Selection, true)
		}
	}

	r.drawHUD(screen, o)
}

func (r *NetworkRenderer) drawConnection(screen *ebiten.Image, c energy.ConnectionState) {
	x0, y0 := r.toScreen(c.FromX, c.FromY)
	x1, y1 := r.toScreen(c.ToX, c.ToY)
	clr := r.palette.LinkColor(c)
	width := LinkWidth(c.EnergyFlow, r.palette.StrokeWidth)
	vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)

	// Стрелка у получателя
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	tip := float64(r.cellSize) * 0.45
	ax := float64(x1) - math.Cos(angle)*tip
	ay := float64(y1) - math.Sin(angle)*tip
	for _, da := range []float64{-0.5, 0.5} {
		bx := ax - math.Cos(angle+da)*r.cellSize*0.25
		by := ay - math.Sin(angle+da)*r.cellSize*0.25
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), width, clr, true)
	}
}

func (r *NetworkRenderer) nodeColor(n energy.NodeState) color.RGBA {
	if r.lib != nil {
		if def, ok := r.lib.Building(n.Type); ok {
			return def.Visuals.Color
		}
	}
	return r.palette.LinkIdle
}

func (r *NetworkRenderer) nodeRadius(n energy.NodeState) float32 {
	factor := 0.4
	if r.lib != nil {
		if def, ok := r.lib.Building(n.Type); ok && def.Visuals.RadiusFactor > 0 {
			factor = def.Visuals.RadiusFactor
		}
	}
	return float32(r.cellSize * factor)
}

func (r *NetworkRenderer) drawNode(screen *ebiten.Image, n energy.NodeState) {
	cx, cy := r.toScreen(n.WorldX, n.WorldY)
	radius := r.nodeRadius(n)
	base := r.nodeColor(n)

	vector.DrawFilledCircle(screen, cx, cy, radius, DarkenColor(base), true)
	r.drawFillArc(screen, cx, cy, radius, n.FillPercent/100, base)
	vector.StrokeCircle(screen, cx, cy, radius, r.palette.StrokeWidth, r.palette.FillColor(n.FillPercent/100), true)

	label := NodeLabel(n)
	r.drawCentered(screen, label, cx, cy, r.palette.TextColorOn(base))
	if n.Level > 1 {
		r.drawCentered(screen, fmt.Sprintf("L%d", n.Level), cx, cy+radius+8, r.palette.TextLight)
	}
}

// drawFillArc fills a pie slice clockwise from 12 o'clock for ratio of the
// circle.
func (r *NetworkRenderer) drawFillArc(screen *ebiten.Image, cx, cy, radius float32, ratio float64, clr color.RGBA) {
	if ratio <= 0 {
		return
	}
	if ratio > 1 {
		ratio = 1
	}
	start := float32(-math.Pi / 2)
	end := start + float32(2*math.Pi*ratio)

	var path vector.Path
	path.MoveTo(cx, cy)
	path.Arc(cx, cy, radius, start, end, vector.Clockwise)
	path.Close()

	r.fillVs, r.fillIs = path.AppendVerticesAndIndicesForFilling(r.fillVs[:0], r.fillIs[:0])
	for i := range r.fillVs {
		r.fillVs[i].SrcX, r.fillVs[i].SrcY = 0, 0
		r.fillVs[i].ColorR = float32(clr.R) / 255
		r.fillVs[i].ColorG = float32(clr.G) / 255
		r.fillVs[i].ColorB = float32(clr.B) / 255
		r.fillVs[i].ColorA = float32(clr.A) / 255
	}
	screen.DrawTriangles(r.fillVs, r.fillIs, r.fillImg, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

func (r *NetworkRenderer) drawTower(screen *ebiten.Image, n energy.NodeState, tv TowerView) {
	cx, cy := r.toScreen(n.WorldX, n.WorldY)
	half := float32(r.cellSize * 0.35)
	body := r.palette.Tower
	if tv.Color.A > 0 {
		body = tv.Color
	}
	ring := r.palette.Unpowered
	if n.Powered {
		ring = r.palette.Powered
	}
	vector.DrawFilledRect(screen, cx-half, cy-half, half*2, half*2, body, true)
	vector.StrokeRect(screen, cx-half, cy-half, half*2, half*2, r.palette.StrokeWidth, ring, true)

	// Полоска уровня питания под башней
	bar := half * 2
	vector.DrawFilledRect(screen, cx-half, cy+half+2, bar, 3, r.palette.Unpowered, false)
	vector.DrawFilledRect(screen, cx-half, cy+half+2, bar*float32(math.Min(1, n.PowerLevel)), 3, r.palette.FillColor(n.PowerLevel), false)
	if tv.Label != "" {
		r.drawCentered(screen, tv.Label, cx, cy, r.palette.TextColorOn(body))
	}
}

func (r *NetworkRenderer) drawHUD(screen *ebiten.Image, o Overlay) {
	y := 16
	for _, line := range o.HUD {
		text.Draw(screen, line, r.fontFace, 8, y, r.palette.TextLight)
		y += 15
	}
	if o.Toast.Message != "" {
		clr := r.palette.Success
		if o.Toast.Kind == event.ToastError {
			clr = r.palette.Error
		}
		text.Draw(screen, o.Toast.Message, r.fontFace, 8, y+4, clr)
	}
	if o.Paused {
		b := screen.Bounds()
		vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), color.RGBA{A: 128}, false)
		r.drawCentered(screen, "PAUSED", float32(b.Dx())/2, float32(b.Dy())/2, r.palette.TextLight)
	}
}

func (r *NetworkRenderer) drawCentered(screen *ebiten.Image, label string, cx, cy float32, clr color.Color) {
	bounds := text.BoundString(r.fontFace, label)
	w := bounds.Max.X - bounds.Min.X
	h := bounds.Max.Y - bounds.Min.Y
	text.Draw(screen, label, r.fontFace, int(cx)-w/2, int(cy)+h/2, clr)
}

// TowerView is the tower data the renderer needs beyond the node snapshot.
type TowerView struct {
	Label string
	Color color.RGBA
}

// NodeLabel is the short glyph drawn inside a node.
func NodeLabel(n energy.NodeState) string {
	switch n.Kind {
	case energy.KindStable.String():
		return "G"
	case energy.KindBiomass.String():
		return "B"
	case energy.KindWind.String():
		return "W"
	case energy.KindSolar.String():
		return "S"
	case energy.KindHydro.String():
		return "H"
	case energy.KindStorage.String():
		return "+"
	case energy.KindTransfer.String():
		return "R"
	}
	return "?"
}

// LinkWidth grows with the energy moved over a link in the last tick.
func LinkWidth(flow float64, base float32) float32 {
	if flow <= 0 {
		return base * 0.5
	}
	return base + float32(math.Min(3, flow*2))
}
