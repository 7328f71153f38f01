package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gluepanel/internal/dashboard"
)

const (
	cardWidth  = 22
	cardHeight = 6
)

// render repaints the whole dashboard.
func (u *UI) render() {
	u.mu.Lock()
	defer u.mu.Unlock()

	width, height := u.screen.Size()
	bg := tcell.StyleDefault.Background(u.theme.Background)
	u.screen.Fill(' ', bg)

	u.drawCells(width)
	u.drawTrajectory(0, cardHeight+1, width, height-cardHeight-3)
	u.drawStatusBar(width, height)

	u.screen.Show()
}

// drawCells paints one meter card per cell across the top row.
func (u *UI) drawCells(width int) {
	for cell := 1; cell <= u.cellCount; cell++ {
		x := (cell - 1) * (cardWidth + 1)
		if x+cardWidth > width {
			break
		}
		u.drawCellCard(x, 0, u.cells[cell], cell == u.selected)
	}
}

// drawCellCard paints one cell's title, glue type, weight, and fill meter.
// The selected cell gets a highlighted border.
func (u *UI) drawCellCard(x, y int, rec dashboard.CellStateRecord, selected bool) {
	borderColor := u.theme.Border
	if selected {
		borderColor = u.theme.Title
	}
	borderStyle := tcell.StyleDefault.Foreground(borderColor).Background(u.theme.Background)
	titleStyle := tcell.StyleDefault.Foreground(u.theme.Title).Background(u.theme.Background).Bold(true)
	textStyle := tcell.StyleDefault.Foreground(u.theme.Text).Background(u.theme.Background)
	mutedStyle := tcell.StyleDefault.Foreground(u.theme.Muted).Background(u.theme.Background)

	u.drawBox(x, y, cardWidth, cardHeight, borderStyle)
	u.drawText(x+2, y, fmt.Sprintf(" Cell %d ", rec.CellID), titleStyle)

	stateStyle := tcell.StyleDefault.Foreground(u.theme.StateColor(rec.State)).Background(u.theme.Background)
	state := rec.State
	if state == "" {
		state = "unknown"
	}
	u.drawText(x+2, y+1, state, stateStyle)

	glue := rec.GlueType
	if glue == "" {
		glue = "-"
	}
	u.drawText(x+2, y+2, clip(glue, cardWidth-4), mutedStyle)

	u.drawText(x+2, y+3, fmt.Sprintf("%7.1f g", rec.WeightGrams), textStyle)

	u.drawMeter(x+2, y+4, cardWidth-4, rec.FillPercent())
}

// drawMeter paints a horizontal fill bar colored by fill level.
func (u *UI) drawMeter(x, y, width int, pct float64) {
	fillColor := u.theme.MeterColor(pct)
	if pct < u.lowThreshold {
		fillColor = u.theme.Warning
	}
	fillStyle := tcell.StyleDefault.Foreground(fillColor).Background(u.theme.Background)
	emptyStyle := tcell.StyleDefault.Foreground(u.theme.Border).Background(u.theme.Background)

	filled := int(pct / 100 * float64(width))
	for i := 0; i < width; i++ {
		ch := '░'
		style := emptyStyle
		if i < filled {
			ch = '█'
			style = fillStyle
		}
		u.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawTrajectory paints the trail inside a bordered canvas, scaling the
// point bounds to the canvas size.
func (u *UI) drawTrajectory(x, y, width, height int) {
	if width < 4 || height < 3 {
		return
	}

	borderStyle := tcell.StyleDefault.Foreground(u.theme.Border).Background(u.theme.Background)
	titleStyle := tcell.StyleDefault.Foreground(u.theme.Title).Background(u.theme.Background).Bold(true)
	pointStyle := tcell.StyleDefault.Foreground(u.theme.Trajectory).Background(u.theme.Background)
	mutedStyle := tcell.StyleDefault.Foreground(u.theme.Muted).Background(u.theme.Background)

	u.drawBox(x, y, width, height, borderStyle)
	title := " Trajectory "
	if !u.drawing {
		title = " Trajectory (off) "
	}
	u.drawText(x+2, y, title, titleStyle)

	if u.backdrop != nil {
		label := fmt.Sprintf("[%s %dx%d]", u.backdrop.Format, u.backdrop.Width, u.backdrop.Height)
		u.drawText(x+width-len(label)-2, y, label, mutedStyle)
	}

	minX, minY, maxX, maxY, ok := u.trail.Bounds()
	if !ok {
		return
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	innerW := float64(width - 2)
	innerH := float64(height - 2)
	for _, seg := range u.trail.Segments() {
		for _, p := range seg {
			px := x + 1 + int((p.X-minX)/spanX*(innerW-1))
			py := y + 1 + int((p.Y-minY)/spanY*(innerH-1))
			u.screen.SetContent(px, py, '•', nil, pointStyle)
		}
	}
}

// drawStatusBar paints the app state, mode, and key hints on the bottom row.
func (u *UI) drawStatusBar(width, height int) {
	y := height - 1
	barStyle := tcell.StyleDefault.Foreground(u.theme.Title).Background(u.theme.Border)
	for x := 0; x < width; x++ {
		u.screen.SetContent(x, y, ' ', nil, barStyle)
	}

	status := fmt.Sprintf(" %s ", u.appState)
	u.drawText(0, y, status, barStyle.Bold(true))

	hints := ""
	if u.controls.StartEnabled {
		hints += "s:start "
	}
	if u.controls.StopEnabled {
		hints += "x:stop "
	}
	if u.controls.PauseEnabled {
		hints += "p:pause "
	}
	if u.controls.CalibrateEnabled {
		hints += "c:calibrate "
	}
	if u.controls.CleanEnabled {
		hints += "n:clean "
	}
	if u.controls.ResetEnabled {
		hints += "r:reset "
	}
	if u.controls.ModeLabel != "" {
		hints += fmt.Sprintf("m:mode(%s) ", u.controls.ModeLabel)
	}
	hints += "g:glue q:quit"
	u.drawText(width-len(hints)-1, y, hints, barStyle)
}

// drawBox paints a single-line border box.
func (u *UI) drawBox(x, y, width, height int, style tcell.Style) {
	for i := 1; i < width-1; i++ {
		u.screen.SetContent(x+i, y, '─', nil, style)
		u.screen.SetContent(x+i, y+height-1, '─', nil, style)
	}
	for i := 1; i < height-1; i++ {
		u.screen.SetContent(x, y+i, '│', nil, style)
		u.screen.SetContent(x+width-1, y+i, '│', nil, style)
	}
	u.screen.SetContent(x, y, '┌', nil, style)
	u.screen.SetContent(x+width-1, y, '┐', nil, style)
	u.screen.SetContent(x, y+height-1, '└', nil, style)
	u.screen.SetContent(x+width-1, y+height-1, '┘', nil, style)
}

// drawText paints a string left to right.
func (u *UI) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}

// clip truncates a string to width runes.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
