package ui

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme holds the colors and styles used by the dashboard.
type Theme struct {
	Background tcell.Color
	Border     tcell.Color
	Title      tcell.Color
	Text       tcell.Color
	Muted      tcell.Color
	Trajectory tcell.Color
	Warning    tcell.Color

	// MeterLow and MeterHigh are the endpoints of the fill-level ramp.
	MeterLow  colorful.Color
	MeterHigh colorful.Color

	// StateColors maps process states to badge colors.
	StateColors map[string]tcell.Color
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	low, _ := colorful.Hex("#d64545")
	high, _ := colorful.Hex("#3fbf6f")

	return Theme{
		Background: tcell.NewRGBColor(18, 18, 24),
		Border:     tcell.NewRGBColor(90, 95, 110),
		Title:      tcell.NewRGBColor(220, 220, 230),
		Text:       tcell.NewRGBColor(200, 200, 210),
		Muted:      tcell.NewRGBColor(130, 130, 145),
		Trajectory: tcell.NewRGBColor(95, 175, 255),
		Warning:    tcell.NewRGBColor(230, 180, 60),
		MeterLow:   low,
		MeterHigh:  high,
		StateColors: map[string]tcell.Color{
			"idle":       tcell.NewRGBColor(130, 130, 145),
			"dispensing": tcell.NewRGBColor(63, 191, 111),
			"refilling":  tcell.NewRGBColor(230, 180, 60),
			"error":      tcell.NewRGBColor(214, 69, 69),
		},
	}
}

// LightTheme returns a light theme for bright shop-floor displays.
func LightTheme() Theme {
	t := DarkTheme()
	t.Background = tcell.NewRGBColor(245, 245, 240)
	t.Border = tcell.NewRGBColor(120, 120, 130)
	t.Title = tcell.NewRGBColor(30, 30, 40)
	t.Text = tcell.NewRGBColor(50, 50, 60)
	t.Muted = tcell.NewRGBColor(120, 120, 130)
	return t
}

// ThemeByName returns the theme for a configured name, defaulting to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// MeterColor returns the fill bar color for a fill percentage, blending
// from MeterLow at 0 to MeterHigh at 100 in HCL space.
func (t Theme) MeterColor(pct float64) tcell.Color {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	c := t.MeterLow.BlendHcl(t.MeterHigh, pct/100).Clamped()
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// StateColor returns the badge color for a process state.
func (t Theme) StateColor(state string) tcell.Color {
	if c, ok := t.StateColors[state]; ok {
		return c
	}
	return t.Muted
}
