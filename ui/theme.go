// Package ui draws the raylib heads-up display for the desktop field
// backend and the parameter preview tool.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Theme holds UI styling constants.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Title       rl.Color
	Text        rl.Color
	Warn        rl.Color
	Hot         rl.Color
	Padding     int32
	LineHeight  int32
	FontSize    int32
	TitleSize   int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:     rl.Color{R: 17, G: 24, B: 39, A: 220},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		Title:       rl.White,
		Text:        rl.LightGray,
		Warn:        rl.Orange,
		Hot:         rl.Red,
		Padding:     10,
		LineHeight:  16,
		FontSize:    12,
		TitleSize:   16,
	}
}

// Renderer handles UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawLines draws a titled block of lines inside a panel sized to fit.
func (r *Renderer) DrawLines(x, y, width int32, title string, lines []Line) {
	t := r.Theme
	height := t.Padding*2 + t.LineHeight + int32(len(lines))*t.LineHeight
	r.DrawPanel(x, y, width, height)

	y += t.Padding
	rl.DrawText(title, x+t.Padding, y, t.TitleSize, t.Title)
	y += t.LineHeight + 2
	for _, l := range lines {
		rl.DrawText(l.Text, x+t.Padding, y, t.FontSize, r.levelColor(l.Level))
		y += t.LineHeight
	}
}

func (r *Renderer) levelColor(l Level) rl.Color {
	switch l {
	case LevelWarn:
		return r.Theme.Warn
	case LevelHot:
		return r.Theme.Hot
	}
	return r.Theme.Text
}
