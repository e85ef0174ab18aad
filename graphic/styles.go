package graphic

import "github.com/nsf/termbox-go"

// Styles are the termbox attributes bars are drawn with.
type Styles struct {
	Foreground termbox.Attribute
	Background termbox.Attribute
	CenterLine termbox.Attribute
}

// DefaultStyles returns the default colors: terminal default bars on the
// default background with a magenta base line.
func DefaultStyles() Styles {
	return Styles{
		Foreground: termbox.ColorDefault,
		Background: termbox.ColorDefault,
		CenterLine: termbox.ColorMagenta,
	}
}

// AsUInt16s returns the styles as foreground, background and center line
// attributes, for flags.
func (s Styles) AsUInt16s() (uint16, uint16, uint16) {
	return uint16(s.Foreground), uint16(s.Background), uint16(s.CenterLine)
}

// StylesFromUInt16 builds Styles from raw termbox attributes.
func StylesFromUInt16(fg, bg, center uint16) Styles {
	return Styles{
		Foreground: termbox.Attribute(fg),
		Background: termbox.Attribute(bg),
		CenterLine: termbox.Attribute(center),
	}
}
