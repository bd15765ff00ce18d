package colors

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color is a folder color token.
type Color string

const (
	Default Color = "default"
	Primary Color = "primary"
	Success Color = "success"
	Info    Color = "info"
	Warning Color = "warning"
	Danger  Color = "danger"
	Purple  Color = "purple"
	Pink    Color = "pink"
	Orange  Color = "orange"
	Teal    Color = "teal"
)

// palette lists the tokens in menu order with their display hex values.
var palette = []struct {
	color Color
	hex   string
}{
	{Default, "#6c757d"},
	{Primary, "#0d6efd"},
	{Success, "#198754"},
	{Info, "#0dcaf0"},
	{Warning, "#ffc107"},
	{Danger, "#dc3545"},
	{Purple, "#6f42c1"},
	{Pink, "#d63384"},
	{Orange, "#fd7e14"},
	{Teal, "#20c997"},
}

var titleCaser = cases.Title(language.English)

// All returns every token in menu order.
func All() []Color {
	out := make([]Color, 0, len(palette))
	for _, entry := range palette {
		out = append(out, entry.color)
	}
	return out
}

// Parse validates a token. Matching ignores case and surrounding whitespace.
func Parse(value string) (Color, error) {
	candidate := Color(strings.ToLower(strings.TrimSpace(value)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown color %q (valid: %s)", value, strings.Join(tokenNames(), ", "))
}

// Valid reports whether c is one of the known tokens.
func (c Color) Valid() bool {
	for _, entry := range palette {
		if entry.color == c {
			return true
		}
	}
	return false
}

// Label returns the menu label, e.g. "Purple".
func (c Color) Label() string {
	return titleCaser.String(string(c))
}

// Hex returns the display color, falling back to the default gray.
func (c Color) Hex() string {
	for _, entry := range palette {
		if entry.color == c {
			return entry.hex
		}
	}
	return palette[0].hex
}

func (c Color) String() string { return string(c) }

func tokenNames() []string {
	names := make([]string, 0, len(palette))
	for _, entry := range palette {
		names = append(names, string(entry.color))
	}
	return names
}
