package notes

// DefaultColor is used for new drafts and for creates without a color.
const DefaultColor = "bg-white"

// Palette lists the note colors the client knows how to render, in picker
// order. Storage does not validate membership.
var Palette = []string{
	"bg-white",
	"bg-red-200",
	"bg-orange-200",
	"bg-amber-200",
	"bg-lime-200",
	"bg-green-200",
	"bg-emerald-200",
	"bg-cyan-200",
	"bg-sky-200",
	"bg-indigo-200",
	"bg-purple-200",
	"bg-pink-200",
}

// IsPaletteColor reports whether c is one of the known palette colors.
func IsPaletteColor(c string) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// ColorName strips the tailwind-style prefix and shade, e.g.
// "bg-amber-200" becomes "amber". Unknown values are returned unchanged.
func ColorName(c string) string {
	if !IsPaletteColor(c) {
		return c
	}
	name := c[len("bg-"):]
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '-' {
			return name[:i]
		}
	}
	return name
}

// ResolveColor accepts either a full palette value or its short name and
// returns the palette value.
func ResolveColor(s string) (string, bool) {
	if IsPaletteColor(s) {
		return s, true
	}
	for _, p := range Palette {
		if ColorName(p) == s {
			return p, true
		}
	}
	return "", false
}
