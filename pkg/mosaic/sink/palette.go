package sink

// Tints are the shard fill colors indexed by tint.
var Tints = []string{
	"#e4572e", // ember
	"#f3a712", // amber
	"#f0e100", // citrine
	"#4cb944", // jade
	"#17bebb", // aqua
	"#2e86ab", // cobalt
	"#6c4ab6", // amethyst
	"#d741a7", // rose
	"#f4f4f8", // clear
}

const (
	colorBackground = "#14151a"
	colorViewport   = "#1d1f27"
	colorEmpty      = "#2b2e3a"
	colorBorder     = "#0b0c10"
	colorGlow       = "#fff8d6"
	colorTarnished  = "#6b6b6b"
	colorHighlight  = "#ffffff"
)

// TintColor returns the hex color for a tint, wrapping out-of-range values.
func TintColor(tint int) string {
	n := len(Tints)
	return Tints[((tint%n)+n)%n]
}
