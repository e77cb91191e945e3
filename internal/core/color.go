package core

// Color is the base colour tag the render layer reads for an entity.
// QBasic-style palette numbering.
type Color uint8

// Palette colours.
const (
	ColorBlack Color = iota
	ColorBlue
	ColorGreen
	ColorCyan
	ColorRed
	ColorPurple
	ColorOrange
	ColorGrey
	ColorGreyDark
	ColorBlueLight
	ColorGreenLight
	ColorCyanLight
	ColorRedLight
	ColorPurpleLight
	ColorYellow
	ColorWhite
	ColorBrown
)

var colorNames = [...]string{
	"black", "blue", "green", "cyan", "red", "purple", "orange", "grey",
	"grey-dark", "blue-light", "green-light", "cyan-light", "red-light",
	"purple-light", "yellow", "white", "brown",
}

// String returns the palette name of the colour.
func (c Color) String() string {
	if int(c) >= len(colorNames) {
		return "unknown"
	}
	return colorNames[c]
}
