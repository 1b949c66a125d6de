package grid

// Color is a Launchpad Programmer-mode velocity/color-code byte. Grounded on
// the original engine's Light enum (loop_grid_launchpad.rs): a closed set of
// named brightness/hue pairs rather than a full RGB palette.
type Color uint8

const (
	ColorOff       Color = 0
	ColorRedLow    Color = 77
	ColorRedMed    Color = 78
	ColorRed       Color = 79
	ColorGreenLow  Color = 92
	ColorOrangeLow Color = 93
	ColorLimeLow   Color = 109
	ColorYellowMed Color = 110
	ColorOrangeMed Color = 111
	ColorGreenMed  Color = 108
	ColorOrange    Color = 95
	ColorLime      Color = 126
	ColorGreen     Color = 124
	ColorYellow    Color = 127
)

// cellColor implements the pad-cell priority order from §4.F.6: an audible
// out value always wins, then selection, then sink activity, then the
// recording indicator.
func cellColor(outOn bool, selected, active, recording bool) Color {
	switch {
	case outOn:
		return ColorYellow
	case selected:
		return ColorGreen
	case active:
		return ColorGreenLow
	case recording:
		return ColorRedLow
	default:
		return ColorOff
	}
}

// undoRedoColor encodes which modifier buttons are held while undo/redo is
// pressed: select alone means the press resizes the loop; scale held, alone
// or with select, makes the press a no-op in the engine.
func undoRedoColor(selecting, selectingScale bool) Color {
	switch {
	case selecting && selectingScale:
		return ColorOrange
	case selecting:
		return ColorGreenLow
	case selectingScale:
		return ColorYellowMed
	default:
		return ColorRedLow
	}
}
