package theme

// Colors and ttk styles shared by the monitoring windows. InitStyles must
// run on the Tk thread before any window is built.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorPrimary   = "#2563eb" // floating player header
	ColorDanger    = "#dc2626"
	ColorAccent    = "#10b981"
	ColorLive      = "#ef4444" // live badge on the floating player
	ColorVideoBg   = "#000000"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot is the set of colors views read when building widgets.
type PaletteSnapshot struct {
	AppBg   string
	Surface string
	Primary string
	Live    string
	VideoBg string
}

func CurrentPalette() PaletteSnapshot {
	return PaletteSnapshot{
		AppBg:   ColorBg,
		Surface: ColorSurface,
		Primary: ColorPrimary,
		Live:    ColorLive,
		VideoBg: ColorVideoBg,
	}
}

// Style names, used as Style(StyleStatusLabel).
const (
	// StyleStatusLabel is the feed and capture status line.
	StyleStatusLabel = "status.TLabel"
	// StyleAlarmButton is the siren toggle.
	StyleAlarmButton = "alarm.TButton"
)

// InitStyles activates the base theme and configures the named styles.
func InitStyles() {
	_ = ActivateTheme("azure light")
	App.Configure(Background(ColorBg))

	StyleConfigure(StyleStatusLabel,
		Foreground(ColorTextMuted),
		Padding("2p 1p"),
		Relief("ridge"),
		Borderwidth(1),
	)
	StyleConfigure(StyleAlarmButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
}

// StatusColor picks the foreground for a status line: danger when failing,
// accent when live, muted otherwise.
func StatusColor(live, failed bool) string {
	switch {
	case failed:
		return ColorDanger
	case live:
		return ColorAccent
	default:
		return ColorTextMuted
	}
}
