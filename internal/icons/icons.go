// Package icons holds the glyphs used for playback state, selected by the
// "icons" config value.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the glyphs for the current style.
type Icons struct {
	Idle    string
	Play    string
	Pause   string
	Stop    string
	Failed  string
	Pending string
	Video   string // render surface bound
	Audio   string // headless, audio only
	Played  string // history entry that played
	Broken  string // history entry whose last attempt failed
}

var (
	nerdIcons = Icons{
		Idle:    "\uf28d", // nf-fa-stop_circle
		Play:    "\uf04b", // nf-fa-play
		Pause:   "\uf04c", // nf-fa-pause
		Stop:    "\uf04d", // nf-fa-stop
		Failed:  "\uf071", // nf-fa-warning
		Pending: "\uf110", // nf-fa-spinner
		Video:   "\uf03d", // nf-fa-video_camera
		Audio:   "\uf001", // nf-fa-music
		Played:  "\uf00c", // nf-fa-check
		Broken:  "\uf00d", // nf-fa-times
	}

	unicodeIcons = Icons{
		Idle:    "·",
		Play:    "▶",
		Pause:   "⏸",
		Stop:    "■",
		Failed:  "✗",
		Pending: "…",
		Video:   "▣",
		Audio:   "♪",
		Played:  "✓",
		Broken:  "✗",
	}

	noneIcons = Icons{
		Idle:    "-",
		Play:    ">",
		Pause:   "||",
		Stop:    "[]",
		Failed:  "!",
		Pending: "...",
		Video:   "[video]",
		Audio:   "[audio]",
		Played:  "+",
		Broken:  "x",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init selects the icon set. Unknown values keep the unicode set.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = unicodeIcons
	}
}

// Current returns the active icon set.
func Current() Icons {
	return current
}
