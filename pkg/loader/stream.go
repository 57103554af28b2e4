package loader

import "strings"

// streamMode is the delivery mode selected by the stream property
type streamMode int

const (
	modeCached streamMode = iota
	modeStreaming
	modeBypass
)

func (m streamMode) String() string {
	switch m {
	case modeStreaming:
		return "stream"
	case modeBypass:
		return "bypass"
	default:
		return "cached"
	}
}

// streamModeOf maps a stream property value. Unknown values select the
// cached mode.
func streamModeOf(value string) streamMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true":
		return modeStreaming
	case "bypass", "bypasscache":
		return modeBypass
	default:
		return modeCached
	}
}
