package logging

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/latticefield/engine"
)

// titleCaser renders event-kind labels for log output, following the
// toTitleCase(s) helper in core/emu.go.
var titleCaser = cases.Title(language.English)

func eventKindLabel(k engine.EventKind) string {
	var raw string
	switch k {
	case engine.EventCacheRebuilt:
		raw = "CACHE REBUILT"
	case engine.EventStepCompleted:
		raw = "STEP COMPLETED"
	case engine.EventInstabilityDetected:
		raw = "INSTABILITY DETECTED"
	default:
		raw = "UNKNOWN EVENT"
	}
	return titleCaser.String(strings.ToLower(raw))
}

// EngineEventFunc returns an engine.EventFunc that traces every event
// through l, so engine step/cache/instability narration lands in the same
// structured sink as the rest of the module instead of a direct Println
// (the pattern config.DeviceBuilder uses during device construction).
func (l *Logger) EngineEventFunc() engine.EventFunc {
	return func(ev engine.Event) {
		label := eventKindLabel(ev.Kind)
		switch ev.Kind {
		case engine.EventInstabilityDetected:
			l.Logger.Warn("engine instability", "kind", label, "message", ev.Message)
		case engine.EventCacheRebuilt:
			l.Trace("neighbor cache rebuilt", "kind", label, "message", ev.Message)
		default:
			l.Trace("engine step", "kind", label, "message", ev.Message)
		}
	}
}
