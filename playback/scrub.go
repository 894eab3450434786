package playback

import (
	"strings"

	"motionedit/cssmodel"
)

// ScrubCSS builds an override stylesheet that freezes every animated
// selector at the given scene time. Each animation is paused and its delay
// shifted by -seconds, which makes the browser's animation engine render
// the exact frame at that offset without advancing real time.
func ScrubCSS(tracks []cssmodel.Track, seconds float64) string {
	if len(tracks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tracks {
		b.WriteString(t.Selector)
		b.WriteString(" {\n  animation-delay: ")
		b.WriteString(cssmodel.FormatSeconds(t.Delay - seconds))
		b.WriteString(" !important;\n  animation-play-state: paused !important;\n}\n")
	}
	return b.String()
}
