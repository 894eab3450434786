package render

import (
	"fmt"

	"motionedit/cssmodel"
	"motionedit/playback"
)

// ComposePage builds a self-contained page showing the scene frozen at the
// given timestamp. The scrub override is injected after the scene styles so
// it wins without touching them.
func ComposePage(html, css string, seconds float64) string {
	override := playback.ScrubCSS(cssmodel.ParseTracks(css), seconds)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; padding: 0; overflow: hidden; }
%s
</style>
<style>
%s
</style>
</head>
<body>
%s
</body>
</html>
`, css, override, html)
}
