package cssmodel

import (
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// DefaultSceneSeconds is the scene duration used when no track animates.
const DefaultSceneSeconds = 5.0

// defaultTrackName stands in for animations declared without a name.
const defaultTrackName = "unnamed"

// Track is one animated selector's timing on the timeline. Tracks are
// derived fresh from stylesheet text on every change and never mutated in
// place.
type Track struct {
	Selector string  `json:"selector"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration"` // seconds
	Delay    float64 `json:"delay"`    // seconds
}

// End returns the instant the track's animation finishes.
func (t Track) End() float64 {
	return t.Delay + t.Duration
}

// timePattern matches a CSS time token such as "2s", ".5s" or "300ms".
var timePattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)(s|ms)$`)

// shorthandKeywords are animation shorthand tokens that can never be the
// animation name: timing functions, fill modes, directions, play states and
// the infinite iteration count.
var shorthandKeywords = map[string]bool{
	"linear": true, "ease": true, "ease-in": true, "ease-out": true,
	"ease-in-out": true, "step-start": true, "step-end": true,
	"none": true, "forwards": true, "backwards": true, "both": true,
	"normal": true, "reverse": true, "alternate": true, "alternate-reverse": true,
	"running": true, "paused": true, "infinite": true,
	"initial": true, "inherit": true, "unset": true,
}

// ParseTracks derives the ordered track list from stylesheet text. At-rules
// are skipped; grouped selectors emit one track per selector so each can be
// dragged independently; rules whose resolved duration is zero are not
// tracked at all.
func ParseTracks(cssText string) []Track {
	var tracks []Track

	for _, block := range ExtractBlocks(cssText) {
		if strings.HasPrefix(block.Selector, "@") {
			continue
		}

		name, duration, delay := blockTiming(block.Body)
		if duration <= 0 {
			continue
		}
		if name == "" {
			name = defaultTrackName
		}

		for _, sel := range SplitSelectors(block.Selector) {
			tracks = append(tracks, Track{
				Selector: sel,
				Name:     name,
				Duration: duration,
				Delay:    delay,
			})
		}
	}

	return tracks
}

// SceneDuration reduces a track list to the total playable length: the
// latest animation end across all tracks, or the default floor when nothing
// animates.
func SceneDuration(tracks []Track) float64 {
	if len(tracks) == 0 {
		return DefaultSceneSeconds
	}
	max := 0.0
	for _, t := range tracks {
		if end := t.End(); end > max {
			max = end
		}
	}
	return max
}

// blockTiming resolves (name, duration, delay) for one rule body. The
// animation shorthand is read first; longhand declarations override
// whatever the shorthand supplied.
func blockTiming(body string) (name string, duration, delay float64) {
	if value, ok := FindDeclaration(body, "animation"); ok {
		name, duration, delay = parseShorthand(value)
	}
	if value, ok := FindDeclaration(body, "animation-name"); ok {
		if tokens := splitValueTokens(value); len(tokens) > 0 {
			name = tokens[0]
		}
	}
	if value, ok := FindDeclaration(body, "animation-duration"); ok {
		duration = ParseSeconds(firstToken(value))
	}
	if value, ok := FindDeclaration(body, "animation-delay"); ok {
		delay = ParseSeconds(firstToken(value))
	}
	return name, duration, delay
}

// parseShorthand picks duration, delay and name out of an animation
// shorthand value. Among its whitespace-separated tokens the first time
// token is the duration and the second the delay; the name is the first
// token that is not a time, a bare iteration count, a known keyword or a
// function call like cubic-bezier(...).
func parseShorthand(value string) (name string, duration, delay float64) {
	timesSeen := 0
	for _, tok := range splitValueTokens(value) {
		lower := strings.ToLower(tok)
		switch {
		case timePattern.MatchString(lower):
			switch timesSeen {
			case 0:
				duration = ParseSeconds(lower)
			case 1:
				delay = ParseSeconds(lower)
			}
			timesSeen++
		case isNumber(lower):
			// Iteration count.
		case shorthandKeywords[lower]:
		case strings.Contains(tok, "("):
			// cubic-bezier(...), steps(...) and friends.
		default:
			if name == "" {
				name = tok
			}
		}
	}
	return name, duration, delay
}

// ParseSeconds converts a CSS time token to seconds. Values ending in "ms"
// are divided by 1000, values ending in "s" are taken as-is and anything
// unparsable resolves to 0.
func ParseSeconds(value string) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasSuffix(value, "ms"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(value, "ms"), 64)
		if err != nil {
			return 0
		}
		return n / 1000
	case strings.HasSuffix(value, "s"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// FormatSeconds renders seconds as a CSS time value, e.g. "2.50s". Two
// decimals keep repeated format/parse cycles stable during drags.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64) + "s"
}

// SplitSelectors splits a selector list on top-level commas, leaving commas
// inside functional pseudo-classes such as :not(a, b) alone.
func SplitSelectors(selector string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(selector); i++ {
		switch selector[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(selector[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(selector[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitValueTokens splits a declaration value on whitespace outside
// parentheses, using the css lexer so function calls survive as single
// tokens. A top-level comma ends the scan: for multi-animation shorthands
// only the first animation contributes timing.
func splitValueTokens(value string) []string {
	lexer := css.NewLexer(parse.NewInputString(value))

	var tokens []string
	var current strings.Builder
	parens := 0

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			flush()
			return tokens
		case css.CommentToken:
			// Skipped.
		case css.WhitespaceToken:
			if parens > 0 {
				current.Write(data)
			} else {
				flush()
			}
		case css.CommaToken:
			if parens > 0 {
				current.Write(data)
				continue
			}
			flush()
			return tokens
		case css.FunctionToken, css.LeftParenthesisToken:
			parens++
			current.Write(data)
		case css.RightParenthesisToken:
			if parens > 0 {
				parens--
			}
			current.Write(data)
		default:
			current.Write(data)
		}
	}
}

func firstToken(value string) string {
	if tokens := splitValueTokens(value); len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
