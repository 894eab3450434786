// Package cssmodel implements the CSS animation-timeline model: it splits
// stylesheet text into top-level rule blocks, derives animation tracks and
// the overall scene duration from them, and rewrites individual declarations
// back into the text without disturbing unrelated rules.
//
// The package is deliberately lenient. Input is usually machine-generated
// and imperfect, so malformed text degrades to fewer blocks or tracks
// instead of returning errors.
package cssmodel

import "strings"

// Block is one top-level selector/body pair from a stylesheet.
// Byte offsets point into the original source string so declarations can be
// rewritten in place later; Selector and Body have comments stripped.
type Block struct {
	Selector string
	Body     string

	Start     int // offset of the first selector byte
	BodyStart int // offset just past the opening brace
	BodyEnd   int // offset of the matching closing brace
}

// ExtractBlocks splits stylesheet text into top-level rule blocks with a
// single left-to-right scan. Brace depth is tracked so @media/@keyframes
// bodies stay attached to their at-rule block, and /* */ comments are
// skipped as a unit at any depth so commented-out braces never perturb the
// depth count. Unbalanced input is handled best effort: a block left open at
// end of input is dropped, a stray closing brace at depth zero is ignored.
func ExtractBlocks(css string) []Block {
	var blocks []Block
	var selector, body strings.Builder

	depth := 0
	selStart := -1
	bodyStart := 0

	for i := 0; i < len(css); i++ {
		if strings.HasPrefix(css[i:], "/*") {
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 1
			continue
		}

		ch := css[i]
		switch {
		case depth == 0:
			if ch == '{' {
				depth = 1
				bodyStart = i + 1
				continue
			}
			if ch == '}' {
				// Stray brace, restart selector accumulation.
				selector.Reset()
				selStart = -1
				continue
			}
			if selStart < 0 && !isSpace(ch) {
				selStart = i
			}
			selector.WriteByte(ch)
		default:
			if ch == '{' {
				depth++
			} else if ch == '}' {
				depth--
				if depth == 0 {
					sel := strings.TrimSpace(selector.String())
					if sel != "" {
						blocks = append(blocks, Block{
							Selector:  sel,
							Body:      body.String(),
							Start:     selStart,
							BodyStart: bodyStart,
							BodyEnd:   i,
						})
					}
					selector.Reset()
					body.Reset()
					selStart = -1
					continue
				}
			}
			body.WriteByte(ch)
		}
	}

	return blocks
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
