package cssmodel

import (
	"strings"
	"testing"
)

func TestExtractBlocksTopLevelRules(t *testing.T) {
	css := `
.box { background: red; }
#stage {
  width: 100px;
  height: 100px;
}
`
	blocks := ExtractBlocks(css)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Selector != ".box" {
		t.Errorf("expected selector .box, got %q", blocks[0].Selector)
	}
	if !strings.Contains(blocks[0].Body, "background: red;") {
		t.Errorf("unexpected body %q", blocks[0].Body)
	}
	if blocks[1].Selector != "#stage" {
		t.Errorf("expected selector #stage, got %q", blocks[1].Selector)
	}
}

func TestExtractBlocksKeepsAtRuleBodiesIntact(t *testing.T) {
	css := `
@keyframes slide {
  from { left: 0; }
  to { left: 100px; }
}
.box { animation: slide 2s; }
`
	blocks := ExtractBlocks(css)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Selector != "@keyframes slide" {
		t.Errorf("expected @keyframes block first, got %q", blocks[0].Selector)
	}
	if !strings.Contains(blocks[0].Body, "to { left: 100px; }") {
		t.Errorf("nested keyframe body was split: %q", blocks[0].Body)
	}
	if blocks[1].Selector != ".box" {
		t.Errorf("expected .box block second, got %q", blocks[1].Selector)
	}
}

func TestExtractBlocksSkipsCommentedBraces(t *testing.T) {
	css := `
/* } { stray braces in a comment */
.a { /* { */ color: blue; }
.b { color: green; }
`
	blocks := ExtractBlocks(css)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Selector != ".a" || blocks[1].Selector != ".b" {
		t.Errorf("unexpected selectors %q, %q", blocks[0].Selector, blocks[1].Selector)
	}
	if strings.Contains(blocks[0].Body, "{") {
		t.Errorf("comment content leaked into body: %q", blocks[0].Body)
	}
}

func TestExtractBlocksUnbalancedInputBestEffort(t *testing.T) {
	blocks := ExtractBlocks(".a { color: red; } .b { animation: x 2s")
	if len(blocks) != 1 {
		t.Fatalf("expected the open trailing block to be dropped, got %d blocks", len(blocks))
	}
	if blocks[0].Selector != ".a" {
		t.Errorf("expected .a, got %q", blocks[0].Selector)
	}

	if got := ExtractBlocks("} } .c { color: red; }"); len(got) != 1 || got[0].Selector != ".c" {
		t.Fatalf("stray closing braces should be ignored, got %+v", got)
	}
}

func TestExtractBlocksBodiesAreBraceBalanced(t *testing.T) {
	inputs := []string{
		"@media (max-width: 600px) { .a { color: red; } .b { color: blue; } }",
		".a{}.b{}.c{animation:x 1s}",
		"garbage {{ .a { color: red; } }} .b { color: blue; }",
	}
	for _, css := range inputs {
		for _, b := range ExtractBlocks(css) {
			depth := 0
			for i := 0; i < len(b.Body); i++ {
				switch b.Body[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth < 0 {
					t.Fatalf("unmatched closing brace in body of %q: %q", b.Selector, b.Body)
				}
			}
			if depth != 0 {
				t.Fatalf("unbalanced body for %q: %q", b.Selector, b.Body)
			}
		}
	}
}

func TestExtractBlocksOffsetsPointIntoSource(t *testing.T) {
	css := ".a { color: red; }\n.b { margin: 0; }"
	for _, b := range ExtractBlocks(css) {
		raw := css[b.BodyStart:b.BodyEnd]
		if raw != b.Body {
			t.Errorf("offsets for %q give %q, body is %q", b.Selector, raw, b.Body)
		}
		if !strings.HasPrefix(css[b.Start:], b.Selector) {
			t.Errorf("Start offset for %q does not point at the selector", b.Selector)
		}
	}
}

func TestExtractBlocksEmptyAndGarbageInput(t *testing.T) {
	for _, css := range []string{"", "   ", "no braces at all", "/* only a comment */"} {
		if got := ExtractBlocks(css); len(got) != 0 {
			t.Errorf("ExtractBlocks(%q) = %+v, expected none", css, got)
		}
	}
}
