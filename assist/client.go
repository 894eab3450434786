// Package assist talks to the code-generation collaborator: given a natural
// language prompt and the scene's current code, it returns replacement
// HTML/CSS plus an explanation. The session treats the returned strings as
// full replacements, never diffs.
package assist

import (
	"context"
	"regexp"
	"strings"
)

// Result is one generation round trip. An empty HTML or CSS field means
// "keep the current code for that part".
type Result struct {
	HTML        string `json:"html,omitempty"`
	CSS         string `json:"css,omitempty"`
	Explanation string `json:"explanation"`
}

// Client sends a prompt plus the current scene code to a generation backend.
type Client interface {
	Generate(ctx context.Context, prompt, currentHTML, currentCSS string) (Result, error)
}

var (
	htmlFence = regexp.MustCompile("(?s)```html\\s*\n(.*?)```")
	cssFence  = regexp.MustCompile("(?s)```css\\s*\n(.*?)```")
)

// ParseReply splits a model reply into fenced html/css blocks and keeps the
// surrounding prose as the explanation. Replies without a fence leave the
// corresponding field empty.
func ParseReply(reply string) Result {
	var r Result

	if m := htmlFence.FindStringSubmatch(reply); m != nil {
		r.HTML = strings.TrimSpace(m[1])
	}
	if m := cssFence.FindStringSubmatch(reply); m != nil {
		r.CSS = strings.TrimSpace(m[1])
	}

	prose := htmlFence.ReplaceAllString(reply, "")
	prose = cssFence.ReplaceAllString(prose, "")
	r.Explanation = strings.TrimSpace(prose)
	return r
}
