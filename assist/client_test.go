package assist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseReplyExtractsFences(t *testing.T) {
	reply := "Here is your bouncing ball.\n" +
		"```html\n<div class=\"ball\"></div>\n```\n" +
		"```css\n.ball { animation: bounce 2s; }\n```\n" +
		"The ball uses a 2 second bounce."

	r := ParseReply(reply)
	if r.HTML != `<div class="ball"></div>` {
		t.Errorf("html = %q", r.HTML)
	}
	if r.CSS != ".ball { animation: bounce 2s; }" {
		t.Errorf("css = %q", r.CSS)
	}
	if strings.Contains(r.Explanation, "```") || !strings.Contains(r.Explanation, "bouncing ball") {
		t.Errorf("explanation = %q", r.Explanation)
	}
}

func TestParseReplyWithoutFencesKeepsFieldsEmpty(t *testing.T) {
	r := ParseReply("I could not produce an animation from that description.")
	if r.HTML != "" || r.CSS != "" {
		t.Errorf("expected empty code fields, got %+v", r)
	}
	if r.Explanation == "" {
		t.Error("expected the prose to survive as explanation")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` +
			`"Done.\n` + "```" + `html\n<p></p>\n` + "```" + `\n` + "```" + `css\np { animation: x 1s; }\n` + "```" + `"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "test-model", "test-key")
	r, err := c.Generate(context.Background(), "make a thing", "<div></div>", ".d{}")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.HTML != "<p></p>" || r.CSS != "p { animation: x 1s; }" {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestOpenAIGenerateErrors(t *testing.T) {
	c := NewOpenAI("http://localhost:0", "m", "")
	if _, err := c.Generate(context.Background(), "x", "", ""); err == nil {
		t.Fatal("expected error without API key")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c = NewOpenAI(srv.URL, "m", "k")
	if _, err := c.Generate(context.Background(), "x", "", ""); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestNewOpenAIBoundsRequests(t *testing.T) {
	c := NewOpenAI("https://api.example.com/v1", "gpt-4o-mini", "sk-test")
	if c.client.Timeout <= 0 {
		t.Error("generation client must carry a request timeout")
	}
}
