package cssmodel

import (
	"regexp"
	"strings"
	"sync"
)

// declPatterns caches one compiled lookup pattern per property name.
var declPatterns sync.Map // property -> *regexp.Regexp

// declPattern matches "property: value" with the value running to the next
// semicolon or end of body. The boundary class keeps "animation" from
// matching inside "animation-name" or "-webkit-animation".
func declPattern(property string) *regexp.Regexp {
	key := strings.ToLower(property)
	if cached, ok := declPatterns.Load(key); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)(^|[\s;{])` + regexp.QuoteMeta(key) + `\s*:\s*([^;}]*)`)
	declPatterns.Store(key, re)
	return re
}

// maskComments blanks every /* ... */ span (unterminated ones run to the
// end) with spaces so pattern searches cannot land inside a comment while
// byte offsets into the original text stay valid.
func maskComments(s string) string {
	b := []byte(s)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '/' || b[i+1] != '*' {
			continue
		}
		end := len(b)
		if j := strings.Index(s[i+2:], "*/"); j >= 0 {
			end = i + 2 + j + 2
		}
		for k := i; k < end; k++ {
			b[k] = ' '
		}
		i = end - 1
	}
	return string(b)
}

// FindDeclaration returns the trimmed value of the first live declaration
// of property inside a rule body, if present. Commented-out declarations
// are not live and never match.
func FindDeclaration(body, property string) (string, bool) {
	loc := declPattern(property).FindStringSubmatchIndex(maskComments(body))
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(body[loc[4]:loc[5]]), true
}

// SetProperty rewrites one declaration inside stylesheet text and returns
// the new text; the input is never modified. The target rule is the first
// top-level block whose selector matches literally (selectors come from the
// same extractor, so literal matching is predictable). An existing
// declaration has only its value segment replaced, a missing declaration is
// appended to the body, and a missing rule is appended as a whole new block.
// Calling it repeatedly with the same value is a no-op, and sequential calls
// for different properties on the same selector never clobber each other:
// every call re-scans the latest text.
func SetProperty(cssText, selector, property, value string) string {
	selector = strings.TrimSpace(selector)
	property = strings.TrimSpace(property)

	for _, block := range ExtractBlocks(cssText) {
		if block.Selector != selector {
			continue
		}
		body := cssText[block.BodyStart:block.BodyEnd]
		// Search a comment-masked copy so a commented-out duplicate never
		// shadows the live declaration; offsets map back to the real body.
		if loc := declPattern(property).FindStringSubmatchIndex(maskComments(body)); loc != nil {
			// loc[4:6] is the value group.
			body = body[:loc[4]] + value + body[loc[5]:]
		} else {
			body = appendDeclaration(body, property, value)
		}
		return cssText[:block.BodyStart] + body + cssText[block.BodyEnd:]
	}

	// No matching rule: append a fresh block after the existing text.
	rule := selector + " {\n  " + property + ": " + value + ";\n}"
	if strings.TrimSpace(cssText) == "" {
		return rule + "\n"
	}
	return strings.TrimRight(cssText, " \t\r\n") + "\n\n" + rule + "\n"
}

// appendDeclaration adds "property: value;" to a rule body, inserting a
// separating semicolon only when the existing body is non-empty and not
// already terminated by one.
func appendDeclaration(body, property, value string) string {
	decl := property + ": " + value + ";"
	trimmed := strings.TrimRight(body, " \t\r\n")
	switch {
	case strings.TrimSpace(body) == "":
		return "\n  " + decl + "\n"
	case strings.HasSuffix(trimmed, ";"):
		return trimmed + "\n  " + decl + "\n"
	default:
		return trimmed + ";\n  " + decl + "\n"
	}
}
