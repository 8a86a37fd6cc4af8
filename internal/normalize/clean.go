// Package normalize cleans extracted decision text: entity unescaping, a
// defensive tag-stripping pass, whitespace and punctuation normalization,
// boilerplate line filtering and document-wide sentence deduplication.
package normalize

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Cleaner holds the tunable floors for text cleanup. The zero value uses
// defaults matching the portals this library was tuned against.
type Cleaner struct {
	// MinLineLen drops lines shorter than this unless they carry a legal
	// keyword. Default 15.
	MinLineLen int
	// DedupMinSentence exempts sentences shorter than this from
	// deduplication. Default 20.
	DedupMinSentence int
	// BoilerplateFloor is the final length floor: shorter results that still
	// read as navigation chrome collapse to the empty string. Default 100.
	BoilerplateFloor int
}

var (
	punctReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‚", "'",
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
	)

	skipLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(ana sayfa|anasayfa|menü|giriş|çıkış|login|logout)\b`),
		regexp.MustCompile(`(?i)^(copyright|©|tüm hakları)`),
		regexp.MustCompile(`(?i)^(javascript|cookie|çerez)`),
		regexp.MustCompile(`(?i)^(sayfa|page)\s*\d+`),
		regexp.MustCompile(`(?i)^(https?://|www\.|ftp)`),
		regexp.MustCompile(`^[\d\s.,:;/\-]+$`),
	}

	navWords = []string{"menü", "sayfa", "giriş", "çıkış", "ana sayfa", "javascript", "cookie"}
)

func (c Cleaner) minLineLen() int {
	if c.MinLineLen > 0 {
		return c.MinLineLen
	}
	return 15
}

func (c Cleaner) dedupMinSentence() int {
	if c.DedupMinSentence > 0 {
		return c.DedupMinSentence
	}
	return 20
}

func (c Cleaner) boilerplateFloor() int {
	if c.BoilerplateFloor > 0 {
		return c.BoilerplateFloor
	}
	return 100
}

// Clean normalizes raw extracted text. It is idempotent:
// Clean(Clean(x)) == Clean(x).
func (c Cleaner) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := unescapeAll(raw)
	s = punctReplacer.Replace(s)
	s = StripTags(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(strings.TrimSpace(line))
	}

	lines = c.dedupeSentences(lines)
	lines = c.filterLines(lines)

	out := strings.TrimSpace(strings.Join(lines, "\n"))

	if len(out) < c.boilerplateFloor() && containsNavWord(out) {
		return ""
	}
	return out
}

// unescapeAll decodes HTML entities until a fixed point so that arbitrarily
// nested escaping cannot make Clean non-idempotent. Every pass that changes
// the string strictly shrinks it, so the loop terminates.
func unescapeAll(s string) string {
	for {
		u := html.UnescapeString(s)
		if u == s {
			return s
		}
		s = u
	}
}

// StripTags removes any residual markup from text that should already be
// plain. Extraction can miss nested fragments; this pass is the backstop.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	tok := xhtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := tok.Next()
		switch tt {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			b.Write(tok.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				// Skip embedded script/style bodies entirely.
				skipUntilClose(tok, string(name))
			case "br", "p", "div", "tr", "li":
				b.WriteString("\n")
			default:
				b.WriteString(" ")
			}
		}
	}
}

func skipUntilClose(tok *xhtml.Tokenizer, name string) {
	for {
		tt := tok.Next()
		if tt == xhtml.ErrorToken {
			return
		}
		if tt == xhtml.EndTagToken {
			n, _ := tok.TagName()
			if string(n) == name {
				return
			}
		}
	}
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\u00a0' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// dedupeSentences removes repeated sentences across the whole document,
// keeping the first occurrence. Sentence splitting is naive (period
// delimited); very short sentences are kept as-is.
func (c Cleaner) dedupeSentences(lines []string) []string {
	seen := make(map[string]struct{})
	floor := c.dedupMinSentence()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" || !strings.Contains(line, ".") {
			out = append(out, line)
			continue
		}
		trailing := strings.HasSuffix(line, ".")
		parts := strings.Split(line, ".")
		kept := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if len(p) < floor {
				kept = append(kept, p)
				continue
			}
			key := collapseSpaces(LowerTurkish(p))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			continue
		}
		rebuilt := strings.Join(kept, ". ")
		if trailing {
			rebuilt += "."
		}
		out = append(out, rebuilt)
	}
	return out
}

// filterLines drops navigation and boilerplate lines, keeping at most one
// consecutive blank line between paragraphs.
func (c Cleaner) filterLines(lines []string) []string {
	minLen := c.minLineLen()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		if matchesSkipPattern(line) {
			continue
		}
		if len(line) < minLen && !ContainsLegalKeyword(line) {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func matchesSkipPattern(line string) bool {
	for _, re := range skipLineRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func containsNavWord(s string) bool {
	low := LowerTurkish(s)
	for _, w := range navWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
