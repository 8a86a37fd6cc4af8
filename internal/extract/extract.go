// Package extract isolates decision text from portal HTML. It walks an
// ordered cascade of selector groups (portal-specific panels first, generic
// containers last), scores matching blocks by length and legal vocabulary,
// and falls back to filtered body text when no selector yields enough.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/hukukpanel/kararfetch/internal/normalize"
)

// Candidate is the best text block found in one document, tagged with the
// selector or fallback that produced it.
type Candidate struct {
	Text   string
	Source string
}

// Config holds the scoring floors. They were tuned against live portal
// pages; treat them as configuration, not constants.
type Config struct {
	// KeywordFloor is the minimum length for a block that also carries a
	// legal keyword. Default 150.
	KeywordFloor int
	// PresumptiveFloor accepts a block on length alone. Default 1000.
	PresumptiveFloor int
	// FallbackTrigger runs the body-text fallback when the structural best
	// is shorter than this. Default 400.
	FallbackTrigger int
	// MinLineLen is the per-line floor in the body fallback. Default 10.
	MinLineLen int
	// MaxFrames caps one-level iframe/embed follows. Default 3.
	MaxFrames int
}

func (c Config) keywordFloor() int {
	if c.KeywordFloor > 0 {
		return c.KeywordFloor
	}
	return 150
}

func (c Config) presumptiveFloor() int {
	if c.PresumptiveFloor > 0 {
		return c.PresumptiveFloor
	}
	return 1000
}

func (c Config) fallbackTrigger() int {
	if c.FallbackTrigger > 0 {
		return c.FallbackTrigger
	}
	return 400
}

func (c Config) minLineLen() int {
	if c.MinLineLen > 0 {
		return c.MinLineLen
	}
	return 10
}

func (c Config) maxFrames() int {
	if c.MaxFrames > 0 {
		return c.MaxFrames
	}
	return 3
}

// FrameFetcher retrieves a framed document so its content can compete as a
// candidate. Optional; extraction works without it.
type FrameFetcher func(ctx context.Context, url string) ([]byte, error)

// Extractor applies the selector cascade. Zero value is usable.
type Extractor struct {
	Config     Config
	FetchFrame FrameFetcher
}

// noiseSelectors never contribute decision text and are removed outright.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"header", "footer", "nav", "aside",
	"form", "button", "input", "select", "textarea",
}

type selectorGroup struct {
	name      string
	selectors []string
}

// selectorGroups runs most portal-specific first. Yargıtay and UYAP both sit
// on PrimeFaces, hence the ui-* panels at the top.
var selectorGroups = []selectorGroup{
	{"primefaces-panels", []string{"div.ui-panel-content", "div.ui-widget-content", "div.ui-outputpanel", "span.ui-outputlabel"}},
	{"decision-containers", []string{"div.karar-metni", "div.karar-icerik", "div.karar-detay", "div.icerik", "div.metin"}},
	{"id-substring", []string{"div[id*='detay']", "div[id*='icerik']", "div[id*='karar']", "div[id*='panel']"}},
	{"decision-tables", []string{"table.karar-tablosu", "table.ui-datatable", "td.karar-cell", "div.karar-bilgileri"}},
	{"generic-content", []string{"div[class*='content']", "div[class*='karar']", "div[class*='detay']", "div[class*='bilgi']"}},
	{"preformatted", []string{"pre", "div.text-content", "span.text", "p.karar-paragraf"}},
	{"semantic", []string{"main", "article", "section", ".container", ".content"}},
}

// bodyFallbackSkip drops navigation lines in the whole-body fallback.
var bodyFallbackSkip = []string{
	"menü", "navigation", "footer", "header", "cookie", "javascript",
	"login", "giriş", "çıkış", "anasayfa", "ana sayfa", "site haritası",
	"yardım", "copyright", "telif", "bilgi bankası",
}

var punctOnlyRe = regexp.MustCompile(`^[\s\d.,\-:;/]+$`)

// Extract returns the best candidate found in htmlBody. The running best
// only ever grows: evaluating more groups never shrinks the result.
func (e *Extractor) Extract(ctx context.Context, baseURL string, htmlBody []byte) Candidate {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return Candidate{}
	}

	frameSrcs := collectFrameSrcs(doc)
	doc.Find("iframe, embed, object").Remove()
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var best Candidate
	for _, group := range selectorGroups {
		for _, sel := range group.selectors {
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				text := blockText(s.Nodes...)
				if e.better(best, text) {
					best = Candidate{Text: text, Source: fmt.Sprintf("%s %s", group.name, sel)}
				}
			})
		}
	}

	best = e.considerFrames(ctx, baseURL, frameSrcs, best)

	if len(best.Text) < e.Config.fallbackTrigger() {
		if fb, ok := e.bodyFallback(doc); ok && len(fb.Text) > len(best.Text) {
			best = fb
		}
	}
	return best
}

// better applies the scoring rule: a candidate must beat the current best on
// length and either clear the keyword floor with legal vocabulary present or
// be long enough to be presumptively substantive.
func (e *Extractor) better(best Candidate, text string) bool {
	n := len(text)
	if n <= len(best.Text) {
		return false
	}
	if n >= e.Config.presumptiveFloor() {
		return true
	}
	return n >= e.Config.keywordFloor() && normalize.ContainsLegalKeyword(text)
}

func collectFrameSrcs(doc *goquery.Document) []string {
	var srcs []string
	doc.Find("iframe, embed, object").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			src, ok = s.Attr("data")
		}
		if ok && strings.TrimSpace(src) != "" {
			srcs = append(srcs, src)
		}
	})
	return srcs
}

// considerFrames follows frame sources one level and lets their content
// compete with the host page.
func (e *Extractor) considerFrames(ctx context.Context, baseURL string, srcs []string, best Candidate) Candidate {
	if e.FetchFrame == nil || len(srcs) == 0 {
		return best
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return best
	}
	max := e.Config.maxFrames()
	for i, src := range srcs {
		if i >= max {
			break
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		target := base.ResolveReference(ref).String()
		body, err := e.FetchFrame(ctx, target)
		if err != nil {
			log.Debug().Err(err).Str("frame", target).Msg("frame fetch failed")
			continue
		}
		frameDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}
		for _, sel := range noiseSelectors {
			frameDoc.Find(sel).Remove()
		}
		text := blockText(frameDoc.Selection.Nodes...)
		if e.better(best, text) {
			best = Candidate{Text: text, Source: "iframe " + target}
		}
	}
	return best
}

// bodyFallback takes the whole body text and filters it line by line against
// navigation noise. Tagged distinctly so diagnostics show the cascade missed.
func (e *Extractor) bodyFallback(doc *goquery.Document) (Candidate, bool) {
	body := doc.Find("body")
	if body.Length() == 0 {
		return Candidate{}, false
	}
	lines := strings.Split(blockText(body.Nodes...), "\n")
	minLen := e.Config.minLineLen()
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < minLen {
			continue
		}
		if strings.HasPrefix(line, "http") || strings.HasPrefix(line, "www.") {
			continue
		}
		if punctOnlyRe.MatchString(line) {
			continue
		}
		if containsSkipWord(line) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) < 5 {
		return Candidate{}, false
	}
	return Candidate{Text: strings.Join(kept, "\n"), Source: "body-fallback"}, true
}

func containsSkipWord(line string) bool {
	low := normalize.LowerTurkish(line)
	for _, w := range bodyFallbackSkip {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

// blockText renders the visible text of nodes with block boundaries as
// newlines, each block trimmed, empties dropped. Mirrors a
// separator-and-strip text walk.
func blockText(nodes ...*html.Node) string {
	var blocks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			blocks = append(blocks, s)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
		case html.ElementNode:
			if isBlockElement(n.Data) {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			flush()
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	flush()

	for i, b := range blocks {
		blocks[i] = collapseInline(b)
	}
	return strings.Join(blocks, "\n")
}

func isBlockElement(name string) bool {
	switch strings.ToLower(name) {
	case "p", "div", "br", "li", "tr", "td", "th", "table",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "section",
		"article", "main", "pre", "blockquote":
		return true
	}
	return false
}

func collapseInline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
