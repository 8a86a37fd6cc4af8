// Package retrieve drives the whole pipeline for one document: build the
// candidate URL queue for the portal, walk it with escalating fetch
// strategies, classify each payload, extract and clean HTML hits, and stop
// at the first result that clears the quality threshold. Exhaustion is not
// an error: the caller always gets something actionable, at worst a
// redirect to the portal itself.
package retrieve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hukukpanel/kararfetch/internal/classify"
	"github.com/hukukpanel/kararfetch/internal/extract"
	"github.com/hukukpanel/kararfetch/internal/fetch"
	"github.com/hukukpanel/kararfetch/internal/normalize"
	"github.com/hukukpanel/kararfetch/internal/source"
)

// Content types reported in an Outcome.
const (
	ContentTypePDF     = "pdf"
	ContentTypeText    = "text"
	ContentTypeUnknown = "unknown"
)

// Fetcher abstracts the HTTP layer so the attempt queue is testable with
// canned responses.
type Fetcher interface {
	Do(ctx context.Context, url string, strategy fetch.Strategy) (*fetch.Result, error)
	Head(ctx context.Context, url string) (status int, contentType string, err error)
}

// Outcome is the retriever's sole contract with callers. Success means "a
// usable artifact was located": extracted text, a PDF URL, or, after total
// exhaustion, a redirect the user can open.
type Outcome struct {
	Success          bool   `json:"success"`
	Content          string `json:"content,omitempty"`
	ContentType      string `json:"content_type"`
	PDFURL           string `json:"pdf_url,omitempty"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	SourceURL        string `json:"source_url"`
	Source           string `json:"court_type"`
	ExtractionMethod string `json:"extraction_method,omitempty"`
	ErrorInfo        string `json:"error_info,omitempty"`
}

// Config holds the orchestration knobs.
type Config struct {
	// SuccessThreshold is the minimum cleaned-text length that counts as a
	// successful extraction. Default 150.
	SuccessThreshold int
	// AttemptBudget bounds the whole retrieve call; when it runs out the
	// remaining attempts are skipped and the redirect outcome is returned.
	// Default 90s. Negative disables.
	AttemptBudget time.Duration
	// HeadPrecheck enables a HEAD content-type sniff before the first GET
	// of each candidate, short-circuiting PDFs cheaply.
	HeadPrecheck bool
	// RawFallbackCap bounds the raw-text rescue when cleaning collapses a
	// long extraction to almost nothing. Default 5000 runes.
	RawFallbackCap int
}

func (c Config) successThreshold() int {
	if c.SuccessThreshold > 0 {
		return c.SuccessThreshold
	}
	return 150
}

func (c Config) attemptBudget() time.Duration {
	if c.AttemptBudget != 0 {
		return c.AttemptBudget
	}
	return 90 * time.Second
}

func (c Config) rawFallbackCap() int {
	if c.RawFallbackCap > 0 {
		return c.RawFallbackCap
	}
	return 5000
}

// Retriever wires the pipeline together. Each Retrieve call is independent;
// concurrent calls for different documents are safe.
type Retriever struct {
	Fetcher   Fetcher
	Extractor *extract.Extractor
	Cleaner   normalize.Cleaner
	Renderer  normalize.Renderer
	Config    Config
}

type candidate struct {
	url    string
	direct bool
}

// Retrieve fetches the decision identified by (sourceID, documentID).
// hintURL, when given, is tried before the portal's own templates. Input
// validation failures return an error; everything else returns an Outcome.
func (r *Retriever) Retrieve(ctx context.Context, sourceID, documentID, hintURL string) (Outcome, error) {
	info, err := source.Lookup(sourceID)
	if err != nil {
		return Outcome{}, err
	}
	if err := source.ValidateDocumentID(documentID); err != nil {
		return Outcome{}, err
	}

	candidates := buildCandidates(info, strings.TrimSpace(documentID), hintURL)
	threshold := r.Config.successThreshold()

	var deadline time.Time
	if budget := r.Config.attemptBudget(); budget > 0 {
		deadline = time.Now().Add(budget)
	}

	total := len(candidates) * len(fetch.Strategies)
	attempt := 0

queue:
	for _, cand := range candidates {
		for _, strategy := range fetch.Strategies {
			attempt++
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				log.Warn().Str("source", string(info.ID)).Int("attempt", attempt).Msg("attempt budget exhausted")
				break queue
			}
			log.Debug().
				Str("source", string(info.ID)).
				Str("url", cand.url).
				Stringer("strategy", strategy).
				Msgf("attempt %d/%d", attempt, total)

			if outcome, ok := r.tryAttempt(ctx, info, cand, strategy, attempt, threshold); ok {
				return outcome, nil
			}
		}
	}

	first := candidates[0].url
	log.Warn().Str("source", string(info.ID)).Str("redirect", first).Msg("all extraction attempts failed, falling back to redirect")
	return Outcome{
		Success:     true,
		ContentType: ContentTypeUnknown,
		RedirectURL: first,
		SourceURL:   first,
		Source:      string(info.ID),
		ErrorInfo:   "all extraction strategies failed",
	}, nil
}

func (r *Retriever) tryAttempt(ctx context.Context, info source.Info, cand candidate, strategy fetch.Strategy, attempt, threshold int) (Outcome, bool) {
	if r.Config.HeadPrecheck && strategy == fetch.Plain {
		if status, ct, err := r.Fetcher.Head(ctx, cand.url); err == nil &&
			status == 200 && strings.Contains(strings.ToLower(ct), "pdf") {
			return r.pdfOutcome(info, cand.url, strategy), true
		}
	}

	res, err := r.Fetcher.Do(ctx, cand.url, strategy)
	if err != nil {
		log.Debug().Err(err).Str("url", cand.url).Stringer("strategy", strategy).Msg("fetch failed")
		return Outcome{}, false
	}

	cls := classify.Classify(res.ContentType, res.Body)
	switch cls.Kind {
	case classify.PDF:
		return r.pdfOutcome(info, cand.url, strategy), true

	case classify.JSONAPI:
		text := r.Cleaner.Clean(cls.Text)
		if len(text) >= threshold {
			return r.textOutcome(info, cand.url, text,
				fmt.Sprintf("attempt %d json-api field %s (%s)", attempt, cls.Field, strategy)), true
		}

	case classify.HTML:
		if text, method, ok := r.extractHTML(ctx, cand, res.Body, threshold); ok {
			return r.textOutcome(info, cand.url, text,
				fmt.Sprintf("attempt %d %s (%s)", attempt, method, strategy)), true
		}
	}
	return Outcome{}, false
}

// extractHTML runs the direct-document renderer for bare-decision endpoints,
// then the selector cascade, then a raw rescue when cleaning was too
// aggressive on a long extraction.
func (r *Retriever) extractHTML(ctx context.Context, cand candidate, body []byte, threshold int) (string, string, bool) {
	if cand.direct {
		if rendered, err := r.renderer().Render(string(body)); err == nil {
			if text := r.Cleaner.Clean(rendered); len(text) >= threshold {
				return text, "direct-" + r.renderer().Name(), true
			}
		}
	}

	c := r.extractor().Extract(ctx, cand.url, body)
	text := r.Cleaner.Clean(c.Text)
	if len(text) < threshold && len(c.Text) >= 1000 {
		// Cleaning collapsed a substantial block; serve the raw text capped
		// rather than discarding the attempt.
		text = capRunes(collapseWhitespace(c.Text), r.Config.rawFallbackCap())
		if len(text) >= threshold {
			return text, c.Source + " raw", true
		}
		return "", "", false
	}
	if len(text) >= threshold {
		return text, c.Source, true
	}
	return "", "", false
}

func (r *Retriever) pdfOutcome(info source.Info, url string, strategy fetch.Strategy) Outcome {
	return Outcome{
		Success:          true,
		ContentType:      ContentTypePDF,
		PDFURL:           url,
		SourceURL:        url,
		Source:           string(info.ID),
		ExtractionMethod: fmt.Sprintf("pdf (%s)", strategy),
	}
}

func (r *Retriever) textOutcome(info source.Info, url, text, method string) Outcome {
	return Outcome{
		Success:          true,
		ContentType:      ContentTypeText,
		Content:          text,
		SourceURL:        url,
		Source:           string(info.ID),
		ExtractionMethod: method,
	}
}

func (r *Retriever) extractor() *extract.Extractor {
	if r.Extractor != nil {
		return r.Extractor
	}
	return &extract.Extractor{}
}

func (r *Retriever) renderer() normalize.Renderer {
	if r.Renderer != nil {
		return r.Renderer
	}
	return normalize.PlainTextRenderer{}
}

// buildCandidates expands the portal templates for a document, with an
// optional caller-supplied hint URL tried first.
func buildCandidates(info source.Info, documentID, hintURL string) []candidate {
	out := make([]candidate, 0, len(info.Templates)+1)
	seen := make(map[string]struct{})
	if u := strings.TrimSpace(hintURL); u != "" {
		out = append(out, candidate{url: u})
		seen[u] = struct{}{}
	}
	for _, t := range info.Templates {
		u := t.URL(documentID)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, candidate{url: u, direct: t.Direct})
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
