// Package app wires configuration, the HTTP layer, the retriever and the
// optional cache into one run.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hukukpanel/kararfetch/internal/cache"
	"github.com/hukukpanel/kararfetch/internal/extract"
	"github.com/hukukpanel/kararfetch/internal/fetch"
	"github.com/hukukpanel/kararfetch/internal/normalize"
	"github.com/hukukpanel/kararfetch/internal/retrieve"
	"github.com/hukukpanel/kararfetch/internal/source"
)

// Run performs one retrieval per the config and writes any requested
// artifacts. The returned outcome is always actionable unless the input was
// invalid.
func Run(ctx context.Context, cfg Config) (retrieve.Outcome, error) {
	if err := ValidateConfig(cfg); err != nil {
		return retrieve.Outcome{}, err
	}

	var store *cache.Store
	if cfg.CacheDir != "" {
		store = &cache.Store{Dir: cfg.CacheDir, MaxAge: cfg.CacheMaxAge}
		if cfg.CacheClear {
			if err := store.Clear(); err != nil {
				return retrieve.Outcome{}, fmt.Errorf("clear cache: %w", err)
			}
		}
	}

	var outcome retrieve.Outcome
	cached := false
	if store != nil && !cfg.BypassCache {
		if out, err := store.Load(ctx, cfg.Source, cfg.DocumentID); err == nil {
			log.Info().Str("source", cfg.Source).Str("id", cfg.DocumentID).Msg("serving cached outcome")
			outcome, cached = *out, true
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("cache read failed, fetching fresh")
		}
	}

	if !cached {
		client := &fetch.Client{
			HTTPClient:         newPortalHTTPClient(cfg.Insecure),
			PerRequestTimeout:  cfg.Timeout,
			InsecureSkipVerify: cfg.Insecure,
		}
		extractor := &extract.Extractor{
			FetchFrame: func(ctx context.Context, u string) ([]byte, error) {
				res, err := client.Do(ctx, u, fetch.Plain)
				if err != nil {
					return nil, err
				}
				return res.Body, nil
			},
		}
		r := &retrieve.Retriever{
			Fetcher:   client,
			Extractor: extractor,
			Renderer:  normalize.NewRenderer(cfg.Markdown),
			Config: retrieve.Config{
				SuccessThreshold: cfg.SuccessThreshold,
				AttemptBudget:    cfg.Budget,
				HeadPrecheck:     cfg.HeadPrecheck,
			},
		}

		out, err := r.Retrieve(ctx, cfg.Source, cfg.DocumentID, cfg.HintURL)
		if err != nil {
			return retrieve.Outcome{}, err
		}
		outcome = out
		if store != nil {
			if err := store.Save(ctx, cfg.Source, cfg.DocumentID, outcome); err != nil {
				log.Warn().Err(err).Msg("cache write failed")
			}
		}
	}

	if outcome.Content != "" {
		if cfg.OutputPath != "" {
			if err := os.WriteFile(cfg.OutputPath, []byte(outcome.Content+"\n"), 0o644); err != nil {
				return outcome, fmt.Errorf("write output: %w", err)
			}
		}
		if cfg.PDFPath != "" {
			info, _ := source.Lookup(cfg.Source)
			title := fmt.Sprintf("%s - %s", info.Name, cfg.DocumentID)
			if err := writeDecisionPDF(title, outcome.Content, cfg.PDFPath); err != nil {
				return outcome, fmt.Errorf("write pdf: %w", err)
			}
		}
	}
	return outcome, nil
}
