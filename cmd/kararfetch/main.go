package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hukukpanel/kararfetch/internal/app"
	"github.com/hukukpanel/kararfetch/internal/source"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		sourceID   string
		documentID string
		hintURL    string
		outputPath string
		pdfPath    string
		configPath string
		timeout    time.Duration
		budget     time.Duration
		threshold  int
		insecure   bool
		headCheck  bool
		plainText  bool
		cacheDir   string
		cacheAge   time.Duration
		cacheClear bool
		noCache    bool
		asJSON     bool
		verbose    bool
		listAll    bool
	)

	flag.StringVar(&sourceID, "source", "", "Judicial portal id (see -list)")
	flag.StringVar(&documentID, "id", "", "Decision document id within the portal")
	flag.StringVar(&hintURL, "url", "", "Optional document URL hint, tried before the portal templates")
	flag.StringVar(&outputPath, "o", "", "Write extracted text to this file instead of stdout")
	flag.StringVar(&pdfPath, "pdf", "", "Also render the extracted text to this PDF file")
	flag.StringVar(&configPath, "config", os.Getenv("KARARFETCH_CONFIG"), "Optional YAML/JSON config file")
	flag.DurationVar(&timeout, "timeout", app.DefaultTimeout, "Per-request timeout")
	flag.DurationVar(&budget, "budget", app.DefaultBudget, "Overall wall-clock budget for all attempts")
	flag.IntVar(&threshold, "threshold", 0, "Minimum extracted-text length counted as success (0 uses the default)")
	flag.BoolVar(&insecure, "insecure", false, "Skip TLS verification (legacy portals with broken chains)")
	flag.BoolVar(&headCheck, "head-precheck", false, "HEAD-sniff content type before the first GET of each candidate")
	flag.BoolVar(&plainText, "plain", false, "Use the plain-text renderer instead of markdown for direct documents")
	flag.StringVar(&cacheDir, "cache.dir", os.Getenv("KARARFETCH_CACHE"), "Outcome cache directory (empty disables caching)")
	flag.DurationVar(&cacheAge, "cache.maxAge", 0, "Max age for cached outcomes (0 keeps indefinitely)")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear the cache before running")
	flag.BoolVar(&noCache, "cache.bypass", false, "Fetch fresh even when a cached outcome exists")
	flag.BoolVar(&asJSON, "json", false, "Print the full outcome as JSON instead of just the text")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&listAll, "list", false, "List supported portals and exit")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if listAll {
		for _, info := range source.All() {
			fmt.Printf("%-12s %s (%d candidate urls)\n", info.ID, info.Name, len(info.Templates))
		}
		return
	}

	cfg := app.Config{
		Source:           sourceID,
		DocumentID:       documentID,
		HintURL:          hintURL,
		OutputPath:       outputPath,
		PDFPath:          pdfPath,
		Timeout:          timeout,
		Budget:           budget,
		Insecure:         insecure,
		HeadPrecheck:     headCheck,
		SuccessThreshold: threshold,
		Markdown:         !plainText,
		CacheDir:         cacheDir,
		CacheMaxAge:      cacheAge,
		CacheClear:       cacheClear,
		BypassCache:      noCache,
		Verbose:          verbose,
	}

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := app.Run(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("retrieval failed")
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			log.Fatal().Err(err).Msg("encode outcome")
		}
		return
	}

	switch {
	case outcome.Content != "":
		if cfg.OutputPath == "" {
			fmt.Println(outcome.Content)
		}
		log.Info().Str("method", outcome.ExtractionMethod).Str("url", outcome.SourceURL).Msg("decision text extracted")
	case outcome.PDFURL != "":
		fmt.Println(outcome.PDFURL)
		log.Info().Str("url", outcome.PDFURL).Msg("decision is a PDF, open the url")
	default:
		fmt.Println(outcome.RedirectURL)
		log.Warn().Str("info", outcome.ErrorInfo).Msg("extraction failed, open the redirect url")
	}
}
