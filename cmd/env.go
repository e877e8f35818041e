package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tradedoc-cli/internal/catalog"
	"github.com/sells-group/tradedoc-cli/internal/extract"
	"github.com/sells-group/tradedoc-cli/internal/ocr"
	"github.com/sells-group/tradedoc-cli/internal/store"
	anthropicpkg "github.com/sells-group/tradedoc-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "tradedoc.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path)
	}
	return catalog.Default()
}

// initResolver builds the field resolver. The model fallback layer is only
// wired when an API key is configured; without it unresolved fields stay
// unresolved.
func initResolver(cat *catalog.Catalog) *extract.Resolver {
	resolverCfg := extract.Config{
		AcceptA:          cfg.Extract.AcceptA,
		AcceptB:          cfg.Extract.AcceptB,
		AcceptC:          cfg.Extract.AcceptC,
		OCRAcceptance:    cfg.Extract.OCRAcceptance,
		OCRPenalty:       cfg.Extract.OCRPenalty,
		LayerCTimeout:    time.Duration(cfg.Extract.FallbackTimeoutSecs) * time.Second,
		FieldConcurrency: cfg.Extract.FieldConcurrency,
	}

	var fallback extract.Fallback
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		fallback = extract.NewAnthropicFallback(client, cfg.Anthropic.Model, cfg.Extract.FallbackRPS, cfg.Extract.FallbackBurst)
	}

	return extract.NewResolver(cat, resolverCfg, fallback)
}

func initAcquirer() (ocr.Acquirer, error) {
	return ocr.NewAcquirer(cfg.OCR)
}
