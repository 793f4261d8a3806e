// Package driver implements the Parallel Driver and Reference Builder:
// it fans out the File Processor and cache across every included file,
// then joins each file's unresolved references against the constant
// resolver into the final, deterministically sorted Reference list.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	rubyrefs "github.com/perryqh/ruby-references-go"
	"github.com/perryqh/ruby-references-go/internal/cache"
	"github.com/perryqh/ruby-references-go/internal/inflect"
	"github.com/perryqh/ruby-references-go/internal/process"
	"github.com/perryqh/ruby-references-go/internal/resolve"
)

// Run executes the full pipeline described by cfg: cache get/process/
// put across every included file in parallel, then Reference Builder
// joins against a once-built constant resolver. The result is sorted
// deterministically before being returned.
func Run(cfg *rubyrefs.Configuration) ([]rubyrefs.Reference, error) {
	slog.Info("driver.start", "files", len(cfg.IncludedFiles), "autoload_roots", len(cfg.AutoloadRoots))

	resolver, err := resolve.New(cfg.AutoloadRoots, cfg.Acronyms, primaryRubyExtension(cfg))
	if err != nil {
		return nil, fmt.Errorf("driver: build constant resolver: %w", err)
	}

	c := cache.New(cfg.CacheEnabled, cfg.CacheDirectory)

	opts := process.Options{
		RubyExtensions:               cfg.RubyExtensionsOrDefault(),
		RubySpecialFiles:             cfg.RubySpecialFilesOrDefault(),
		CustomAssociations:           cfg.CustomAssociations,
		Acronyms:                     inflect.NewAcronymSet(cfg.Acronyms),
		IncludeReferenceIsDefinition: cfg.IncludeReferenceIsDefinition,
	}

	processed := make([]rubyrefs.ProcessedFile, len(cfg.IncludedFiles))

	numWorkers := runtime.NumCPU()
	if numWorkers > len(cfg.IncludedFiles) {
		numWorkers = len(cfg.IncludedFiles)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(numWorkers)

	for i, path := range cfg.IncludedFiles {
		i, path := i, path
		g.Go(func() error {
			if ctx.Err() != nil {
				// An earlier file already failed; skip the rest.
				return nil
			}
			pf, err := processOne(path, c, opts)
			if err != nil {
				return err
			}
			processed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	slog.Info("driver.collect", "processed_files", len(processed))

	var references []rubyrefs.Reference
	for _, pf := range processed {
		for _, u := range pf.UnresolvedReferences {
			built, err := buildReferences(cfg, resolver, u, pf.AbsolutePath)
			if err != nil {
				return nil, fmt.Errorf("driver: %w", err)
			}
			references = append(references, built...)
		}
	}

	rubyrefs.SortReferences(references)
	return references, nil
}

// processOne runs cache get -> (miss) File Processor -> cache put for a
// single included file.
func processOne(path string, c cache.Cache, opts process.Options) (rubyrefs.ProcessedFile, error) {
	result, err := c.Get(path)
	if err != nil {
		return rubyrefs.ProcessedFile{}, fmt.Errorf("process %s: %w", path, err)
	}
	if result.Hit {
		return result.File, nil
	}

	pf, err := process.File(path, opts)
	if err != nil {
		return rubyrefs.ProcessedFile{}, err
	}

	if err := c.Write(result.Empty, pf); err != nil {
		return rubyrefs.ProcessedFile{}, fmt.Errorf("cache write %s: %w", path, err)
	}

	return pf, nil
}

func primaryRubyExtension(cfg *rubyrefs.Configuration) string {
	return cfg.RubyExtensionsOrDefault()[0]
}
