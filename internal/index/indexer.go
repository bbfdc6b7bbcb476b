package index

import (
	"fmt"
	"log/slog"

	"diaggroups/internal/crawler"
	"diaggroups/internal/extractor"
	"diaggroups/internal/graph"
)

// Indexer orchestrates loading a definitions file and building its graph.
type Indexer struct {
	crawler   *crawler.Crawler
	extractor *extractor.Extractor
	logger    *slog.Logger
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler, e *extractor.Extractor, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{
		crawler:   c,
		extractor: e,
		logger:    logger,
	}
}

// BuildGraph loads path with its includes and builds the switch graph.
// The whole event stream is consumed before the graph is returned.
func (i *Indexer) BuildGraph(path string) (*graph.Graph, error) {
	file, err := i.crawler.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}

	b := graph.NewBuilder()
	stats := i.extractor.Walk(file, b)
	g := b.Graph()

	i.logger.Info("built switch graph",
		"file", path,
		"records", stats.Records,
		"switches", len(g.Switches()),
	)
	return g, nil
}
