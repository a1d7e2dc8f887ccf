// Package pipeline runs corpus scans with a bounded worker pool.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/corpuslint/internal/corpus"
	"github.com/dgallion1/corpuslint/internal/loader"
	"github.com/dgallion1/corpuslint/internal/parser"
	"github.com/dgallion1/corpuslint/internal/report"
)

// Scanner parses every file in a corpus. Files are independent, so they
// are fanned out to workers and merged afterwards; the final report is
// sorted by path, which keeps output bytes independent of scheduling.
type Scanner struct {
	workers      int
	maxFileBytes int64
	log          *slog.Logger
	stats        *ScanStats
}

// Run is the outcome of one corpus scan.
type Run struct {
	ID        string         `json:"run_id"`
	Root      string         `json:"root"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"-"`
	Report    *report.Report `json:"report"`
}

func NewScanner(workers int, maxFileBytes int64, log *slog.Logger, stats *ScanStats) *Scanner {
	if workers <= 0 {
		workers = 4
	}
	return &Scanner{
		workers:      workers,
		maxFileBytes: maxFileBytes,
		log:          log,
		stats:        stats,
	}
}

// Scan walks root and parses every supported file. Per-file problems
// degrade that file's entry; only a bad root fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*Run, error) {
	started := time.Now()

	paths, err := loader.Walk(root)
	if err != nil {
		return nil, err
	}

	jobs := make(chan string)
	results := make(chan *corpus.Document, len(paths))

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case rel, ok := <-jobs:
					if !ok {
						return
					}
					results <- s.scanFile(root, rel)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rel := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- rel:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	docs := make([]*corpus.Document, 0, len(paths))
	for doc := range results {
		docs = append(docs, doc)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Report:    report.Build(docs),
	}
	s.log.Info("scan complete",
		"run_id", run.ID,
		"documents", run.Report.Totals.Documents,
		"warnings", run.Report.Totals.Warnings,
		"duration_ms", run.Duration.Milliseconds(),
	)
	return run, nil
}

// scanFile parses one file. It always returns a document; decode and
// parse failures come back as a skipped document with a warning attached.
func (s *Scanner) scanFile(root, rel string) *corpus.Document {
	fileStart := time.Now()
	defer func() {
		if s.stats != nil {
			s.stats.Record(time.Since(fileStart).Milliseconds())
		}
	}()

	text, err := loader.ReadFile(root, rel, s.maxFileBytes)
	if err != nil {
		s.log.Warn("skipping file", "path", rel, "error", err)
		return skippedDocument(rel, err.Error())
	}

	p, err := parser.ForFile(rel)
	if err != nil {
		s.log.Warn("skipping file", "path", rel, "error", err)
		return skippedDocument(rel, err.Error())
	}

	doc, err := p.Parse(strings.NewReader(text), rel)
	if err != nil {
		s.log.Warn("parse failed", "path", rel, "error", err)
		return skippedDocument(rel, err.Error())
	}
	doc.ContentHash = parser.HashText(text)
	return doc
}

func skippedDocument(rel, reason string) *corpus.Document {
	return &corpus.Document{
		Path:   rel,
		Status: corpus.StatusSkipped,
		Warnings: []corpus.Warning{{
			Code:    corpus.WarnDecodeError,
			Message: reason,
		}},
	}
}
