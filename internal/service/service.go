// FILE: stripchess/internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/engine"
	"stripchess/internal/rules"
	"stripchess/internal/storage"
)

const (
	DefaultMaxDepth        = 8
	DefaultResultCacheSize = 4096
)

// Analysis sources
const (
	SourceCache  = "cache"
	SourceStore  = "store"
	SourceSearch = "search"
)

var ErrDepthExceeded = errors.New("requested depth exceeds the configured maximum")

type Config struct {
	Store *storage.Store // optional
	// CacheSize bounds the in-memory result cache; the move cache uses
	// engine.DefaultCacheSize
	CacheSize int
	MaxDepth  int
	Rules     rules.Rules
	Logger    zerolog.Logger
}

// Analysis is a completed search for one record at one depth
type Analysis struct {
	ID         string
	Record     string
	Depth      int
	Score      int
	Line       []board.Move
	Nodes      int
	Source     string
	CreatedUTC time.Time
}

type analysisKey struct {
	record string
	depth  int
}

// Service answers position queries and runs cached searches
type Service struct {
	store    *storage.Store
	moves    *engine.Cache
	results  *lru.Cache[analysisKey, Analysis]
	maxDepth int
	rules    rules.Rules
	log      zerolog.Logger
	searches atomic.Int64
}

// New creates a service instance with optional storage
func New(cfg Config) (*Service, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultResultCacheSize
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Rules == (rules.Rules{}) {
		cfg.Rules = rules.Default
	}

	moves, err := engine.NewCache(engine.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	results, err := lru.New[analysisKey, Analysis](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	return &Service{
		store:    cfg.Store,
		moves:    moves,
		results:  results,
		maxDepth: cfg.MaxDepth,
		rules:    cfg.Rules,
		log:      cfg.Logger.With().Str("component", "service").Logger(),
	}, nil
}

func (s *Service) MaxDepth() int {
	return s.maxDepth
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Searches returns the number of searches actually run
func (s *Service) Searches() int64 {
	return s.searches.Load()
}

// LegalMoves returns the position and its legal moves
func (s *Service) LegalMoves(record string) (board.Position, []board.Move, error) {
	p, err := board.ParseRecord(record)
	if err != nil {
		return p, nil, err
	}
	return p, s.moves.LegalMoves(p), nil
}

// Classify reports whether record is terminal under the service rules
func (s *Service) Classify(record string) (board.Position, core.Outcome, core.Reason, error) {
	p, err := board.ParseRecord(record)
	if err != nil {
		return p, core.OutcomeNone, core.ReasonNone, err
	}
	outcome, reason := s.rules.ClassifyWithMoves(p, s.moves.LegalMoves(p))
	return p, outcome, reason, nil
}

// Apply validates and plays m, then classifies the result
func (s *Service) Apply(record string, m board.Move) (board.Position, core.Outcome, core.Reason, error) {
	p, err := board.ParseRecord(record)
	if err != nil {
		return p, core.OutcomeNone, core.ReasonNone, err
	}
	next, err := rules.ApplyStrict(p, m)
	if err != nil {
		return p, core.OutcomeNone, core.ReasonNone, err
	}
	outcome, reason := s.rules.ClassifyWithMoves(next, s.moves.LegalMoves(next))
	return next, outcome, reason, nil
}

// AnalyzeRecord parses record and analyzes it
func (s *Service) AnalyzeRecord(ctx context.Context, record string, depth int) (*Analysis, error) {
	p, err := board.ParseRecord(record)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, p, depth)
}

// Analyze returns the search result for p at depth, consulting the result
// cache and the store before searching. New results are stored asynchronously.
func (s *Service) Analyze(ctx context.Context, p board.Position, depth int) (*Analysis, error) {
	if depth < 0 || depth > s.maxDepth {
		return nil, fmt.Errorf("%w: %d > %d", ErrDepthExceeded, depth, s.maxDepth)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := p.String()
	key := analysisKey{record: record, depth: depth}

	if a, ok := s.results.Get(key); ok {
		a.Source = SourceCache
		return &a, nil
	}

	if a := s.lookupStored(record, depth); a != nil {
		s.results.Add(key, *a)
		return a, nil
	}

	opts := engine.DefaultOptions(depth)
	opts.Rules = s.rules
	opts.Cache = s.moves

	start := time.Now()
	res := engine.Search(p, opts)
	s.searches.Add(1)

	a := Analysis{
		ID:         uuid.New().String(),
		Record:     record,
		Depth:      depth,
		Score:      res.Score,
		Line:       res.Line,
		Nodes:      res.Nodes,
		Source:     SourceSearch,
		CreatedUTC: time.Now().UTC(),
	}
	s.log.Debug().
		Str("record", record).
		Int("depth", depth).
		Int("score", res.Score).
		Int("nodes", res.Nodes).
		Dur("elapsed", time.Since(start)).
		Msg("search complete")

	s.results.Add(key, a)
	s.persist(a)
	return &a, nil
}

func (s *Service) lookupStored(record string, depth int) *Analysis {
	if s.store == nil || !s.store.IsHealthy() {
		return nil
	}
	rec, err := s.store.LookupAnalysis(record, depth)
	if err != nil {
		s.log.Warn().Err(err).Str("record", record).Msg("analysis lookup failed")
		return nil
	}
	if rec == nil {
		return nil
	}
	line, err := board.ParseLine(rec.Line)
	if err != nil {
		s.log.Warn().Err(err).Str("analysis", rec.AnalysisID).Msg("stored line is corrupt")
		return nil
	}
	return &Analysis{
		ID:         rec.AnalysisID,
		Record:     rec.Record,
		Depth:      rec.Depth,
		Score:      rec.Score,
		Line:       line,
		Nodes:      rec.Nodes,
		Source:     SourceStore,
		CreatedUTC: rec.CreatedUTC,
	}
}

func (s *Service) persist(a Analysis) {
	if s.store == nil {
		return
	}
	err := s.store.RecordAnalysis(storage.AnalysisRecord{
		AnalysisID: a.ID,
		Record:     a.Record,
		Depth:      a.Depth,
		Score:      a.Score,
		Line:       board.FormatLine(a.Line),
		Nodes:      a.Nodes,
		CreatedUTC: a.CreatedUTC,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("analysis", a.ID).Msg("failed to queue analysis write")
	}
}

// Close shuts down the store
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
