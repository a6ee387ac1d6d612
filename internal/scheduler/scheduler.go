// Package scheduler polls the mailbox on a cron spec and keeps the latest
// postings in memory for the HTTP API.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/acavemancodes/Snistplacements/internal/mailbox"
	"github.com/acavemancodes/Snistplacements/internal/types"
)

// Analyzer turns a batch of emails into postings.
type Analyzer interface {
	AnalyzeEmails(ctx context.Context, emails []types.Email) ([]types.JobPosting, error)
}

// Snapshot is the result of the last completed poll.
type Snapshot struct {
	Postings  []types.JobPosting `json:"placements"`
	Emails    int                `json:"emailsScanned"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Error     string             `json:"error,omitempty"`
}

// Store holds the latest snapshot. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{snap: Snapshot{Postings: []types.JobPosting{}}}
}

// Set replaces the postings and clears any recorded error.
func (s *Store) Set(postings []types.JobPosting, emails int, at time.Time) {
	if postings == nil {
		postings = []types.JobPosting{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Postings: postings, Emails: emails, UpdatedAt: at}
}

// Fail records a failed poll and keeps the previous postings.
func (s *Store) Fail(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Error = err.Error()
	s.snap.UpdatedAt = at
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Postings = append([]types.JobPosting(nil), s.snap.Postings...)
	return snap
}

// Poller wraps robfig/cron and runs fetch→analyze→store cycles.
type Poller struct {
	cron     *cron.Cron
	spec     string // cron spec, e.g. "@every 30m"
	source   mailbox.Source
	analyzer Analyzer
	store    *Store
	logger   *zap.Logger
	now      func() time.Time
}

func New(spec string, source mailbox.Source, analyzer Analyzer, store *Store, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Poller{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:     spec,
		source:   source,
		analyzer: analyzer,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the job and starts the scheduler. One poll also runs
// immediately so the store is filled without waiting for the first tick.
func (p *Poller) Start(ctx context.Context) error {
	if _, err := p.cron.AddFunc(p.spec, func() { _ = p.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", p.spec, err)
	}

	p.cron.Start()
	p.logger.Info("poller started", zap.String("spec", p.spec))

	go func() { _ = p.RunOnce(ctx) }()
	return nil
}

// Stop stops the scheduler and waits for a running poll to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info("poller stopped")
}

// RunOnce fetches one batch and replaces the snapshot. A failed fetch is
// recorded in the snapshot and returned.
func (p *Poller) RunOnce(ctx context.Context) error {
	start := p.now()
	emails, err := p.source.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("fetch mail: %w", err)
		p.store.Fail(err, p.now())
		p.logger.Error("poll failed", zap.Error(err))
		return err
	}

	postings, err := p.analyzer.AnalyzeEmails(ctx, emails)
	if err != nil {
		p.store.Fail(err, p.now())
		p.logger.Error("poll failed", zap.Error(err))
		return err
	}

	p.store.Set(postings, len(emails), p.now())
	p.logger.Info("poll complete",
		zap.Int("emails", len(emails)),
		zap.Int("postings", len(postings)),
		zap.Duration("elapsed", p.now().Sub(start)))
	return nil
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
