// Package sync drives the two reconciliation pipelines end to end: adding
// missing books and correcting reading dates. Everything runs on a single
// goroutine; the remote service sees one paced request stream.
package sync

import (
	"context"
	"errors"

	"github.com/tzhuang/anobii-goodreads-sync/internal/cache"
	"github.com/tzhuang/anobii-goodreads-sync/internal/catalog"
	"github.com/tzhuang/anobii-goodreads-sync/internal/goodreads"
	"github.com/tzhuang/anobii-goodreads-sync/internal/logger"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
	"github.com/tzhuang/anobii-goodreads-sync/internal/reconcile"
	"github.com/tzhuang/anobii-goodreads-sync/internal/util"
)

// RemoteClient is the slice of the catalog client the pipelines need.
type RemoteClient interface {
	CreateBook(ctx context.Context, candidate models.CreateCandidate) (goodreads.CreateResult, error)
	UpdateReadingDates(ctx context.Context, entry models.ProgressEntry, guardEnd bool) error
}

// Pauser spaces out remote calls. *util.Waiter is the production
// implementation.
type Pauser interface {
	Wait(ctx context.Context) error
	WaitShort(ctx context.Context) error
}

var _ Pauser = (*util.Waiter)(nil)

// Options control a run.
type Options struct {
	// ListOnly reports what would happen without touching the remote
	// catalog or the cache.
	ListOnly bool
	// Limit stops the run after this many successful writes (0 = no limit).
	Limit int
	// RetryErrored sends records with a cached error flag through again.
	// Without it every cached flag is terminal.
	RetryErrored bool
	// GuardEndDate lets strictly-earlier end dates through the guard.
	GuardEndDate bool
}

// Service orchestrates one run over a candidate or entry list.
type Service struct {
	client RemoteClient
	store  *cache.Store
	waiter Pauser
	opts   Options
	log    *logger.Logger
}

// New creates a Service. store may be nil, which disables idempotency
// tracking.
func New(client RemoteClient, store *cache.Store, waiter Pauser, opts Options) *Service {
	return &Service{
		client: client,
		store:  store,
		waiter: waiter,
		opts:   opts,
		log:    logger.Get().WithComponent("sync"),
	}
}

// RunAdd reconciles converted records against the identity index and
// creates every book that is missing remotely. An unrecognized creation
// response stops the whole batch; the summary's Remaining field reports how
// many records were left untouched.
func (s *Service) RunAdd(ctx context.Context, candidates []models.CreateCandidate, index *catalog.Index) (models.Summary, error) {
	var summary models.Summary
	successes := 0

	for i, candidate := range candidates {
		outcome := models.RecordOutcome{
			Title:  candidate.Title,
			Author: candidate.Author,
			ISBN10: candidate.ISBN10,
			ISBN13: candidate.ISBN13,
		}

		decision := reconcile.Classify(candidate, index, s.flagLookup(), s.opts.RetryErrored)
		switch decision.Action {
		case reconcile.ActionSkip:
			outcome.Kind = models.OutcomeSkipped
			outcome.Reason = decision.Reason
			summary.Add(outcome)
			continue
		case reconcile.ActionPresent:
			outcome.Kind = models.OutcomePresent
			summary.Add(outcome)
			continue
		}

		if s.opts.ListOnly {
			s.log.Info().
				Str("title", candidate.Title).
				Str("author", candidate.Author).
				Str("isbn13", candidate.ISBN13).
				Msg("Would create book")
			outcome.Kind = models.OutcomeListed
			summary.Add(outcome)
			continue
		}

		result, err := s.client.CreateBook(ctx, candidate)
		if err != nil {
			if errors.Is(err, goodreads.ErrUnexpectedResponse) {
				outcome.Kind = models.OutcomeError
				outcome.Reason = err.Error()
				summary.Add(outcome)
				summary.Remaining = len(candidates) - i - 1
				s.log.Error().Err(err).
					Int("remaining", summary.Remaining).
					Msg("Stopping batch on unrecognized creation response")
				return summary, err
			}
			s.setFlag(candidate.ISBN13, cache.FlagError)
			outcome.Kind = models.OutcomeError
			outcome.Reason = err.Error()
			summary.Add(outcome)
			if werr := s.pause(ctx, result.Submitted); werr != nil {
				summary.Remaining = len(candidates) - i - 1
				return summary, werr
			}
			continue
		}

		s.setFlag(candidate.ISBN13, cache.FlagSuccess)
		outcome.URL = result.URL
		if result.Duplicate {
			outcome.Kind = models.OutcomeDuplicate
		} else {
			outcome.Kind = models.OutcomeCreated
			successes++
		}
		summary.Add(outcome)

		if s.opts.Limit > 0 && successes >= s.opts.Limit {
			summary.Remaining = len(candidates) - i - 1
			s.log.Info().Int("limit", s.opts.Limit).Msg("Creation limit reached")
			break
		}

		if werr := s.pause(ctx, result.Submitted); werr != nil {
			summary.Remaining = len(candidates) - i - 1
			return summary, werr
		}
	}

	return summary, nil
}

// RunUpdateDates corrects the reading dates of every crawled entry not yet
// flagged in the cache. Failures are per-record; the run continues.
func (s *Service) RunUpdateDates(ctx context.Context, entries []models.ProgressEntry) (models.Summary, error) {
	var summary models.Summary
	successes := 0

	for i, entry := range entries {
		outcome := models.RecordOutcome{
			Title:  entry.Title,
			ISBN13: entry.ISBN13,
		}

		if flag, ok := s.flag(entry.ISBN13); ok && reconcile.Processed(flag, s.opts.RetryErrored) {
			outcome.Kind = models.OutcomeSkipped
			outcome.Reason = reconcile.ReasonProcessed
			summary.Add(outcome)
			continue
		}

		if s.opts.ListOnly {
			s.log.Info().Str("book", entry.String()).Msg("Would update reading dates")
			outcome.Kind = models.OutcomeListed
			summary.Add(outcome)
			continue
		}

		if err := s.client.UpdateReadingDates(ctx, entry, s.opts.GuardEndDate); err != nil {
			s.setFlag(entry.ISBN13, cache.FlagError)
			outcome.Kind = models.OutcomeError
			outcome.Reason = err.Error()
			summary.Add(outcome)
			// Failures before the edit form was reached never loaded the
			// remote service beyond a lookup; everything after it paces
			// with the full delay.
			full := !errors.Is(err, goodreads.ErrLookup) && !errors.Is(err, goodreads.ErrScrape)
			if werr := s.pause(ctx, full); werr != nil {
				summary.Remaining = len(entries) - i - 1
				return summary, werr
			}
			continue
		}

		s.setFlag(entry.ISBN13, cache.FlagSuccess)
		outcome.Kind = models.OutcomeUpdated
		summary.Add(outcome)
		successes++

		if s.opts.Limit > 0 && successes >= s.opts.Limit {
			summary.Remaining = len(entries) - i - 1
			s.log.Info().Int("limit", s.opts.Limit).Msg("Update limit reached")
			break
		}

		if werr := s.pause(ctx, true); werr != nil {
			summary.Remaining = len(entries) - i - 1
			return summary, werr
		}
	}

	return summary, nil
}

// pause sleeps between records. Records that never reached a form
// submission only get the short delay.
func (s *Service) pause(ctx context.Context, full bool) error {
	if full {
		return s.waiter.Wait(ctx)
	}
	return s.waiter.WaitShort(ctx)
}

// flag reads the cached idempotency flag, turning store errors into a miss.
func (s *Service) flag(isbn13 string) (string, bool) {
	if s.store == nil || isbn13 == "" {
		return "", false
	}
	flag, ok, err := s.store.Get(isbn13)
	if err != nil {
		s.log.Warn().Err(err).Str("isbn13", isbn13).Msg("Cache read failed")
		return "", false
	}
	return flag, ok
}

func (s *Service) flagLookup() reconcile.FlagLookup {
	if s.store == nil {
		return nil
	}
	return s.flag
}

func (s *Service) setFlag(isbn13, flag string) {
	if s.store == nil || isbn13 == "" {
		return
	}
	if err := s.store.Set(isbn13, flag); err != nil {
		s.log.Warn().Err(err).Str("isbn13", isbn13).Msg("Cache write failed")
	}
}
