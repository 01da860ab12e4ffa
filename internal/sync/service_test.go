package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzhuang/anobii-goodreads-sync/internal/cache"
	"github.com/tzhuang/anobii-goodreads-sync/internal/catalog"
	"github.com/tzhuang/anobii-goodreads-sync/internal/goodreads"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// fakeClient scripts per-ISBN responses and records every call.
type fakeClient struct {
	createResults map[string]goodreads.CreateResult
	createErrs    map[string]error
	updateErrs    map[string]error

	createCalls []string
	updateCalls []string
}

func (f *fakeClient) CreateBook(_ context.Context, c models.CreateCandidate) (goodreads.CreateResult, error) {
	f.createCalls = append(f.createCalls, c.ISBN13)
	if err, ok := f.createErrs[c.ISBN13]; ok {
		return goodreads.CreateResult{Submitted: true}, err
	}
	return f.createResults[c.ISBN13], nil
}

func (f *fakeClient) UpdateReadingDates(_ context.Context, e models.ProgressEntry, _ bool) error {
	f.updateCalls = append(f.updateCalls, e.ISBN13)
	return f.updateErrs[e.ISBN13]
}

// fakePauser counts delays instead of sleeping. It surfaces context
// cancellation the way the real Waiter does.
type fakePauser struct {
	full  int
	short int
}

func (p *fakePauser) Wait(ctx context.Context) error      { p.full++; return ctx.Err() }
func (p *fakePauser) WaitShort(ctx context.Context) error { p.short++; return ctx.Err() }

func instantWaiter() *fakePauser {
	return &fakePauser{}
}

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// candidate builds a record whose ISBNs have the right lengths, which is
// all classification checks.
func candidate(n int) models.CreateCandidate {
	return models.CreateCandidate{
		Title:  fmt.Sprintf("Book %d", n),
		Author: "Some Author",
		ISBN10: fmt.Sprintf("%010d", n),
		ISBN13: fmt.Sprintf("%013d", n),
	}
}

func TestRunAddCreatesMissingBooks(t *testing.T) {
	c1, c2 := candidate(1), candidate(2)
	client := &fakeClient{
		createResults: map[string]goodreads.CreateResult{
			c1.ISBN13: {URL: "https://example.com/book/show/1", Submitted: true},
			c2.ISBN13: {Duplicate: true, Submitted: true},
		},
	}
	store := openStore(t)
	pauser := instantWaiter()
	svc := New(client, store, pauser, Options{})

	summary, err := svc.RunAdd(context.Background(),
		[]models.CreateCandidate{c1, c2}, catalog.NewIndex())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 0, summary.Errored)
	assert.Equal(t, 2, pauser.full, "every submission is followed by a full delay")

	// Both resolved records are flagged as done.
	for _, isbn := range []string{c1.ISBN13, c2.ISBN13} {
		flag, ok, err := store.Get(isbn)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, cache.FlagSuccess, flag)
	}
}

func TestRunAddSkipsPresentAndIncomplete(t *testing.T) {
	present := candidate(1)
	incomplete := candidate(2)
	incomplete.ISBN13 = ""

	index := catalog.NewIndex()
	index.Add(present.ISBN13)

	client := &fakeClient{}
	svc := New(client, nil, instantWaiter(), Options{})

	summary, err := svc.RunAdd(context.Background(),
		[]models.CreateCandidate{present, incomplete}, index)
	require.NoError(t, err)

	assert.Empty(t, client.createCalls, "neither record should reach the network")
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, models.OutcomePresent, summary.Outcomes[0].Kind)
	assert.Equal(t, models.OutcomeSkipped, summary.Outcomes[1].Kind)
	assert.Equal(t, "incomplete data", summary.Outcomes[1].Reason)
}

func TestRunAddSecondRunProcessesNothing(t *testing.T) {
	c1, c2 := candidate(1), candidate(2)
	client := &fakeClient{
		createResults: map[string]goodreads.CreateResult{
			c1.ISBN13: {Submitted: true},
			c2.ISBN13: {Submitted: true},
		},
	}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{})
	candidates := []models.CreateCandidate{c1, c2}

	_, err := svc.RunAdd(context.Background(), candidates, catalog.NewIndex())
	require.NoError(t, err)
	require.Len(t, client.createCalls, 2)

	summary, err := svc.RunAdd(context.Background(), candidates, catalog.NewIndex())
	require.NoError(t, err)
	assert.Len(t, client.createCalls, 2, "second run must not call the client")
	assert.Equal(t, 2, summary.Skipped)
}

func TestRunAddFatalErrorStopsBatch(t *testing.T) {
	c1, c2, c3 := candidate(1), candidate(2), candidate(3)
	client := &fakeClient{
		createResults: map[string]goodreads.CreateResult{c1.ISBN13: {Submitted: true}},
		createErrs: map[string]error{
			c2.ISBN13: fmt.Errorf("%w for %q", goodreads.ErrUnexpectedResponse, c2.Title),
		},
	}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{})

	summary, err := svc.RunAdd(context.Background(),
		[]models.CreateCandidate{c1, c2, c3}, catalog.NewIndex())
	require.Error(t, err)
	assert.ErrorIs(t, err, goodreads.ErrUnexpectedResponse)

	assert.Equal(t, []string{c1.ISBN13, c2.ISBN13}, client.createCalls)
	assert.Equal(t, 1, summary.Remaining)
	assert.Equal(t, 1, summary.Errored)

	// The failed record stays uncached so the next run can retry it after
	// investigation.
	_, ok, getErr := store.Get(c2.ISBN13)
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestRunAddTransportErrorIsPerRecord(t *testing.T) {
	c1, c2 := candidate(1), candidate(2)
	client := &fakeClient{
		createErrs:    map[string]error{c1.ISBN13: errors.New("connection reset")},
		createResults: map[string]goodreads.CreateResult{c2.ISBN13: {Submitted: true}},
	}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{})

	summary, err := svc.RunAdd(context.Background(),
		[]models.CreateCandidate{c1, c2}, catalog.NewIndex())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.Created)

	flag, ok, getErr := store.Get(c1.ISBN13)
	require.NoError(t, getErr)
	require.True(t, ok)
	assert.Equal(t, cache.FlagError, flag)
}

func TestRunAddListOnly(t *testing.T) {
	c1 := candidate(1)
	client := &fakeClient{}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{ListOnly: true})

	summary, err := svc.RunAdd(context.Background(),
		[]models.CreateCandidate{c1}, catalog.NewIndex())
	require.NoError(t, err)

	assert.Empty(t, client.createCalls)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, models.OutcomeListed, summary.Outcomes[0].Kind)

	_, ok, getErr := store.Get(c1.ISBN13)
	require.NoError(t, getErr)
	assert.False(t, ok, "list-only runs must not touch the cache")
}

func TestRunAddLimit(t *testing.T) {
	var candidates []models.CreateCandidate
	results := make(map[string]goodreads.CreateResult)
	for i := 1; i <= 5; i++ {
		c := candidate(i)
		candidates = append(candidates, c)
		results[c.ISBN13] = goodreads.CreateResult{Submitted: true}
	}
	client := &fakeClient{createResults: results}
	svc := New(client, nil, instantWaiter(), Options{Limit: 2})

	summary, err := svc.RunAdd(context.Background(), candidates, catalog.NewIndex())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 3, summary.Remaining)
	assert.Len(t, client.createCalls, 2)
}

func progressEntry(n int) models.ProgressEntry {
	return models.ProgressEntry{
		Title:     fmt.Sprintf("Book %d", n),
		ISBN13:    fmt.Sprintf("%013d", n),
		StartYear: "2021", StartMonth: "3", StartDay: "1",
	}
}

func TestRunUpdateDates(t *testing.T) {
	e1, e2 := progressEntry(1), progressEntry(2)
	client := &fakeClient{
		updateErrs: map[string]error{e2.ISBN13: errors.New("guard rejected: start")},
	}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{})

	summary, err := svc.RunUpdateDates(context.Background(),
		[]models.ProgressEntry{e1, e2})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Errored)

	flag, _, _ := store.Get(e1.ISBN13)
	assert.Equal(t, cache.FlagSuccess, flag)
	flag, _, _ = store.Get(e2.ISBN13)
	assert.Equal(t, cache.FlagError, flag)
}

func TestRunUpdateDatesErroredEntriesStayTerminal(t *testing.T) {
	e := progressEntry(1)
	store := openStore(t)
	require.NoError(t, store.Set(e.ISBN13, cache.FlagError))

	client := &fakeClient{}
	svc := New(client, store, instantWaiter(), Options{})
	summary, err := svc.RunUpdateDates(context.Background(), []models.ProgressEntry{e})
	require.NoError(t, err)
	assert.Empty(t, client.updateCalls, "errored entries must not retry by default")
	assert.Equal(t, 1, summary.Skipped)

	svc = New(client, store, instantWaiter(), Options{RetryErrored: true})
	summary, err = svc.RunUpdateDates(context.Background(), []models.ProgressEntry{e})
	require.NoError(t, err)
	assert.Len(t, client.updateCalls, 1, "retry-errored run reprocesses")
	assert.Equal(t, 1, summary.Updated)
}

func TestRunUpdateDatesWaitDependsOnFailureStage(t *testing.T) {
	lookup, scrape, guard := progressEntry(1), progressEntry(2), progressEntry(3)
	client := &fakeClient{
		updateErrs: map[string]error{
			lookup.ISBN13: fmt.Errorf("%w: no result for isbn", goodreads.ErrLookup),
			scrape.ISBN13: fmt.Errorf("%w: 9 date fields", goodreads.ErrScrape),
			guard.ISBN13:  errors.New("guard rejected: start"),
		},
	}
	pauser := instantWaiter()
	svc := New(client, openStore(t), pauser, Options{})

	_, err := svc.RunUpdateDates(context.Background(),
		[]models.ProgressEntry{lookup, scrape, guard})
	require.NoError(t, err)

	// Lookup and form-scrape failures back off briefly; anything that
	// reached the edit form paces with the full delay.
	assert.Equal(t, 2, pauser.short)
	assert.Equal(t, 1, pauser.full)
}

func TestRunUpdateDatesSecondRunProcessesNothing(t *testing.T) {
	entries := []models.ProgressEntry{progressEntry(1), progressEntry(2)}
	client := &fakeClient{}
	store := openStore(t)
	svc := New(client, store, instantWaiter(), Options{})

	_, err := svc.RunUpdateDates(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, client.updateCalls, 2)

	summary, err := svc.RunUpdateDates(context.Background(), entries)
	require.NoError(t, err)
	assert.Len(t, client.updateCalls, 2)
	assert.Equal(t, 2, summary.Skipped)
}

func TestRunUpdateDatesCancelledContext(t *testing.T) {
	entries := []models.ProgressEntry{progressEntry(1), progressEntry(2)}
	client := &fakeClient{}
	svc := New(client, nil, instantWaiter(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.RunUpdateDates(ctx, entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Remaining)
}
