package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/acavemancodes/Snistplacements/internal/analyzer"
	"github.com/acavemancodes/Snistplacements/internal/extractor"
	"github.com/acavemancodes/Snistplacements/internal/types"
)

type fakeSource struct {
	emails []types.Email
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context) ([]types.Email, error) {
	f.calls.Add(1)
	return f.emails, f.err
}

func clock() time.Time { return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC) }

func newAnalyzer() *analyzer.JobAnalyzer {
	return analyzer.NewJobAnalyzer(extractor.New(extractor.WithClock(clock)), nil, nil, 2)
}

func inbox() []types.Email {
	return []types.Email{
		{MessageID: "a", Subject: "Infosys campus drive", BodyText: "Company: Infosys\nSalary: 3.6 LPA\nLast date: 2026-02-01"},
		{MessageID: "b", Subject: "Library notice", BodyText: "Please return your books."},
	}
}

func TestRunOnce(t *testing.T) {
	src := &fakeSource{emails: inbox()}
	store := NewStore()
	p := New("@every 1h", src, newAnalyzer(), store, nil)
	p.now = clock

	require.NoError(t, p.RunOnce(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Postings, 1)
	assert.Equal(t, "Infosys", snap.Postings[0].Company)
	assert.Equal(t, 2, snap.Emails)
	assert.Equal(t, clock(), snap.UpdatedAt)
	assert.Empty(t, snap.Error)
}

func TestRunOnce_FetchErrorKeepsPrevious(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	src := &fakeSource{emails: inbox()}
	store := NewStore()
	p := New("@every 1h", src, newAnalyzer(), store, zap.New(core))

	require.NoError(t, p.RunOnce(context.Background()))
	src.err = errors.New("connection reset")
	err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "fetch mail")

	snap := store.Snapshot()
	assert.Len(t, snap.Postings, 1)
	assert.Contains(t, snap.Error, "connection reset")
	assert.Equal(t, 1, logs.FilterMessage("poll failed").Len())

	src.err = nil
	require.NoError(t, p.RunOnce(context.Background()))
	assert.Empty(t, store.Snapshot().Error)
}

func TestStart_RunsImmediately(t *testing.T) {
	src := &fakeSource{emails: inbox()}
	store := NewStore()
	p := New("@every 1h", src, newAnalyzer(), store, nil)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.Eventually(t, func() bool {
		return len(store.Snapshot().Postings) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestStart_InvalidSpec(t *testing.T) {
	p := New("every now and then", &fakeSource{}, newAnalyzer(), NewStore(), nil)
	err := p.Start(context.Background())
	assert.ErrorContains(t, err, "schedule")
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store := NewStore()
	assert.NotNil(t, store.Snapshot().Postings)

	store.Set([]types.JobPosting{{Company: "TCS"}}, 1, clock())
	snap := store.Snapshot()
	snap.Postings[0].Company = "changed"
	assert.Equal(t, "TCS", store.Snapshot().Postings[0].Company)
}

func TestStore_Concurrent(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set([]types.JobPosting{{Company: "Wipro"}}, 1, time.Now())
		}()
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, store.Snapshot().Postings, 1)
}
