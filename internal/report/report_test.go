package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []ranker.RankedResult {
	return []ranker.RankedResult{
		{QueryID: 7, Results: []ranker.ScoredDoc{
			{DocID: 12, Score: 3.5},
			{DocID: 4, Score: -0.25},
		}},
		{QueryID: 8, Results: []ranker.ScoredDoc{}},
	}
}

func TestFormat(t *testing.T) {
	got := Format(sampleResults()[0], "BM25")
	assert.Equal(t, "7 Q0 12 1 3.5 BM25\n7 Q0 4 2 -0.25 BM25\n", got)
	assert.Equal(t, "", Format(sampleResults()[1], "BM25"))
}

func TestLinesRankFromOne(t *testing.T) {
	lines := Lines(sampleResults()[0], "TFIDF")
	require.Len(t, lines, 2)
	assert.Equal(t, Line{QueryID: 7, DocID: 12, Rank: 1, Score: 3.5, SystemLabel: "TFIDF"}, lines[0])
	assert.Equal(t, 2, lines[1].Rank)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "BM25_7.txt", FileName("BM25", 7))
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewFileSink(dir)

	require.NoError(t, sink.Write(context.Background(), "BM25", sampleResults()))

	raw, err := os.ReadFile(filepath.Join(dir, "BM25_7.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"7", "Q0", "12", "1", "3.5", "BM25"}, strings.Fields(lines[0]))

	raw, err = os.ReadFile(filepath.Join(dir, "BM25_8.txt"))
	require.NoError(t, err)
	assert.Empty(t, raw)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileSinkReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BM25_7.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale line that is longer than the new run\n"), 0644))

	require.NoError(t, NewFileSink(dir).Write(context.Background(), "BM25", sampleResults()[:1]))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Format(sampleResults()[0], "BM25"), string(raw))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

type fakePublisher struct {
	events []kafka.Event
	fails  int
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, events...)
	return nil
}

func TestKafkaSinkPublishesPerQuery(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewKafkaSink(pub).Write(context.Background(), "BM25", sampleResults()))

	require.Len(t, pub.events, 2)
	assert.Equal(t, "7", pub.events[0].Key)
	ev, ok := pub.events[0].Value.(RunEvent)
	require.True(t, ok)
	assert.Equal(t, "BM25", ev.SystemLabel)
	assert.Len(t, ev.Lines, 2)
}

func TestKafkaSinkEmpty(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewKafkaSink(pub).Write(context.Background(), "BM25", nil))
	assert.Empty(t, pub.events)
}

type failingSink struct{ calls int }

func (f *failingSink) Name() string { return "broken" }

func (f *failingSink) Write(context.Context, string, []ranker.RankedResult) error {
	f.calls++
	return errors.New("down")
}

func TestMultiSinkRetriesAndJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	pub := &fakePublisher{fails: 1}
	broken := &failingSink{}
	retry := resilience.RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	multi := NewMultiSink(retry, metrics.New(nil), NewFileSink(dir), NewKafkaSink(pub), broken)
	err := multi.Write(context.Background(), "BM25", sampleResults())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink broken")
	assert.NotContains(t, err.Error(), "sink kafka")
	assert.Equal(t, 2, broken.calls)
	assert.Len(t, pub.events, 2)
	assert.FileExists(t, filepath.Join(dir, "BM25_7.txt"))
}

type rejectingSink struct{ calls int }

func (r *rejectingSink) Name() string { return "rejecting" }

func (r *rejectingSink) Write(context.Context, string, []ranker.RankedResult) error {
	r.calls++
	return fmt.Errorf("%w: empty system label", apperrors.ErrInvalidInput)
}

func TestMultiSinkDoesNotRetryInvalidInput(t *testing.T) {
	rejecting := &rejectingSink{}
	retry := resilience.RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	err := NewMultiSink(retry, nil, rejecting).Write(context.Background(), "", sampleResults())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 1, rejecting.calls)
}
