package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/resilience"
)

// Sink receives the ranked results of a run.
type Sink interface {
	Name() string
	Write(ctx context.Context, label string, results []ranker.RankedResult) error
}

// FileSink writes one "<label>_<queryId>.txt" file per query into Dir.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Write(ctx context.Context, label string, results []ranker.RankedResult) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return apperrors.IOFailure("creating output directory", s.Dir, err)
	}
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(s.Dir, FileName(label, r.QueryID))
		if err := writeResultFile(path, r, label); err != nil {
			return err
		}
	}
	return nil
}

// writeResultFile writes to a temporary file and renames it into place, so a
// reader never sees a partial run file.
func writeResultFile(path string, r ranker.RankedResult, label string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".result-*")
	if err != nil {
		return apperrors.IOFailure("creating result file", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Write(w, r, label); err != nil {
		tmp.Close()
		return apperrors.IOFailure("writing result file", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return apperrors.IOFailure("writing result file", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return apperrors.IOFailure("writing result file", path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.IOFailure("writing result file", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.IOFailure("renaming result file", path, err)
	}
	return nil
}

// MultiSink writes to every sink and joins their errors. Sinks other than
// files are retried with backoff unless the error is ErrInvalidInput, which
// no retry can fix.
type MultiSink struct {
	sinks   []Sink
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewMultiSink fans out to sinks. m may be nil.
func NewMultiSink(retry resilience.RetryConfig, m *metrics.Metrics, sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:   sinks,
		retry:   retry,
		metrics: m,
		logger:  slog.Default().With("component", "result-sink"),
	}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Write(ctx context.Context, label string, results []ranker.RankedResult) error {
	var errs []error
	for _, sink := range m.sinks {
		write := func() error {
			err := sink.Write(ctx, label, results)
			if errors.Is(err, apperrors.ErrInvalidInput) {
				return resilience.Permanent(err)
			}
			return err
		}
		var err error
		if _, local := sink.(*FileSink); local {
			err = write()
		} else {
			err = resilience.Retry(ctx, "sink:"+sink.Name(), m.retry, write)
		}
		if m.metrics != nil {
			m.metrics.ObserveSink(sink.Name(), err)
		}
		if err != nil {
			m.logger.Error("result sink failed", "sink", sink.Name(), "error", err)
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			continue
		}
		m.logger.Info("results written", "sink", sink.Name(), "queries", len(results), "system", label)
	}
	return errors.Join(errs...)
}
