package report

import (
	"context"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/kafka"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// RunEvent is the payload published for one query.
type RunEvent struct {
	SystemLabel string `json:"system"`
	QueryID     int    `json:"query_id"`
	Lines       []Line `json:"lines"`
}

// KafkaSink publishes one RunEvent per query keyed by query id.
type KafkaSink struct {
	publisher Publisher
}

func NewKafkaSink(p Publisher) *KafkaSink {
	return &KafkaSink{publisher: p}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, label string, results []ranker.RankedResult) error {
	if len(results) == 0 {
		return nil
	}
	events := make([]kafka.Event, 0, len(results))
	for _, r := range results {
		events = append(events, kafka.Event{
			Key: strconv.Itoa(r.QueryID),
			Value: RunEvent{
				SystemLabel: label,
				QueryID:     r.QueryID,
				Lines:       Lines(r, label),
			},
		})
	}
	return s.publisher.PublishBatch(ctx, events)
}
