package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	messages, err := Encode([]Event{
		{Key: "7", Value: map[string]int{"query_id": 7}},
		{Key: "8", Value: []int{1, 2}},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, []byte("7"), messages[0].Key)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(messages[0].Value, &decoded))
	assert.Equal(t, 7, decoded["query_id"])
	assert.JSONEq(t, `[1,2]`, string(messages[1].Value))
	require.Len(t, messages[1].Headers, 1)
	assert.Equal(t, ContentTypeHeader, messages[1].Headers[0].Key)
	assert.Equal(t, "application/json", string(messages[1].Headers[0].Value))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := Encode([]Event{{Key: "bad", Value: make(chan int)}})
	assert.ErrorContains(t, err, `"bad"`)
}

func TestPublishBatchEmptyIsNoop(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}}, "results")
	defer p.Close()
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
}
