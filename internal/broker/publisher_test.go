package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IliaW/lead-hunter/internal/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  "leads",
		now:    func() time.Time { return time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	err := p.Publish(context.Background(), EventApplicationScored, "app-1", map[string]int{"score": 85})

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("app-1"), w.msgs[0].Key)
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)

	var got struct {
		Type       string         `json:"type"`
		OccurredAt time.Time      `json:"occurred_at"`
		Payload    map[string]int `json:"payload"`
	}
	require.NoError(t, jsoniter.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, EventApplicationScored, got.Type)
	assert.Equal(t, 85, got.Payload["score"])

	p.Close()
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newTestPublisher(&fakeWriter{err: errors.New("broker down")})

	err := p.Publish(context.Background(), EventLeadFound, "k", "v")
	assert.EqualError(t, err, "broker down")
}

func TestPublishLeads_OnlySignalsWithContacts(t *testing.T) {
	w := &fakeWriter{}
	report := model.NewLeadReport(model.HuntReport, time.Now(), []model.PageSignal{
		{URL: "https://a.com", Emails: []string{"a@a.com"}, Relevance: 10},
		{URL: "https://b.com"},
		{URL: "https://c.com", Phones: []string{"+34 612345678"}},
	})

	sent := PublishLeads(context.Background(), newTestPublisher(w), report)

	assert.Equal(t, 2, sent)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("https://a.com"), w.msgs[0].Key)
	assert.Equal(t, []byte("https://c.com"), w.msgs[1].Key)
}

func TestPublishLeads_Noop(t *testing.T) {
	report := model.NewLeadReport(model.HarvestReport, time.Now(), []model.PageSignal{
		{URL: "https://a.com", Emails: []string{"a@a.com"}},
	})
	assert.Equal(t, 1, PublishLeads(context.Background(), NoopPublisher{}, report))
}
