package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type fakeReader struct {
	messages []kafka.Message
	err      error
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.messages) == 0 {
		if f.err != nil {
			return kafka.Message{}, f.err
		}
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) Close() error { return nil }

func sampleEvent() models.VerificationEvent {
	return models.VerificationEvent{
		EventID:         "7d3c1c7e-4f0a-4d8e-9a55-1f6f1c2b9e01",
		WalletAddress:   "0xabc",
		Verified:        true,
		ContestIDs:      []int{20, 21, 22},
		ContractAddress: "0xBoxes",
		ChainID:         8453,
		CheckedAt:       time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestProducer_PublishVerification(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Writer: w, Topic: "boxes.wallet.verified"}

	require.NoError(t, p.PublishVerification(context.Background(), sampleEvent()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "0xabc", string(msg.Key))

	var decoded models.VerificationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	want := sampleEvent()
	assert.Equal(t, want.EventID, decoded.EventID)
	assert.Equal(t, want.ContestIDs, decoded.ContestIDs)
	assert.Equal(t, want.ChainID, decoded.ChainID)
	assert.True(t, decoded.Verified)
	assert.True(t, want.CheckedAt.Equal(decoded.CheckedAt))
	assert.True(t, want.CheckedAt.Equal(msg.Time))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishVerification_WriteError(t *testing.T) {
	p := &Producer{Writer: &fakeWriter{err: errors.New("leader not available")}}

	err := p.PublishVerification(context.Background(), sampleEvent())
	assert.EqualError(t, err, "leader not available")
}

func TestNewProducer_AsyncWithDeliveryLogging(t *testing.T) {
	var logs bytes.Buffer
	p := NewProducer([]string{"localhost:9092"}, "boxes.wallet.verified", logger.New(&logs))

	w, ok := p.Writer.(*kafka.Writer)
	require.True(t, ok)
	assert.True(t, w.Async)
	require.NotNil(t, w.Completion)

	w.Completion([]kafka.Message{{Key: []byte("0xabc")}}, errors.New("dial tcp: i/o timeout"))
	assert.Contains(t, logs.String(), "Failed to deliver 1 message(s) to boxes.wallet.verified")

	logs.Reset()
	w.Completion([]kafka.Message{{Key: []byte("0xabc")}}, nil)
	assert.Empty(t, logs.String())

	require.NoError(t, p.Close())
}

func TestConsumer_Start(t *testing.T) {
	good, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	var logs bytes.Buffer
	c := &Consumer{
		reader: &fakeReader{messages: []kafka.Message{
			{Value: []byte("not json"), Offset: 1},
			{Value: good, Offset: 2},
		}},
		logger: logger.New(&logs),
	}

	ctx, cancel := context.WithCancel(context.Background())
	var got []models.VerificationEvent
	err = c.Start(ctx, func(e models.VerificationEvent) {
		got = append(got, e)
		cancel()
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xabc", got[0].WalletAddress)
	assert.Contains(t, logs.String(), "offset 1")
}

func TestConsumer_Start_ReadError(t *testing.T) {
	c := &Consumer{
		reader: &fakeReader{err: errors.New("broker gone")},
		logger: logger.New(&bytes.Buffer{}),
	}

	err := c.Start(context.Background(), func(models.VerificationEvent) {})
	assert.ErrorContains(t, err, "broker gone")
}

func TestEnsureTopicsExist_NoBrokers(t *testing.T) {
	err := EnsureTopicsExist(nil, []string{"boxes.wallet.verified"}, logger.New(&bytes.Buffer{}))
	assert.Error(t, err)
}
