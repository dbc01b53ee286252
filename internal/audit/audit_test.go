package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memStore struct {
	recs []Record
	err  error
}

func (m *memStore) SaveAuditRecord(_ context.Context, rec Record) error {
	m.recs = append(m.recs, rec)
	return m.err
}

func TestMulti_SurvivesPanickingSink(t *testing.T) {
	var got []Record
	m := Multi{
		SinkFunc(func(Record) { panic("boom") }),
		SinkFunc(func(r Record) { got = append(got, r) }),
		nil,
	}
	assert.NotPanics(t, func() { m.Record(Record{ExecutionID: "x"}) })
	assert.Len(t, got, 1)
}

func TestSafe(t *testing.T) {
	assert.True(t, Safe(Discard, Record{}))
	assert.False(t, Safe(nil, Record{}))
	assert.False(t, Safe(SinkFunc(func(Record) { panic("x") }), Record{}))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	NewLogSink(logger).Record(Record{ExecutionID: "e1", Goal: "g", Errors: []string{"bad"}})
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "execution_id=e1")
	assert.Contains(t, out, "component=audit")
}

func TestStoreSink(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	var buf bytes.Buffer
	sink := NewStoreSink(store, slog.New(slog.NewTextHandler(&buf, nil)))
	assert.NotPanics(t, func() { sink.Record(Record{ExecutionID: "e2"}) })
	assert.Len(t, store.recs, 1)
	assert.Contains(t, buf.String(), "disk full")
}
