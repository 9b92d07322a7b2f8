package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/assetiq/backend/pkg/queue"
)

type mockReminderSink struct {
	sent map[uuid.UUID]time.Time
}

func (m *mockReminderSink) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	if m.sent == nil {
		m.sent = make(map[uuid.UUID]time.Time)
	}
	m.sent[id] = at
	return nil
}

func reminderJob(t *testing.T, payload queue.ReminderEmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &queue.Job{
		ID:        uuid.New().String(),
		Type:      queue.JobTypeReminderEmail,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
}

func TestProcessMarksReminderSent(t *testing.T) {
	sink := &mockReminderSink{}
	d := NewReminderDispatcher(sink, nil, nil)

	payload := queue.ReminderEmailPayload{
		ReminderID:     uuid.New(),
		OrgID:          uuid.New(),
		RecipientEmail: "it@example.com",
		Subject:        "Device CB-001 has gone quiet",
	}
	if err := d.Process(context.Background(), reminderJob(t, payload)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.sent[payload.ReminderID]; !ok {
		t.Error("reminder not marked sent")
	}
}

func TestProcessUnknownJobType(t *testing.T) {
	d := NewReminderDispatcher(&mockReminderSink{}, nil, nil)
	job := &queue.Job{ID: "x", Type: "mystery"}
	if err := d.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}

func TestProcessBadPayload(t *testing.T) {
	d := NewReminderDispatcher(&mockReminderSink{}, nil, nil)
	job := &queue.Job{ID: "x", Type: queue.JobTypeReminderEmail, Payload: []byte("{")}
	if err := d.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
