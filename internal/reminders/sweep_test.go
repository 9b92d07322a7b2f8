package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/queue"
)

type mockOrgSource struct {
	orgs []models.Organization
	err  error
}

func (m *mockOrgSource) List(context.Context) ([]models.Organization, error) {
	return m.orgs, m.err
}

type mockDeviceSource struct {
	stale  map[uuid.UUID][]models.Device
	failed map[uuid.UUID]error
}

func (m *mockDeviceSource) ListStale(_ context.Context, orgID uuid.UUID, _ time.Time) ([]models.Device, error) {
	if err := m.failed[orgID]; err != nil {
		return nil, err
	}
	return m.stale[orgID], nil
}

type mockOffboardingSource struct {
	open       map[uuid.UUID][]models.OffboardingEvent
	increments map[uuid.UUID]int
}

func (m *mockOffboardingSource) ListOpenUnreturned(_ context.Context, orgID uuid.UUID) ([]models.OffboardingEvent, error) {
	return m.open[orgID], nil
}

func (m *mockOffboardingSource) IncrementReminders(_ context.Context, _, id uuid.UUID, _ time.Time) error {
	if m.increments == nil {
		m.increments = make(map[uuid.UUID]int)
	}
	m.increments[id]++
	return nil
}

type mockReminderStore struct {
	created []*models.Reminder
}

func (m *mockReminderStore) Create(_ context.Context, rem *models.Reminder) error {
	rem.ID = uuid.New()
	if rem.Status == "" {
		rem.Status = models.ReminderPending
	}
	m.created = append(m.created, rem)
	return nil
}

type mockNotifier struct {
	sent []queue.ReminderEmailPayload
}

func (m *mockNotifier) EnqueueReminderEmail(_ context.Context, p queue.ReminderEmailPayload) error {
	m.sent = append(m.sent, p)
	return nil
}

func newOrg(threshold int) models.Organization {
	return models.Organization{ID: uuid.New(), Name: "Org", ThresholdDays: threshold}
}

func TestSweepCounts(t *testing.T) {
	org := newOrg(30)
	staleDevice := models.Device{ID: uuid.New(), OrgID: org.ID, AssetTag: "CB-001"}
	event := models.OffboardingEvent{ID: uuid.New(), OrgID: org.ID, UserEmail: "leaver@example.org"}

	orgs := &mockOrgSource{orgs: []models.Organization{org}}
	devs := &mockDeviceSource{stale: map[uuid.UUID][]models.Device{org.ID: {staleDevice}}}
	offb := &mockOffboardingSource{open: map[uuid.UUID][]models.OffboardingEvent{org.ID: {event}}}
	store := &mockReminderStore{}
	notifier := &mockNotifier{}

	s := NewSweeper(orgs, devs, offb, store, notifier, nil)
	report, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.StaleReminders != 1 || report.OffboardingReminders != 1 || report.Total != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.OrgErrors != 0 {
		t.Errorf("org errors = %d", report.OrgErrors)
	}
	if len(store.created) != 2 {
		t.Fatalf("reminder rows = %d, want 2", len(store.created))
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("emails enqueued = %d, want 2", len(notifier.sent))
	}

	staleRem := store.created[0]
	if staleRem.Type != models.ReminderTypeStaleDevice || staleRem.DeviceID == nil || *staleRem.DeviceID != staleDevice.ID {
		t.Errorf("stale reminder = %+v", staleRem)
	}
	if staleRem.Status != models.ReminderPending {
		t.Errorf("reminder inserted as %q before dispatch", staleRem.Status)
	}
	offbRem := store.created[1]
	if offbRem.Type != models.ReminderTypeOffboarding || offbRem.UserEmail != event.UserEmail {
		t.Errorf("offboarding reminder = %+v", offbRem)
	}
	if offbRem.DeviceID != nil {
		t.Error("offboarding reminder has a device id")
	}
	if offb.increments[event.ID] != 1 {
		t.Errorf("reminders_sent incremented %d times", offb.increments[event.ID])
	}
}

func TestSweepResendsEveryRun(t *testing.T) {
	org := newOrg(30)
	event := models.OffboardingEvent{ID: uuid.New(), OrgID: org.ID, UserEmail: "leaver@example.org"}

	orgs := &mockOrgSource{orgs: []models.Organization{org}}
	devs := &mockDeviceSource{}
	offb := &mockOffboardingSource{open: map[uuid.UUID][]models.OffboardingEvent{org.ID: {event}}}
	store := &mockReminderStore{}
	notifier := &mockNotifier{}

	s := NewSweeper(orgs, devs, offb, store, notifier, nil)
	for i := 0; i < 3; i++ {
		if _, err := s.Sweep(context.Background()); err != nil {
			t.Fatalf("sweep %d: %v", i, err)
		}
	}
	if offb.increments[event.ID] != 3 {
		t.Errorf("reminders_sent = %d, want 3", offb.increments[event.ID])
	}
	if len(notifier.sent) != 3 {
		t.Errorf("emails enqueued = %d, want 3", len(notifier.sent))
	}
}

func TestSweepIsolatesOrgFailures(t *testing.T) {
	bad := newOrg(30)
	good := newOrg(30)
	staleDevice := models.Device{ID: uuid.New(), OrgID: good.ID, AssetTag: "CB-002"}

	orgs := &mockOrgSource{orgs: []models.Organization{bad, good}}
	devs := &mockDeviceSource{
		stale:  map[uuid.UUID][]models.Device{good.ID: {staleDevice}},
		failed: map[uuid.UUID]error{bad.ID: errors.New("connection reset")},
	}
	offb := &mockOffboardingSource{}
	store := &mockReminderStore{}
	notifier := &mockNotifier{}

	s := NewSweeper(orgs, devs, offb, store, notifier, nil)
	report, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OrgErrors != 1 {
		t.Errorf("org errors = %d, want 1", report.OrgErrors)
	}
	if report.StaleReminders != 1 {
		t.Errorf("healthy org not processed: %+v", report)
	}
}

func TestSweepListFailure(t *testing.T) {
	orgs := &mockOrgSource{err: errors.New("db down")}
	s := NewSweeper(orgs, &mockDeviceSource{}, &mockOffboardingSource{}, &mockReminderStore{}, &mockNotifier{}, nil)
	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected error when organization listing fails")
	}
}
