package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/queue"
)

// staleRecipient is where stale-device notices go.
// TODO: target the device's assigned user instead of the IT alias.
const staleRecipient = "it@example.com"

// OrgSource lists all organizations for the sweep.
type OrgSource interface {
	List(ctx context.Context) ([]models.Organization, error)
}

// DeviceSource finds devices not seen since the cutoff. A device that has
// never checked in counts as stale.
type DeviceSource interface {
	ListStale(ctx context.Context, orgID uuid.UUID, cutoff time.Time) ([]models.Device, error)
}

// OffboardingSource finds open offboarding events with devices outstanding
// and records each nudge.
type OffboardingSource interface {
	ListOpenUnreturned(ctx context.Context, orgID uuid.UUID) ([]models.OffboardingEvent, error)
	IncrementReminders(ctx context.Context, orgID, id uuid.UUID, sentAt time.Time) error
}

// ReminderStore persists reminder rows.
type ReminderStore interface {
	Create(ctx context.Context, rem *models.Reminder) error
}

// Notifier hands reminder emails to the background dispatcher.
type Notifier interface {
	EnqueueReminderEmail(ctx context.Context, payload queue.ReminderEmailPayload) error
}

// Report is the outcome of one sweep run.
type Report struct {
	StaleReminders       int `json:"staleReminders"`
	OffboardingReminders int `json:"offboardingReminders"`
	Total                int `json:"total"`
	OrgErrors            int `json:"orgErrors"`
}

// Sweeper runs the periodic reminder job: stale-device notices and
// offboarding nudges for every organization. Reminders re-send on every run;
// there is no cooldown.
type Sweeper struct {
	orgs        OrgSource
	devices     DeviceSource
	offboarding OffboardingSource
	store       ReminderStore
	notifier    Notifier
	logger      *zap.Logger
}

// NewSweeper creates a reminder sweeper.
func NewSweeper(orgs OrgSource, devices DeviceSource, offboarding OffboardingSource, store ReminderStore, notifier Notifier, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{orgs: orgs, devices: devices, offboarding: offboarding, store: store, notifier: notifier, logger: logger}
}

// Sweep processes every organization. One organization's failure is logged
// and counted; the remaining organizations are still processed.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	now := time.Now().UTC()
	report := &Report{}
	for _, org := range orgs {
		if err := s.sweepOrg(ctx, org, now, report); err != nil {
			report.OrgErrors++
			s.logger.Error("reminder sweep failed for organization",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
		}
	}
	report.Total = report.StaleReminders + report.OffboardingReminders
	s.logger.Info("reminder sweep finished",
		zap.Int("stale", report.StaleReminders),
		zap.Int("offboarding", report.OffboardingReminders),
		zap.Int("org_errors", report.OrgErrors),
	)
	return report, nil
}

func (s *Sweeper) sweepOrg(ctx context.Context, org models.Organization, now time.Time, report *Report) error {
	threshold := org.ThresholdDays
	if threshold <= 0 {
		threshold = models.DefaultStaleThresholdDays
	}
	cutoff := now.Add(-time.Duration(threshold) * 24 * time.Hour)

	stale, err := s.devices.ListStale(ctx, org.ID, cutoff)
	if err != nil {
		return fmt.Errorf("list stale devices: %w", err)
	}
	for _, d := range stale {
		deviceID := d.ID
		rem := &models.Reminder{
			OrgID:        org.ID,
			DeviceID:     &deviceID,
			UserEmail:    staleRecipient,
			Type:         models.ReminderTypeStaleDevice,
			ScheduledFor: now,
		}
		if err := s.store.Create(ctx, rem); err != nil {
			return fmt.Errorf("create stale reminder: %w", err)
		}
		lastSeen := "never"
		if d.LastSeenAt != nil {
			lastSeen = d.LastSeenAt.Format(time.RFC3339)
		}
		if err := s.notifier.EnqueueReminderEmail(ctx, queue.ReminderEmailPayload{
			ReminderID:     rem.ID,
			OrgID:          org.ID,
			RecipientEmail: rem.UserEmail,
			Subject:        fmt.Sprintf("Device %s has gone quiet", d.AssetTag),
			Body:           fmt.Sprintf("Device %s is stale (last seen %s).", d.AssetTag, lastSeen),
		}); err != nil {
			return fmt.Errorf("enqueue stale reminder: %w", err)
		}
		report.StaleReminders++
	}

	events, err := s.offboarding.ListOpenUnreturned(ctx, org.ID)
	if err != nil {
		return fmt.Errorf("list open offboarding events: %w", err)
	}
	for _, e := range events {
		if err := s.offboarding.IncrementReminders(ctx, org.ID, e.ID, now); err != nil {
			return fmt.Errorf("increment offboarding reminders: %w", err)
		}
		rem := &models.Reminder{
			OrgID:        org.ID,
			UserEmail:    e.UserEmail,
			Type:         models.ReminderTypeOffboarding,
			ScheduledFor: now,
		}
		if err := s.store.Create(ctx, rem); err != nil {
			return fmt.Errorf("create offboarding reminder: %w", err)
		}
		if err := s.notifier.EnqueueReminderEmail(ctx, queue.ReminderEmailPayload{
			ReminderID:     rem.ID,
			OrgID:          org.ID,
			RecipientEmail: e.UserEmail,
			Subject:        "Please return your assigned devices",
			Body:           fmt.Sprintf("Reminder for %s: devices from your offboarding are still outstanding.", e.UserEmail),
		}); err != nil {
			return fmt.Errorf("enqueue offboarding reminder: %w", err)
		}
		report.OffboardingReminders++
	}
	return nil
}
