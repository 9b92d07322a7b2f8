package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assetiq/backend/internal/models"
)

// ErrNoUsableRows is returned when no row survives mapping: every row lacks
// an asset tag, so nothing can be reconciled against the (org, asset_tag) key.
var ErrNoUsableRows = errors.New("no rows have an asset tag after mapping")

// DeviceStore is the storage collaborator for the import pipeline. BulkUpsert
// writes the whole batch in one transaction keyed by (org_id, asset_tag) with
// full overwrite of the mapped columns, and returns the number of rows
// written. A storage failure aborts the batch; the caller sees the driver
// error verbatim.
type DeviceStore interface {
	BulkUpsert(ctx context.Context, orgID uuid.UUID, batch []models.Device) (int, error)
}

// Report summarizes one import. The three counts are intentionally distinct:
// RowsReceived > RowsUpserted is the caller's signal that rows were silently
// dropped (missing asset tag) or superseded (in-batch duplicate).
type Report struct {
	RowsReceived int `json:"rowsReceived"`
	RowsAccepted int `json:"rowsAccepted"`
	RowsUpserted int `json:"rowsUpserted"`
}

// Reconciler turns parsed CSV rows plus a confirmed column mapping into a
// deduplicated device batch and upserts it idempotently.
type Reconciler struct {
	store  DeviceStore
	locks  *orgLocks
	logger *zap.Logger
}

// NewReconciler creates an import reconciler.
func NewReconciler(store DeviceStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, locks: newOrgLocks(), logger: logger}
}

// BuildBatch resolves each raw row through the mapping, normalizes platform,
// status, and dates, folds unmapped columns into per-row metadata, and drops
// rows without an asset tag. Returned counts are pre-dedupe.
func (r *Reconciler) BuildBatch(orgID uuid.UUID, parsed *ParsedCSV, mapping Mapping) (batch []models.Device, received, accepted int, err error) {
	if err := mapping.Validate(parsed.Headers); err != nil {
		return nil, 0, 0, err
	}

	used := mapping.MappedHeaders()
	received = len(parsed.Rows)

	for _, row := range parsed.Rows {
		get := func(field string) string {
			header := mapping[field]
			if header == "" {
				return ""
			}
			return strings.TrimSpace(parsed.Cell(row, header))
		}

		assetTag := get(FieldAssetTag)
		if assetTag == "" {
			continue
		}

		d := models.Device{
			OrgID:    orgID,
			AssetTag: assetTag,
			Platform: NormalizePlatform(get(FieldPlatform)),
			Status:   NormalizeStatus(get(FieldStatus)),
		}
		if v := get(FieldSerialNumber); v != "" {
			d.SerialNumber = &v
		}
		if v := get(FieldModel); v != "" {
			d.Model = &v
		}
		if v := get(FieldLocation); v != "" {
			d.Location = &v
		}
		d.WarrantyUntil = NormalizeDate(get(FieldWarrantyUntil))

		// Unmapped columns survive as metadata instead of being thrown away.
		metadata := make(map[string]string)
		for i, header := range parsed.Headers {
			if _, ok := used[header]; ok {
				continue
			}
			if i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				metadata[header] = v
			}
		}
		if len(metadata) > 0 {
			d.Metadata = metadata
		}

		batch = append(batch, d)
	}

	return batch, received, len(batch), nil
}

// Dedupe collapses rows sharing an asset tag: the later row in file order
// wins, replacing the earlier in place. A single upsert statement cannot
// affect the same conflict-key row twice, so duplicates must be resolved
// here rather than failing the whole batch at the store.
func Dedupe(batch []models.Device) []models.Device {
	seen := make(map[string]int, len(batch))
	out := batch[:0]
	for _, d := range batch {
		if idx, ok := seen[d.AssetTag]; ok {
			out[idx] = d
			continue
		}
		seen[d.AssetTag] = len(out)
		out = append(out, d)
	}
	return out
}

// Import runs the full pipeline for one upload: build, dedupe, upsert.
// The upsert holds the organization's import lock.
func (r *Reconciler) Import(ctx context.Context, orgID uuid.UUID, parsed *ParsedCSV, mapping Mapping) (*Report, error) {
	batch, received, accepted, err := r.BuildBatch(orgID, parsed, mapping)
	if err != nil {
		return nil, err
	}
	return r.ImportBatch(ctx, orgID, received, accepted, batch)
}

// ImportBatch dedupes and upserts an already-built batch. Exposed separately
// for the bulk upsert entry point, which receives candidate records directly
// instead of a CSV.
func (r *Reconciler) ImportBatch(ctx context.Context, orgID uuid.UUID, received, accepted int, batch []models.Device) (*Report, error) {
	if len(batch) == 0 {
		return nil, ErrNoUsableRows
	}

	deduped := Dedupe(batch)

	lock := r.locks.get(orgID)
	lock.Lock()
	defer lock.Unlock()

	upserted, err := r.store.BulkUpsert(ctx, orgID, deduped)
	if err != nil {
		return nil, err
	}

	r.logger.Info("import complete",
		zap.String("org_id", orgID.String()),
		zap.Int("rows_received", received),
		zap.Int("rows_accepted", accepted),
		zap.Int("rows_upserted", upserted),
	)
	return &Report{RowsReceived: received, RowsAccepted: accepted, RowsUpserted: upserted}, nil
}
