package snapshots

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assetiq/backend/internal/importer"
	"github.com/assetiq/backend/internal/models"
	"github.com/assetiq/backend/pkg/storage"
)

// ChunkSize is how many items are committed per transaction during an
// authority snapshot import.
const ChunkSize = 500

// Store is the persistence collaborator for the snapshot import.
type Store interface {
	CreateSnapshot(ctx context.Context, s *models.AuthoritySnapshot) error
	InsertItems(ctx context.Context, snapshotID uuid.UUID, items []models.SnapshotItem) error
	Finalize(ctx context.Context, snapshotID uuid.UUID, totalRows int) error
	SetStorageKey(ctx context.Context, snapshotID uuid.UUID, key string) error
}

// Service runs authority snapshot imports: snapshot header first, then item
// chunks, then finalization. The raw CSV is archived to object storage on a
// best-effort basis; a failed archive does not block the import.
type Service struct {
	store  Store
	s3     *storage.S3
	logger *zap.Logger
}

// NewService creates a snapshot import service. s3 may be nil when object
// storage is not configured.
func NewService(store Store, s3 *storage.S3, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, s3: s3, logger: logger}
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// Import creates the snapshot and inserts every data row in chunks of
// ChunkSize, committing per chunk. On any chunk failure the snapshot is left
// in processing state with the rows committed so far, and the storage error
// is returned verbatim.
func (s *Service) Import(ctx context.Context, snap *models.AuthoritySnapshot, raw []byte, parsed *importer.ParsedCSV, mapping importer.Mapping) error {
	if err := s.store.CreateSnapshot(ctx, snap); err != nil {
		return err
	}

	if s.s3 != nil && len(raw) > 0 {
		key := storage.SnapshotKey(snap.OrgID.String(), snap.ID.String())
		if _, err := s.s3.Upload(ctx, s.s3.SnapshotsBucket(), key, "text/csv", bytes.NewReader(raw)); err != nil {
			s.logger.Warn("snapshot csv archive failed", zap.Error(err), zap.String("snapshot_id", snap.ID.String()))
		} else {
			snap.StorageKey = &key
			if err := s.store.SetStorageKey(ctx, snap.ID, key); err != nil {
				s.logger.Warn("snapshot storage key update failed", zap.Error(err))
			}
		}
	}

	total := len(parsed.Rows)
	for start := 0; start < total; start += ChunkSize {
		end := start + ChunkSize
		if end > total {
			end = total
		}
		items := make([]models.SnapshotItem, 0, end-start)
		for _, row := range parsed.Rows[start:end] {
			items = append(items, buildItem(snap.ID, parsed, row, mapping))
		}
		if err := s.store.InsertItems(ctx, snap.ID, items); err != nil {
			return err
		}
		s.logger.Info("snapshot chunk committed",
			zap.String("snapshot_id", snap.ID.String()),
			zap.Int("processed", end),
			zap.Int("total", total),
		)
	}

	if err := s.store.Finalize(ctx, snap.ID, total); err != nil {
		return err
	}
	snap.Status = models.SnapshotComplete
	snap.TotalRows = &total
	return nil
}

func buildItem(snapshotID uuid.UUID, parsed *importer.ParsedCSV, row []string, mapping importer.Mapping) models.SnapshotItem {
	get := func(field string) *string {
		header := mapping[field]
		if header == "" {
			return nil
		}
		v := strings.TrimSpace(parsed.Cell(row, header))
		if v == "" {
			return nil
		}
		return &v
	}

	it := models.SnapshotItem{
		SnapshotID:       snapshotID,
		AuthorityAssetID: get(importer.FieldAuthorityAssetID),
		Description:      get(importer.FieldDescription),
		SiteCode:         get(importer.FieldSiteCode),
		Room:             get(importer.FieldRoom),
		Custodian:        get(importer.FieldCustodian),
		Fund:             get(importer.FieldFund),
	}

	if raw := get(importer.FieldCost); raw != nil {
		cleaned := nonNumeric.ReplaceAllString(*raw, "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			it.Cost = &f
		}
	}
	if raw := get(importer.FieldPurchaseDate); raw != nil {
		it.PurchaseDate = importer.NormalizeDate(*raw)
	}

	// The complete original row rides along as raw JSON.
	rawJSON := make(map[string]string, len(parsed.Headers))
	for i, h := range parsed.Headers {
		if i < len(row) {
			rawJSON[h] = row[i]
		} else {
			rawJSON[h] = ""
		}
	}
	it.RawJSON = rawJSON
	return it
}
