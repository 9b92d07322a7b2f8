package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/models"
)

type mockDeviceStore struct {
	devices map[string]models.Device
	batches [][]models.Device
	err     error
}

func newMockDeviceStore() *mockDeviceStore {
	return &mockDeviceStore{devices: make(map[string]models.Device)}
}

func (m *mockDeviceStore) BulkUpsert(_ context.Context, _ uuid.UUID, batch []models.Device) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, batch)
	for _, d := range batch {
		m.devices[d.AssetTag] = d
	}
	return len(batch), nil
}

func mustParse(t *testing.T, in string) *ParsedCSV {
	t.Helper()
	parsed, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

func TestBuildBatchDropsRowsWithoutAssetTag(t *testing.T) {
	r := NewReconciler(newMockDeviceStore(), nil)
	parsed := mustParse(t, "Tag,Model\nCB-001,X\n,Y\nCB-002,Z\n")
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model"}

	batch, received, accepted, err := r.BuildBatch(uuid.New(), parsed, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received != 3 {
		t.Errorf("received = %d, want 3", received)
	}
	if accepted != 2 {
		t.Errorf("accepted = %d, want 2", accepted)
	}
	if len(batch) != 2 || batch[0].AssetTag != "CB-001" || batch[1].AssetTag != "CB-002" {
		t.Errorf("unexpected batch: %+v", batch)
	}
}

func TestBuildBatchFoldsUnmappedColumnsIntoMetadata(t *testing.T) {
	r := NewReconciler(newMockDeviceStore(), nil)
	parsed := mustParse(t, "Tag,Model,Color,Empty\nCB-001,X,blue,\n")
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model"}

	batch, _, _, err := r.BuildBatch(uuid.New(), parsed, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := batch[0]
	if d.Metadata["Color"] != "blue" {
		t.Errorf("metadata = %+v", d.Metadata)
	}
	if _, ok := d.Metadata["Empty"]; ok {
		t.Error("empty cells must not enter metadata")
	}
	if _, ok := d.Metadata["Model"]; ok {
		t.Error("mapped columns must not enter metadata")
	}
}

func TestBuildBatchNormalizes(t *testing.T) {
	r := NewReconciler(newMockDeviceStore(), nil)
	parsed := mustParse(t, "Tag,OS,State,Warranty\nCB-001,ChromeOS,LOST,2026-01-01\n")
	m := Mapping{
		FieldAssetTag:      "Tag",
		FieldPlatform:      "OS",
		FieldStatus:        "State",
		FieldWarrantyUntil: "Warranty",
	}

	batch, _, _, err := r.BuildBatch(uuid.New(), parsed, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := batch[0]
	if d.Platform != models.PlatformChromebook {
		t.Errorf("platform = %q", d.Platform)
	}
	if d.Status != models.StatusLost {
		t.Errorf("status = %q", d.Status)
	}
	if d.WarrantyUntil == nil {
		t.Error("warranty date not parsed")
	}
}

func TestBuildBatchRejectsUnmappedAssetTag(t *testing.T) {
	r := NewReconciler(newMockDeviceStore(), nil)
	parsed := mustParse(t, "Tag,Model\nCB-001,X\n")

	_, _, _, err := r.BuildBatch(uuid.New(), parsed, Mapping{FieldModel: "Model"})
	if !errors.Is(err, ErrAssetTagUnmapped) {
		t.Fatalf("expected ErrAssetTagUnmapped, got %v", err)
	}
}

func TestDedupeLastWins(t *testing.T) {
	a1 := models.Device{AssetTag: "A", SerialNumber: ptr("first")}
	b := models.Device{AssetTag: "B"}
	a2 := models.Device{AssetTag: "A", SerialNumber: ptr("second")}

	out := Dedupe([]models.Device{a1, b, a2})
	if len(out) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(out))
	}
	// Later duplicate wins but keeps the first occurrence's position.
	if out[0].AssetTag != "A" || *out[0].SerialNumber != "second" {
		t.Errorf("out[0] = %+v", out[0])
	}
	if out[1].AssetTag != "B" {
		t.Errorf("out[1] = %+v", out[1])
	}
}

func TestImportCounts(t *testing.T) {
	store := newMockDeviceStore()
	r := NewReconciler(store, nil)
	parsed := mustParse(t, "Tag,Model\nCB-001,X\n,skip\nCB-002,Y\nCB-001,Z\n")
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model"}

	report, err := r.Import(context.Background(), uuid.New(), parsed, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RowsReceived != 4 {
		t.Errorf("RowsReceived = %d, want 4", report.RowsReceived)
	}
	if report.RowsAccepted != 3 {
		t.Errorf("RowsAccepted = %d, want 3", report.RowsAccepted)
	}
	if report.RowsUpserted != 2 {
		t.Errorf("RowsUpserted = %d, want 2", report.RowsUpserted)
	}
	if got := store.devices["CB-001"].Model; got == nil || *got != "Z" {
		t.Errorf("in-batch duplicate must resolve last-wins, got %+v", got)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	store := newMockDeviceStore()
	r := NewReconciler(store, nil)
	parsed := mustParse(t, "Tag,Model\nCB-001,X\nCB-002,Y\n")
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model"}
	orgID := uuid.New()

	first, err := r.Import(context.Background(), orgID, parsed, m)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := r.Import(context.Background(), orgID, parsed, m)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if *first != *second {
		t.Errorf("reports differ: %+v vs %+v", first, second)
	}
	if len(store.devices) != 2 {
		t.Errorf("device count = %d, want 2", len(store.devices))
	}
}

func TestImportNoUsableRows(t *testing.T) {
	r := NewReconciler(newMockDeviceStore(), nil)
	parsed := mustParse(t, "Tag,Model\n,X\n,Y\n")
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model"}

	_, err := r.Import(context.Background(), uuid.New(), parsed, m)
	if !errors.Is(err, ErrNoUsableRows) {
		t.Fatalf("expected ErrNoUsableRows, got %v", err)
	}
}

func TestImportSurfacesStoreError(t *testing.T) {
	store := newMockDeviceStore()
	store.err = errors.New("deadlock detected")
	r := NewReconciler(store, nil)
	parsed := mustParse(t, "Tag\nCB-001\n")

	_, err := r.Import(context.Background(), uuid.New(), parsed, Mapping{FieldAssetTag: "Tag"})
	if err == nil || !strings.Contains(err.Error(), "deadlock") {
		t.Fatalf("expected store error verbatim, got %v", err)
	}
}

func ptr(s string) *string { return &s }
