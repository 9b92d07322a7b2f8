package importer

import (
	"errors"
	"testing"
)

func TestGuessDeviceMapping(t *testing.T) {
	headers := []string{"Asset Tag", "Serial Number", "Device Model", "OS", "Warranty Expires", "Status", "Room"}
	m := GuessDeviceMapping(headers)

	want := map[string]string{
		FieldAssetTag:      "Asset Tag",
		FieldSerialNumber:  "Serial Number",
		FieldModel:         "Device Model",
		FieldPlatform:      "OS",
		FieldWarrantyUntil: "Warranty Expires",
		FieldStatus:        "Status",
		FieldLocation:      "Room",
	}
	for field, header := range want {
		if m[field] != header {
			t.Errorf("guessed %s = %q, want %q", field, m[field], header)
		}
	}
}

func TestGuessDeviceMappingHeaderOrder(t *testing.T) {
	// Headers are scanned in column order: the leftmost header containing
	// any keyword wins, even when a later header matches a stronger one.
	m := GuessDeviceMapping([]string{"Device ID", "Asset Tag"})
	if m[FieldAssetTag] != "Device ID" {
		t.Errorf("asset_tag guessed as %q, want %q", m[FieldAssetTag], "Device ID")
	}

	m = GuessDeviceMapping([]string{"Dog Tag", "Asset Number"})
	if m[FieldAssetTag] != "Dog Tag" {
		t.Errorf("asset_tag guessed as %q, want %q", m[FieldAssetTag], "Dog Tag")
	}
}

func TestGuessDeviceMappingNoMatches(t *testing.T) {
	m := GuessDeviceMapping([]string{"Foo", "Bar"})
	if m[FieldAssetTag] != "" {
		t.Errorf("expected no asset_tag guess, got %q", m[FieldAssetTag])
	}
}

func TestGuessAuthorityMapping(t *testing.T) {
	headers := []string{"Asset ID", "Description", "School", "Custodian", "Fund", "Cost", "Purchase Date"}
	m := GuessAuthorityMapping(headers)

	if m[FieldAuthorityAssetID] != "Asset ID" {
		t.Errorf("authority_asset_id guessed as %q", m[FieldAuthorityAssetID])
	}
	if m[FieldDescription] != "Description" {
		t.Errorf("description guessed as %q", m[FieldDescription])
	}
	if m[FieldSiteCode] != "School" {
		t.Errorf("site_code guessed as %q", m[FieldSiteCode])
	}
	if m[FieldCost] != "Cost" {
		t.Errorf("cost guessed as %q", m[FieldCost])
	}
}

func TestMappingValidateRequiresAssetTag(t *testing.T) {
	m := Mapping{FieldModel: "Model"}
	err := m.Validate([]string{"Model"})
	if !errors.Is(err, ErrAssetTagUnmapped) {
		t.Fatalf("expected ErrAssetTagUnmapped, got %v", err)
	}
}

func TestMappingValidateUnknownHeader(t *testing.T) {
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Nope"}
	if err := m.Validate([]string{"Tag", "Model"}); err == nil {
		t.Fatal("expected error for mapped header missing from CSV")
	}
}

func TestMappingValidateOK(t *testing.T) {
	m := Mapping{FieldAssetTag: "Tag", FieldModel: ""}
	if err := m.Validate([]string{"Tag"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMappedHeaders(t *testing.T) {
	m := Mapping{FieldAssetTag: "Tag", FieldModel: "Model", FieldStatus: ""}
	used := m.MappedHeaders()
	if len(used) != 2 {
		t.Fatalf("expected 2 used headers, got %d", len(used))
	}
	if _, ok := used["Tag"]; !ok {
		t.Error("Tag missing from used headers")
	}
	if _, ok := used["Model"]; !ok {
		t.Error("Model missing from used headers")
	}
}
