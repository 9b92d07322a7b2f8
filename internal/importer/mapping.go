package importer

import (
	"errors"
	"strings"
)

// Canonical device import fields.
const (
	FieldAssetTag      = "asset_tag"
	FieldSerialNumber  = "serial_number"
	FieldModel         = "model"
	FieldPlatform      = "platform"
	FieldWarrantyUntil = "warranty_until"
	FieldStatus        = "status"
	FieldLocation      = "location"
)

// Canonical authority snapshot fields.
const (
	FieldAuthorityAssetID = "authority_asset_id"
	FieldDescription      = "description"
	FieldSiteCode         = "site_code"
	FieldRoom             = "room"
	FieldCustodian        = "custodian"
	FieldFund             = "fund"
	FieldCost             = "cost"
	FieldPurchaseDate     = "purchase_date"
)

// ErrAssetTagUnmapped is returned when an import is attempted without the
// required asset tag mapping.
var ErrAssetTagUnmapped = errors.New("asset tag mapping is required")

// Mapping assigns each canonical field to the CSV header it is sourced
// from. A missing key (or empty value) means the field is unmapped.
type Mapping map[string]string

// deviceFieldKeywords drive header auto-guessing for the device import.
// Headers are scanned left to right; the first one containing any keyword
// wins.
var deviceFieldKeywords = []struct {
	field    string
	keywords []string
}{
	{FieldAssetTag, []string{"asset", "tag", "asset id", "device id"}},
	{FieldSerialNumber, []string{"serial", "sn", "s/n"}},
	{FieldModel, []string{"model", "device", "product"}},
	{FieldPlatform, []string{"platform", "os", "type", "device type"}},
	{FieldWarrantyUntil, []string{"warranty", "expires", "expiry"}},
	{FieldStatus, []string{"status", "state", "lifecycle"}},
	{FieldLocation, []string{"room", "location", "building"}},
}

// authorityFieldKeywords drive header auto-guessing for authority snapshot
// imports.
var authorityFieldKeywords = []struct {
	field    string
	keywords []string
}{
	{FieldAuthorityAssetID, []string{"asset", "tag", "id"}},
	{FieldDescription, []string{"description", "desc", "item"}},
	{FieldSiteCode, []string{"site", "school", "building", "location"}},
	{FieldRoom, []string{"room", "loc", "location"}},
	{FieldCustodian, []string{"custodian", "owner", "teacher"}},
	{FieldFund, []string{"fund", "program"}},
	{FieldCost, []string{"cost", "amount", "value"}},
	{FieldPurchaseDate, []string{"date", "purchase", "acquired"}},
}

// GuessDeviceMapping heuristically maps CSV headers to the canonical device
// fields. It is a starting point for the user to confirm or correct, not a
// guarantee.
func GuessDeviceMapping(headers []string) Mapping {
	return guess(headers, deviceFieldKeywords)
}

// GuessAuthorityMapping heuristically maps CSV headers to the canonical
// authority snapshot fields.
func GuessAuthorityMapping(headers []string) Mapping {
	return guess(headers, authorityFieldKeywords)
}

func guess(headers []string, fields []struct {
	field    string
	keywords []string
}) Mapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(h)
	}
	m := make(Mapping, len(fields))
	for _, f := range fields {
		if h := findHeader(lower, headers, f.keywords); h != "" {
			m[f.field] = h
		}
	}
	return m
}

// findHeader scans headers in column order and returns the first one
// containing any of the keywords.
func findHeader(lowerHeaders, originalHeaders []string, keywords []string) string {
	for i, h := range lowerHeaders {
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return originalHeaders[i]
			}
		}
	}
	return ""
}

// Validate checks that the required asset tag field is mapped and that every
// mapped header actually exists in the parsed CSV.
func (m Mapping) Validate(headers []string) error {
	if m[FieldAssetTag] == "" {
		return ErrAssetTagUnmapped
	}
	known := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		known[h] = struct{}{}
	}
	for field, header := range m {
		if header == "" {
			continue
		}
		if _, ok := known[header]; !ok {
			return errors.New("mapped header not found in CSV: " + header + " (for " + field + ")")
		}
	}
	return nil
}

// MappedHeaders returns the set of source headers consumed by the mapping.
// Everything else folds into row metadata.
func (m Mapping) MappedHeaders() map[string]struct{} {
	used := make(map[string]struct{}, len(m))
	for _, h := range m {
		if h != "" {
			used[h] = struct{}{}
		}
	}
	return used
}
