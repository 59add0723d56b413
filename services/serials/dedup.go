package serials

import "oseplatform/models"

// Dedup appends incoming serials to existing. A serial sharing any non-empty identifier with
// one already present (in existing or earlier in incoming) is dropped as a duplicate and its
// extra identifiers fill the blanks of the kept entry. Serials with no identifier are skipped.
// It returns the merged slice and the number of serials dropped as duplicates.
func Dedup(existing, incoming []models.DeviceSerial) ([]models.DeviceSerial, int) {
	merged := make([]models.DeviceSerial, 0, len(existing)+len(incoming))
	ix := newIdentifierIndex(len(existing) + len(incoming))
	for _, s := range existing {
		ix.put(s, len(merged))
		merged = append(merged, s)
	}

	dropped := 0
	for _, s := range incoming {
		if s.Empty() {
			continue
		}
		if at, dup := ix.find(s); dup {
			dropped++
			fillIdentifiers(&merged[at], s)
			ix.put(merged[at], at)
			continue
		}
		ix.put(s, len(merged))
		merged = append(merged, s)
	}
	return merged, dropped
}

func fillIdentifiers(dst *models.DeviceSerial, src models.DeviceSerial) {
	if dst.IMEI == "" {
		dst.IMEI = src.IMEI
	}
	if dst.ICCID == "" {
		dst.ICCID = src.ICCID
	}
	if dst.PackageNo == "" {
		dst.PackageNo = src.PackageNo
	}
}

type identifierIndex struct {
	imei, iccid, pkg map[string]int
}

func newIdentifierIndex(n int) *identifierIndex {
	return &identifierIndex{
		imei:  make(map[string]int, n),
		iccid: make(map[string]int, n),
		pkg:   make(map[string]int, n),
	}
}

func (ix *identifierIndex) find(s models.DeviceSerial) (int, bool) {
	if at, ok := ix.imei[s.IMEI]; ok && s.IMEI != "" {
		return at, true
	}
	if at, ok := ix.iccid[s.ICCID]; ok && s.ICCID != "" {
		return at, true
	}
	if at, ok := ix.pkg[s.PackageNo]; ok && s.PackageNo != "" {
		return at, true
	}
	return 0, false
}

// put registers the identifiers of s at position at, keeping earlier registrations.
func (ix *identifierIndex) put(s models.DeviceSerial, at int) {
	for _, e := range []struct {
		m    map[string]int
		code string
	}{{ix.imei, s.IMEI}, {ix.iccid, s.ICCID}, {ix.pkg, s.PackageNo}} {
		if e.code == "" {
			continue
		}
		if _, taken := e.m[e.code]; !taken {
			e.m[e.code] = at
		}
	}
}
