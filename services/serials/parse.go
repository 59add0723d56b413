// Package serials turns operator input into device serials.
package serials

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"oseplatform/models"
)

// Reasons reported for rejected lines.
const (
	ReasonUnrecognized = "unrecognized format"
	ReasonUnidentified = "cannot identify IMEI or ICCID"
	ReasonTooMany      = "too many values on line"
	ReasonSameKind     = "two values of the same type on line"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse normalizes newline-delimited text into serials. Blank lines and lines starting
// with '#' are skipped; every other line yields exactly one valid serial or one invalid entry.
func Parse(raw string) models.ParseResult {
	result := models.ParseResult{
		Valid:   []models.DeviceSerial{},
		Invalid: []models.InvalidLine{},
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		serial, reason := parseLine(line)
		if reason != "" {
			result.Invalid = append(result.Invalid, models.InvalidLine{Input: line, Error: reason})
			continue
		}
		result.Valid = append(result.Valid, serial)
	}
	return result
}

// ParseReader reads a file upload, drops a leading byte-order mark and parses it like pasted text.
func ParseReader(r io.Reader) (models.ParseResult, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return models.ParseResult{}, fmt.Errorf("failed to read serial input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	return Parse(string(data)), nil
}

func parseLine(line string) (models.DeviceSerial, string) {
	if isPackage(line) {
		return models.DeviceSerial{PackageNo: line}, ""
	}

	tokens := strings.Fields(line)
	switch len(tokens) {
	case 1:
		var s models.DeviceSerial
		if !assign(&s, tokens[0]) {
			return models.DeviceSerial{}, ReasonUnrecognized
		}
		return s, ""
	case 2:
		var s models.DeviceSerial
		first := assign(&s, tokens[0])
		if first && sameKind(tokens[0], tokens[1]) {
			return models.DeviceSerial{}, ReasonSameKind
		}
		second := assign(&s, tokens[1])
		if !first && !second {
			return models.DeviceSerial{}, ReasonUnidentified
		}
		return s, ""
	default:
		return models.DeviceSerial{}, ReasonTooMany
	}
}

// assign sets the IMEI or ICCID field matching token. Packages are only recognized on a
// line of their own.
func assign(s *models.DeviceSerial, token string) bool {
	switch Classify(token) {
	case KindIMEI:
		s.IMEI = token
		return true
	case KindICCID:
		s.ICCID = strings.ToUpper(token)
		return true
	}
	return false
}

func sameKind(a, b string) bool {
	ka, kb := Classify(a), Classify(b)
	return (ka == KindIMEI || ka == KindICCID) && ka == kb
}
