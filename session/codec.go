package session

import (
	"encoding/json"
	"fmt"
	"strings"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
)

// docVersion is the current session document schema version. Bump when the
// session shape changes and add a migration branch in decode.
const docVersion = 1

// document is the versioned envelope session lists are persisted in. The
// version tag lets a parse failure be distinguished from pre-envelope data:
// anything that does not decode is a corrupt log, never "no sessions yet".
type document[T any] struct {
	Version  int `json:"v"`
	Sessions []T `json:"sessions"`
}

func encode[T any](sessions []T) (string, error) {
	if len(sessions) == 0 {
		return "", nil
	}
	data, err := json.Marshal(document[T]{Version: docVersion, Sessions: sessions})
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}
	return string(data), nil
}

func decode[T any](cell string) ([]T, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	var doc document[T]
	if err := json.Unmarshal([]byte(cell), &doc); err != nil {
		return nil, fmt.Errorf("session: decode (%v): %w", err, cnclog.ErrCorruptSessionLog)
	}
	if doc.Version != docVersion {
		return nil, fmt.Errorf("session: unsupported document version %d: %w", doc.Version, cnclog.ErrCorruptSessionLog)
	}
	return doc.Sessions, nil
}

// EncodePauses serializes a pause list for its row cell. An empty list
// serializes to the empty string.
func EncodePauses(ps []Pause) (string, error) { return encode(ps) }

// DecodePauses parses a pause list cell. A parse failure yields
// cnclog.ErrCorruptSessionLog.
func DecodePauses(cell string) ([]Pause, error) { return decode[Pause](cell) }

// EncodeOvertimes serializes an overtime list for its row cell.
func EncodeOvertimes(ots []Overtime) (string, error) { return encode(ots) }

// DecodeOvertimes parses an overtime list cell. A parse failure yields
// cnclog.ErrCorruptSessionLog.
func DecodeOvertimes(cell string) ([]Overtime, error) { return decode[Overtime](cell) }
