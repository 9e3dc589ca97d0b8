// Package vin validates vehicle identification numbers and decodes them into
// year/make/model through the NHTSA vPIC service.
package vin

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/glassops/glassops-backend/pkg/types"
)

// 17 characters, I/O/Q excluded.
var pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var (
	// ErrInvalidFormat is returned for strings that cannot be a VIN.
	ErrInvalidFormat = errors.New("vin: invalid format")
	// ErrNotDecoded is returned when the upstream lookup has no vehicle data.
	ErrNotDecoded = errors.New("vin: no vehicle data")
)

// Decoder resolves a VIN into vehicle descriptors.
type Decoder interface {
	Decode(ctx context.Context, vin string) (types.VehicleInfo, error)
}

// Normalize uppercases and trims a VIN.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Valid reports whether vin (already normalized) has the expected shape.
func Valid(vin string) bool {
	return pattern.MatchString(vin)
}
