package enums

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Division identifies the business line a quote or job belongs to.
type Division string

const (
	DivisionGlass  Division = "glass"
	DivisionWheels Division = "wheels"
)

var validDivisions = []Division{
	DivisionGlass,
	DivisionWheels,
}

// String implements fmt.Stringer.
func (d Division) String() string {
	return string(d)
}

// UnmarshalJSON trims and lower-cases the incoming value. Unknown values are
// kept so validation can report them.
func (d *Division) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Division(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// IsValid reports whether the division matches the canonical set.
func (d Division) IsValid() bool {
	for _, candidate := range validDivisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDivision converts raw input into a Division.
func ParseDivision(value string) (Division, error) {
	for _, candidate := range validDivisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid division %q", value)
}
