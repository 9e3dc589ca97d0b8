package types

// VehicleInfo holds decoded or form-supplied vehicle descriptors.
type VehicleInfo struct {
	Year  string `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// IsZero reports whether no descriptor is set.
func (v VehicleInfo) IsZero() bool {
	return v.Year == "" && v.Make == "" && v.Model == ""
}
