package enums

import "fmt"

// TechnicianStatus captures technician availability for auto-assignment.
type TechnicianStatus string

const (
	TechnicianStatusAvailable TechnicianStatus = "available"
	TechnicianStatusBusy      TechnicianStatus = "busy"
	TechnicianStatusOffDuty   TechnicianStatus = "off_duty"
)

var validTechnicianStatuses = []TechnicianStatus{
	TechnicianStatusAvailable,
	TechnicianStatusBusy,
	TechnicianStatusOffDuty,
}

func (s TechnicianStatus) IsValid() bool {
	for _, candidate := range validTechnicianStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseTechnicianStatus(value string) (TechnicianStatus, error) {
	for _, candidate := range validTechnicianStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid technician status %q", value)
}
