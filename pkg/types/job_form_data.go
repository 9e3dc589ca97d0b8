package types

// AssignedTechnician is the advisory technician identity copied onto a job.
type AssignedTechnician struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// JobFormData mirrors the originating quote inside a job record.
type JobFormData struct {
	Division           string              `json:"division"`
	ServiceType        string              `json:"serviceType"`
	Location           string              `json:"location"`
	ZipCode            string              `json:"zipCode"`
	SelectedWindows    []string            `json:"selectedWindows"`
	SelectedWheels     []string            `json:"selectedWheels"`
	Notes              *string             `json:"notes,omitempty"`
	AssignedTechnician *AssignedTechnician `json:"assignedTechnician,omitempty"`
}
