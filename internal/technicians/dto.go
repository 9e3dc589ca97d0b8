package technicians

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
)

// TechnicianDTO is the transport shape for a technician.
type TechnicianDTO struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Email     *string                `json:"email,omitempty"`
	Phone     string                 `json:"phone"`
	Status    enums.TechnicianStatus `json:"status"`
	Rating    int                    `json:"rating"`
	ZipCodes  []string               `json:"zipCodes"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func FromModel(t *models.Technician) *TechnicianDTO {
	if t == nil {
		return nil
	}
	return &TechnicianDTO{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Phone:     t.Phone,
		Status:    t.Status,
		Rating:    t.Rating,
		ZipCodes:  append([]string{}, t.ZipCodes...),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// CreateTechnicianInput is the admin payload for a new technician.
type CreateTechnicianInput struct {
	Name     string                 `json:"name" validate:"required,max=120"`
	Email    *string                `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string                 `json:"phone" validate:"required,min=7,max=32"`
	Status   enums.TechnicianStatus `json:"status,omitempty"`
	Rating   int                    `json:"rating" validate:"min=0,max=5"`
	ZipCodes []string               `json:"zipCodes" validate:"dive,required,max=10"`
}

// UpdateTechnicianInput carries a partial update.
type UpdateTechnicianInput struct {
	Name     *string                 `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email    *string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string                 `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
	Status   *enums.TechnicianStatus `json:"status,omitempty"`
	Rating   *int                    `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	ZipCodes *[]string               `json:"zipCodes,omitempty" validate:"omitempty,dive,required,max=10"`
}

// normalizeZips trims, drops blanks, and de-duplicates ZIP codes.
func normalizeZips(zips []string) []string {
	seen := make(map[string]struct{}, len(zips))
	out := make([]string, 0, len(zips))
	for _, z := range zips {
		z = strings.TrimSpace(z)
		if z == "" {
			continue
		}
		if _, ok := seen[z]; ok {
			continue
		}
		seen[z] = struct{}{}
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
