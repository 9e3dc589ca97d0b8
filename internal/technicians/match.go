package technicians

import (
	"strings"

	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
)

// SelectForZip picks the technician to auto-assign for zip: available, covering
// the ZIP exactly, highest rating. Equal ratings resolve to the lowest id so the
// choice never depends on row order. Returns nil when nobody matches.
func SelectForZip(candidates []models.Technician, zip string) *models.Technician {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil
	}

	var best *models.Technician
	for i := range candidates {
		tech := &candidates[i]
		if tech.Status != enums.TechnicianStatusAvailable || !tech.Covers(zip) {
			continue
		}
		if best == nil || outranks(tech, best) {
			best = tech
		}
	}
	if best == nil {
		return nil
	}
	picked := *best
	return &picked
}

func outranks(a, b *models.Technician) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ID.String() < b.ID.String()
}
