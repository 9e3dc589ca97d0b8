package controllers

import (
	"net/http"
	"strings"

	"github.com/glassops/glassops-backend/api/responses"
	"github.com/glassops/glassops-backend/api/validators"
	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/logger"
)

// ActivityList serves the dashboard feed, newest first.
func ActivityList(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := activity.ListFilter{Page: page}
		if filter.CustomerID, err = validators.ParseOptionalUUID(r, "customerId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.EntityID, err = validators.ParseOptionalUUID(r, "entityId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("entityType")); raw != "" {
			et := enums.EntityType(raw)
			filter.EntityType = &et
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			at := enums.ActivityType(raw)
			filter.Type = &at
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
