package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/pkg/db/dbtest"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/pagination"
)

func TestRecordAndListFiltersByEntity(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	quoteID := uuid.New()
	require.NoError(t, svc.Record(ctx, nil, Entry{
		Type:        enums.ActivityQuoteSubmitted,
		Description: "New glass quote",
		EntityType:  enums.EntityQuote,
		EntityID:    quoteID,
		Details:     map[string]any{"division": "glass", "windowsCount": 2},
	}))
	require.NoError(t, svc.Record(ctx, nil, Entry{
		Type:        enums.ActivityJobStatusChanged,
		Description: "Job scheduled",
		EntityType:  enums.EntityJob,
		EntityID:    uuid.New(),
	}))

	entity := enums.EntityQuote
	result, err := svc.List(ctx, ListFilter{EntityType: &entity, Page: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Page.Total)

	got := result.Items[0]
	assert.Equal(t, enums.ActivityQuoteSubmitted, got.Type)
	require.NotNil(t, got.EntityID)
	assert.Equal(t, quoteID, *got.EntityID)
	assert.Equal(t, "glass", got.Details["division"])
	assert.EqualValues(t, 2, got.Details["windowsCount"])
}

func TestRecordInsideRolledBackTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	boom := errors.New("abort")
	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Record(ctx, tx, Entry{Type: enums.ActivityQuoteConverted, Description: "converted"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	result, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestListRejectsUnknownEntityType(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	bogus := enums.EntityType("invoice")
	_, err = svc.List(context.Background(), ListFilter{EntityType: &bogus})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
