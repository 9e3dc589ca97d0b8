package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/pkg/db"
	"github.com/glassops/glassops-backend/pkg/db/dbtest"
	"github.com/glassops/glassops-backend/pkg/db/models"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/logger"
)

var archiveNow = time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)

func newArchiveJob(t *testing.T, conn *gorm.DB, batch int) *quoteArchiveJob {
	t.Helper()
	recorder, err := activity.NewService(activity.NewRepository(conn))
	require.NoError(t, err)
	job, err := NewQuoteArchiveJob(QuoteArchiveJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:            db.NewFromConn(conn),
		Quotes:        quotes.NewRepository(conn),
		Activity:      recorder,
		RetentionDays: 90,
		BatchSize:     batch,
	})
	require.NoError(t, err)
	impl := job.(*quoteArchiveJob)
	impl.now = func() time.Time { return archiveNow }
	return impl
}

func seedArchiveQuote(t *testing.T, conn *gorm.DB, status enums.QuoteStatus, age time.Duration) *models.QuoteSubmission {
	t.Helper()
	q := &models.QuoteSubmission{
		FirstName: "Pat", LastName: "Lee", MobilePhone: "555-0100", Email: "pat@example.com",
		Location: "San Diego", ZipCode: "92101", Division: enums.DivisionGlass, ServiceType: "chip_repair",
		SelectedWindows: []string{"windshield"}, Status: status, SubmittedAt: archiveNow.Add(-age),
	}
	require.NoError(t, conn.Create(q).Error)
	return q
}

func statusOf(t *testing.T, conn *gorm.DB, q *models.QuoteSubmission) enums.QuoteStatus {
	t.Helper()
	var row models.QuoteSubmission
	require.NoError(t, conn.First(&row, "id = ?", q.ID).Error)
	return row.Status
}

func TestQuoteArchiveJobArchivesSettledQuotesPastRetention(t *testing.T) {
	conn := dbtest.Open(t)
	day := 24 * time.Hour

	oldProcessed := seedArchiveQuote(t, conn, enums.QuoteStatusProcessed, 120*day)
	oldQuoted := seedArchiveQuote(t, conn, enums.QuoteStatusQuoted, 91*day)
	oldSubmitted := seedArchiveQuote(t, conn, enums.QuoteStatusSubmitted, 200*day)
	oldConverted := seedArchiveQuote(t, conn, enums.QuoteStatusConverted, 200*day)
	recentProcessed := seedArchiveQuote(t, conn, enums.QuoteStatusProcessed, 30*day)

	job := newArchiveJob(t, conn, 500)
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, enums.QuoteStatusArchived, statusOf(t, conn, oldProcessed))
	assert.Equal(t, enums.QuoteStatusArchived, statusOf(t, conn, oldQuoted))
	assert.Equal(t, enums.QuoteStatusSubmitted, statusOf(t, conn, oldSubmitted))
	assert.Equal(t, enums.QuoteStatusConverted, statusOf(t, conn, oldConverted))
	assert.Equal(t, enums.QuoteStatusProcessed, statusOf(t, conn, recentProcessed))

	var logs []models.ActivityLog
	require.NoError(t, conn.Where("type = ?", enums.ActivityQuoteArchived).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.EqualValues(t, 2, logs[0].Details["count"])
	assert.Len(t, logs[0].Details["quoteIds"], 2)
}

func TestQuoteArchiveJobWritesOneEntryPerBatch(t *testing.T) {
	conn := dbtest.Open(t)
	for i := 0; i < 5; i++ {
		seedArchiveQuote(t, conn, enums.QuoteStatusProcessed, time.Duration(100+i)*24*time.Hour)
	}

	job := newArchiveJob(t, conn, 2)
	require.NoError(t, job.Run(context.Background()))

	var archived int64
	require.NoError(t, conn.Model(&models.QuoteSubmission{}).Where("status = ?", enums.QuoteStatusArchived).Count(&archived).Error)
	assert.EqualValues(t, 5, archived)

	var entries int64
	require.NoError(t, conn.Model(&models.ActivityLog{}).Where("type = ?", enums.ActivityQuoteArchived).Count(&entries).Error)
	assert.EqualValues(t, 3, entries)
}

func TestQuoteArchiveJobNoopWritesNoActivity(t *testing.T) {
	conn := dbtest.Open(t)
	seedArchiveQuote(t, conn, enums.QuoteStatusQuoted, 10*24*time.Hour)

	job := newArchiveJob(t, conn, 10)
	require.NoError(t, job.Run(context.Background()))

	var entries int64
	require.NoError(t, conn.Model(&models.ActivityLog{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestNewQuoteArchiveJobRequiresDeps(t *testing.T) {
	_, err := NewQuoteArchiveJob(QuoteArchiveJobParams{})
	require.Error(t, err)
}
