package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/activity"
	"github.com/glassops/glassops-backend/internal/quotes"
	"github.com/glassops/glassops-backend/pkg/enums"
	"github.com/glassops/glassops-backend/pkg/logger"
)

const (
	defaultQuoteRetentionDays = 90
	defaultArchiveBatchSize   = 500
)

// archivableStatuses are the settled states old quotes are archived from.
var archivableStatuses = []enums.QuoteStatus{enums.QuoteStatusProcessed, enums.QuoteStatusQuoted}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// QuoteArchiveJobParams wires the quote-archive job.
type QuoteArchiveJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Quotes        quotes.Repository
	Activity      activity.Recorder
	RetentionDays int
	BatchSize     int
}

type quoteArchiveJob struct {
	logg      *logger.Logger
	db        txRunner
	quotes    quotes.Repository
	activity  activity.Recorder
	retention int
	batchSize int
	now       func() time.Time
}

// NewQuoteArchiveJob builds the job that archives settled quotes past retention.
func NewQuoteArchiveJob(params QuoteArchiveJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultQuoteRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultArchiveBatchSize
	}
	return &quoteArchiveJob{
		logg:      params.Logger,
		db:        params.DB,
		quotes:    params.Quotes,
		activity:  params.Activity,
		retention: retention,
		batchSize: batch,
		now:       time.Now,
	}, nil
}

func (j *quoteArchiveJob) Name() string { return "quote-archive" }

func (j *quoteArchiveJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)

	var total int64
	batches := 0
	for {
		archived, err := j.archiveBatch(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("archive quotes: %w", err)
		}
		if archived == 0 {
			break
		}
		total += archived
		batches++
		if archived < int64(j.batchSize) {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"archived":       total,
		"batches":        batches,
	})
	j.logg.Info(logCtx, "quotes.archived")
	return nil
}

func (j *quoteArchiveJob) archiveBatch(ctx context.Context, cutoff time.Time) (int64, error) {
	var archived int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.quotes.WithTx(tx)
		ids, err := repo.StaleIDs(ctx, archivableStatuses, cutoff, j.batchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		n, err := repo.Archive(ctx, ids)
		if err != nil {
			return err
		}
		archived = n
		return j.activity.Record(ctx, tx, activity.Entry{
			Type:        enums.ActivityQuoteArchived,
			Description: fmt.Sprintf("Archived %d quotes older than %d days", n, j.retention),
			EntityType:  enums.EntityQuote,
			Details: map[string]any{
				"quoteIds":      idStrings(ids),
				"count":         n,
				"cutoff":        cutoff.Format(time.RFC3339),
				"retentionDays": j.retention,
			},
		})
	})
	return archived, err
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
