package repository

import (
	"context"

	"github.com/versemate-seed-db/internal/models"
)

// ContentRepository writes offline content into the seed database.
// Insert methods skip rows whose unique key is already stored and return
// the number of rows actually written.
type ContentRepository interface {
	// InsertVerses stores the verses of one Bible version
	InsertVerses(ctx context.Context, versionKey string, verses []models.Verse) (int, error)

	// InsertCommentaries stores the commentary entries of one language
	InsertCommentaries(ctx context.Context, languageCode string, entries []models.Commentary) (int, error)

	// InsertTopics stores topics, their references and explanations
	InsertTopics(ctx context.Context, bundle models.TopicsBundle) (int, error)

	// UpsertMetadata replaces the offline_metadata rows for the given resources
	UpsertMetadata(ctx context.Context, rows []models.Metadata) error

	// Counts returns the number of stored rows per content table
	Counts(ctx context.Context) (models.RowCounts, error)
}
