package sqlite

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/versemate-seed-db/internal/mapper"
	"github.com/versemate-seed-db/internal/models"
	"github.com/versemate-seed-db/internal/repository"
)

// Ensure ContentRepository implements repository.ContentRepository
var _ repository.ContentRepository = (*ContentRepository)(nil)

const (
	insertVerseSQL = `
		INSERT OR IGNORE INTO offline_verses
			(version_key, book_id, chapter_number, verse_number, text)
		VALUES (?, ?, ?, ?, ?)`

	insertCommentarySQL = `
		INSERT OR IGNORE INTO offline_explanations
			(language_code, explanation_id, book_id, chapter_number,
			 verse_start, verse_end, type, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertTopicSQL = `
		INSERT OR IGNORE INTO offline_topics
			(language_code, topic_id, name, content, category, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`

	insertTopicReferenceSQL = `
		INSERT OR IGNORE INTO offline_topic_references (topic_id, reference_content)
		VALUES (?, ?)`

	insertTopicExplanationSQL = `
		INSERT OR IGNORE INTO offline_topic_explanations
			(language_code, topic_id, type, explanation)
		VALUES (?, ?, ?, ?)`

	upsertMetadataSQL = `
		INSERT OR REPLACE INTO offline_metadata
			(resource_key, last_updated_at, downloaded_at, size_bytes)
		VALUES (:resource_key, :last_updated_at, :downloaded_at, :size_bytes)`

	countsSQL = `
		SELECT
			(SELECT COUNT(*) FROM offline_verses)             AS verses,
			(SELECT COUNT(*) FROM offline_explanations)       AS commentaries,
			(SELECT COUNT(*) FROM offline_topics)             AS topics,
			(SELECT COUNT(*) FROM offline_topic_references)   AS topic_references,
			(SELECT COUNT(*) FROM offline_topic_explanations) AS topic_explanations,
			(SELECT COUNT(*) FROM offline_metadata)           AS metadata`
)

// ContentRepository implements repository.ContentRepository for the SQLite seed file
type ContentRepository struct {
	db        *sqlx.DB
	batchSize int
	progress  io.Writer
}

// NewContentRepository creates a repository that loads in batches of batchSize
// and writes progress lines to progress (nil discards them)
func NewContentRepository(db *sqlx.DB, batchSize int, progress io.Writer) *ContentRepository {
	if progress == nil {
		progress = io.Discard
	}
	return &ContentRepository{db: db, batchSize: batchSize, progress: progress}
}

// InsertVerses stores verses under versionKey
func (r *ContentRepository) InsertVerses(ctx context.Context, versionKey string, verses []models.Verse) (int, error) {
	n, err := r.load(ctx, insertVerseSQL, mapper.Verses(versionKey, verses), "verses")
	if err != nil {
		return n, fmt.Errorf("insert verses: %w", err)
	}
	return n, nil
}

// InsertCommentaries stores commentary entries under languageCode
func (r *ContentRepository) InsertCommentaries(ctx context.Context, languageCode string, entries []models.Commentary) (int, error) {
	n, err := r.load(ctx, insertCommentarySQL, mapper.Commentaries(languageCode, entries), "commentaries")
	if err != nil {
		return n, fmt.Errorf("insert commentaries: %w", err)
	}
	return n, nil
}

// InsertTopics stores the topics bundle. Empty reference or explanation
// lists are skipped.
func (r *ContentRepository) InsertTopics(ctx context.Context, bundle models.TopicsBundle) (int, error) {
	total, err := r.load(ctx, insertTopicSQL, mapper.Topics(bundle.Topics), "topics")
	if err != nil {
		return total, fmt.Errorf("insert topics: %w", err)
	}

	if len(bundle.References) > 0 {
		n, err := r.load(ctx, insertTopicReferenceSQL, mapper.TopicReferences(bundle.References), "topic references")
		total += n
		if err != nil {
			return total, fmt.Errorf("insert topic references: %w", err)
		}
	}

	if len(bundle.Explanations) > 0 {
		n, err := r.load(ctx, insertTopicExplanationSQL, mapper.TopicExplanations(bundle.Explanations), "topic explanations")
		total += n
		if err != nil {
			return total, fmt.Errorf("insert topic explanations: %w", err)
		}
	}

	return total, nil
}

// UpsertMetadata writes all rows in one transaction, replacing any row
// with the same resource key
func (r *ContentRepository) UpsertMetadata(ctx context.Context, rows []models.Metadata) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metadata tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range rows {
		if _, err := tx.NamedExecContext(ctx, upsertMetadataSQL, m); err != nil {
			return fmt.Errorf("upsert metadata %s: %w", m.ResourceKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metadata: %w", err)
	}
	return nil
}

// Counts returns stored row counts for every populated table
func (r *ContentRepository) Counts(ctx context.Context) (models.RowCounts, error) {
	var counts models.RowCounts
	if err := r.db.GetContext(ctx, &counts, countsSQL); err != nil {
		return models.RowCounts{}, fmt.Errorf("count rows: %w", err)
	}
	return counts, nil
}

func (r *ContentRepository) load(ctx context.Context, query string, rows []models.Row, label string) (int, error) {
	return LoadBatched(ctx, r.db, query, rows, r.batchSize, label, r.progress)
}
