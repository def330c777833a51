package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/versemate-seed-db/internal/models"
)

func intPtr(i int) *int { return &i }

func TestInsertVerses(t *testing.T) {
	ctx := context.Background()
	sqliteDB := openTestDB(t)
	repo := NewContentRepository(sqliteDB, 1000, nil)

	verse := models.Verse{BookID: 1, ChapterNumber: 1, VerseNumber: 1, Text: "In the beginning..."}
	n, err := repo.InsertVerses(ctx, "NASB1995", []models.Verse{verse, verse})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored []struct {
		VersionKey string `db:"version_key"`
		Text       string `db:"text"`
	}
	require.NoError(t, sqliteDB.SelectContext(ctx, &stored, `SELECT version_key, text FROM offline_verses`))
	require.Len(t, stored, 1)
	assert.Equal(t, "NASB1995", stored[0].VersionKey)
	assert.Equal(t, "In the beginning...", stored[0].Text)
}

func TestInsertCommentaries(t *testing.T) {
	ctx := context.Background()
	sqliteDB := openTestDB(t)
	repo := NewContentRepository(sqliteDB, 1, nil)

	n, err := repo.InsertCommentaries(ctx, "en-US", []models.Commentary{
		{ExplanationID: 1, BookID: 43, ChapterNumber: 3, VerseStart: intPtr(16), VerseEnd: intPtr(18), Type: "summary", Explanation: "a"},
		{ExplanationID: 2, BookID: 43, ChapterNumber: 3, Type: "detailed", Explanation: "b"},
		{ExplanationID: 2, BookID: 43, ChapterNumber: 4, Type: "detailed", Explanation: "dup key"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var row struct {
		VerseStart  sql.NullInt64 `db:"verse_start"`
		VerseEnd    sql.NullInt64 `db:"verse_end"`
		Explanation string        `db:"explanation"`
	}
	require.NoError(t, sqliteDB.GetContext(ctx, &row,
		`SELECT verse_start, verse_end, explanation FROM offline_explanations WHERE explanation_id = 2`))
	assert.False(t, row.VerseStart.Valid)
	assert.False(t, row.VerseEnd.Valid)
	assert.Equal(t, "b", row.Explanation)

	require.NoError(t, sqliteDB.GetContext(ctx, &row,
		`SELECT verse_start, verse_end, explanation FROM offline_explanations WHERE explanation_id = 1`))
	assert.Equal(t, int64(16), row.VerseStart.Int64)
	assert.Equal(t, int64(18), row.VerseEnd.Int64)
}

func TestInsertTopics(t *testing.T) {
	ctx := context.Background()

	t.Run("three topics, two references, five explanations", func(t *testing.T) {
		sqliteDB := openTestDB(t)
		var progress bytes.Buffer
		repo := NewContentRepository(sqliteDB, 2, &progress)

		bundle := models.TopicsBundle{
			Topics: []models.Topic{
				{LanguageCode: "en", TopicID: "grace", Name: "Grace", Content: "c", Category: "concept", SortOrder: intPtr(1)},
				{LanguageCode: "en", TopicID: "faith", Name: "Faith", Content: "c"},
				{LanguageCode: "en", TopicID: "hope", Name: "Hope", Content: "c"},
			},
			References: []models.TopicReference{
				{TopicID: "grace", ReferenceContent: "Eph 2:8"},
				{TopicID: "faith", ReferenceContent: "Heb 11:1"},
			},
			Explanations: []models.TopicExplanation{
				{LanguageCode: "en", TopicID: "grace", Type: "summary", Explanation: "x"},
				{LanguageCode: "en", TopicID: "grace", Type: "detailed", Explanation: "x"},
				{LanguageCode: "en", TopicID: "faith", Type: "summary", Explanation: "x"},
				{LanguageCode: "en", TopicID: "faith", Type: "detailed", Explanation: "x"},
				{LanguageCode: "en", TopicID: "hope", Type: "summary", Explanation: "x"},
			},
		}

		n, err := repo.InsertTopics(ctx, bundle)
		require.NoError(t, err)
		assert.Equal(t, 10, n)

		counts, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, counts.Topics)
		assert.Equal(t, 2, counts.TopicReferences)
		assert.Equal(t, 5, counts.TopicExplanations)

		assert.Contains(t, progress.String(), "topic references: 2/2 done")

		var category string
		var sortOrder sql.NullInt64
		require.NoError(t, sqliteDB.QueryRowContext(ctx,
			`SELECT category, sort_order FROM offline_topics WHERE topic_id = 'faith'`).Scan(&category, &sortOrder))
		assert.Equal(t, "", category)
		assert.False(t, sortOrder.Valid)
	})

	t.Run("empty references produce no rows and no error", func(t *testing.T) {
		sqliteDB := openTestDB(t)
		var progress bytes.Buffer
		repo := NewContentRepository(sqliteDB, 1000, &progress)

		n, err := repo.InsertTopics(ctx, models.TopicsBundle{
			Topics: []models.Topic{{LanguageCode: "en", TopicID: "grace", Name: "Grace", Content: "c"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		counts, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts.TopicReferences)
		assert.Zero(t, counts.TopicExplanations)
		assert.NotContains(t, progress.String(), "topic references")
	})

	t.Run("one reference per topic", func(t *testing.T) {
		sqliteDB := openTestDB(t)
		repo := NewContentRepository(sqliteDB, 1000, nil)

		n, err := repo.InsertTopics(ctx, models.TopicsBundle{
			References: []models.TopicReference{
				{TopicID: "grace", ReferenceContent: "first"},
				{TopicID: "grace", ReferenceContent: "second"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		var content string
		require.NoError(t, sqliteDB.GetContext(ctx, &content, `SELECT reference_content FROM offline_topic_references`))
		assert.Equal(t, "first", content)
	})
}

func TestUpsertMetadata(t *testing.T) {
	ctx := context.Background()
	sqliteDB := openTestDB(t)
	repo := NewContentRepository(sqliteDB, 1000, nil)

	first := models.Metadata{
		ResourceKey:   models.BibleResourceKey("NASB1995"),
		LastUpdatedAt: "2024-01-01T00:00:00Z",
		DownloadedAt:  "2024-05-01T00:00:00Z",
		SizeBytes:     100,
	}
	second := first
	second.DownloadedAt = "2024-06-01T00:00:00Z"
	second.SizeBytes = 200

	require.NoError(t, repo.UpsertMetadata(ctx, []models.Metadata{first}))
	require.NoError(t, repo.UpsertMetadata(ctx, []models.Metadata{second}))

	var stored []models.Metadata
	require.NoError(t, sqliteDB.SelectContext(ctx, &stored,
		`SELECT resource_key, last_updated_at, downloaded_at, size_bytes FROM offline_metadata`))
	require.Len(t, stored, 1)
	assert.Equal(t, second, stored[0])

	assert.NoError(t, repo.UpsertMetadata(ctx, nil))
}

func TestCountsEmpty(t *testing.T) {
	repo := NewContentRepository(openTestDB(t), 1000, nil)
	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RowCounts{}, counts)
}
