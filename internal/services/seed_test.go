package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/versemate-seed-db/internal/client"
	"github.com/versemate-seed-db/internal/config"
	"github.com/versemate-seed-db/internal/models"
	schemaconfig "github.com/versemate-seed-db/pkg/schema/config"
	"github.com/versemate-seed-db/pkg/schema/db"
)

const testManifest = `{
	"bible_versions":[{"key":"NASB1995","updated_at":"2024-01-01T00:00:00Z"}],
	"commentary_languages":[{"code":"en-US","updated_at":"2024-02-01T00:00:00Z"}],
	"topic_languages":[{"code":"en","updated_at":"2024-03-01T00:00:00Z"}]
}`

const testTopics = `{
	"topics":[
		{"language_code":"en","topic_id":"grace","name":"Grace","content":"c","category":"concept","sort_order":1},
		{"language_code":"en","topic_id":"faith","name":"Faith","content":"c"},
		{"language_code":"en","topic_id":"hope","name":"Hope","content":"c"}
	],
	"references":[
		{"topic_id":"grace","reference_content":"Eph 2:8"},
		{"topic_id":"faith","reference_content":"Heb 11:1"}
	],
	"explanations":[
		{"language_code":"en","topic_id":"grace","type":"summary","explanation":"x"},
		{"language_code":"en","topic_id":"grace","type":"detailed","explanation":"x"},
		{"language_code":"en","topic_id":"faith","type":"summary","explanation":"x"},
		{"language_code":"en","topic_id":"faith","type":"detailed","explanation":"x"},
		{"language_code":"en","topic_id":"hope","type":"summary","explanation":"x"}
	]
}`

type fakeAPI struct {
	responses map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, ok := f.responses[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func defaultResponses() map[string]string {
	return map[string]string{
		"/offline/manifest":           testManifest,
		"/offline/bible/NASB1995":     `[{"book_id":1,"chapter_number":1,"verse_number":1,"text":"In the beginning..."}]`,
		"/offline/commentaries/en-US": `[{"explanation_id":1,"book_id":1,"chapter_number":1,"verse_start":1,"verse_end":2,"type":"summary","explanation":"Creation"}]`,
		"/offline/topics/en":          testTopics,
	}
}

type harness struct {
	service *SeedService
	out     *bytes.Buffer
	path    string
}

func newHarness(t *testing.T, responses map[string]string) *harness {
	t.Helper()
	srv := httptest.NewServer(&fakeAPI{responses: responses})
	t.Cleanup(srv.Close)

	apiCfg := &config.Config{
		APIURL:             srv.URL,
		FetchTimeout:       5 * time.Second,
		BibleVersion:       "NASB1995",
		CommentaryLanguage: "en-US",
		TopicLanguage:      "en",
	}
	storeCfg := &schemaconfig.Config{
		OutputPath:  filepath.Join(t.TempDir(), "assets", "data", "seed.db"),
		BatchSize:   2,
		JournalMode: "WAL",
		Synchronous: "NORMAL",
	}

	var out bytes.Buffer
	svc := NewSeedService(client.NewOfflineClient(apiCfg, &out), apiCfg, storeCfg, &out)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return &harness{service: svc, out: &out, path: storeCfg.OutputPath}
}

func openResult(t *testing.T, path string) *sqlx.DB {
	t.Helper()
	sqliteDB, err := sqlx.Open(db.DriverName, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteDB.Close() })
	return sqliteDB
}

func TestRunSingleVerse(t *testing.T) {
	h := newHarness(t, defaultResponses())

	report, err := h.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows.Verses)
	assert.Equal(t, 1, report.Rows.Commentaries)
	assert.Equal(t, 3, report.Rows.Metadata)
	assert.Positive(t, report.FileSize)

	out := openResult(t, h.path)
	var verses []struct {
		VersionKey string `db:"version_key"`
		BookID     int    `db:"book_id"`
		Text       string `db:"text"`
	}
	require.NoError(t, out.Select(&verses, `SELECT version_key, book_id, text FROM offline_verses`))
	require.Len(t, verses, 1)
	assert.Equal(t, "NASB1995", verses[0].VersionKey)
	assert.Equal(t, "In the beginning...", verses[0].Text)

	var meta []models.Metadata
	require.NoError(t, out.Select(&meta, `SELECT resource_key, last_updated_at, downloaded_at, size_bytes FROM offline_metadata ORDER BY resource_key`))
	require.Len(t, meta, 3)
	assert.Equal(t, "bible:NASB1995", meta[0].ResourceKey)
	assert.Equal(t, "2024-01-01T00:00:00Z", meta[0].LastUpdatedAt)
	assert.Equal(t, "2024-05-01T12:00:00Z", meta[0].DownloadedAt)
	assert.Equal(t, int64(87), meta[0].SizeBytes)
	assert.Equal(t, "commentary:en-US", meta[1].ResourceKey)
	assert.Equal(t, "topics:en", meta[2].ResourceKey)
	assert.Equal(t, "2024-03-01T00:00:00Z", meta[2].LastUpdatedAt)

	assert.Contains(t, h.out.String(), "[1/4] Fetching manifest...")
	assert.Contains(t, h.out.String(), "verses: 1/1 done")
}

func TestRunDuplicateVerse(t *testing.T) {
	responses := defaultResponses()
	responses["/offline/bible/NASB1995"] = `[
		{"book_id":1,"chapter_number":1,"verse_number":1,"text":"In the beginning..."},
		{"book_id":1,"chapter_number":1,"verse_number":1,"text":"In the beginning..."}
	]`
	h := newHarness(t, responses)

	report, err := h.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows.Verses)

	var n int
	require.NoError(t, openResult(t, h.path).Get(&n, `SELECT COUNT(*) FROM offline_verses`))
	assert.Equal(t, 1, n)
}

func TestRunTopicsBundle(t *testing.T) {
	t.Run("3 topics, 2 references, 5 explanations", func(t *testing.T) {
		h := newHarness(t, defaultResponses())

		report, err := h.service.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, report.Rows.Topics)
		assert.Equal(t, 2, report.Rows.TopicReferences)
		assert.Equal(t, 5, report.Rows.TopicExplanations)
	})

	t.Run("empty references list", func(t *testing.T) {
		responses := defaultResponses()
		responses["/offline/topics/en"] = `{"topics":[{"language_code":"en","topic_id":"grace","name":"Grace","content":"c"}],"references":[],"explanations":[]}`
		h := newHarness(t, responses)

		report, err := h.service.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Rows.Topics)
		assert.Zero(t, report.Rows.TopicReferences)
		assert.Zero(t, report.Rows.TopicExplanations)
	})
}

func TestRunRebuildsFromScratch(t *testing.T) {
	h := newHarness(t, defaultResponses())
	require.NoError(t, os.MkdirAll(filepath.Dir(h.path), 0o755))
	require.NoError(t, os.WriteFile(h.path, []byte("not a database"), 0o644))

	report, err := h.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows.Verses)
	assert.Contains(t, h.out.String(), "Removed existing seed DB")

	// A second run replaces the file rather than accumulating
	report, err = h.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows.Verses)
	assert.Equal(t, 3, report.Rows.Metadata)
}

func TestRunFailures(t *testing.T) {
	t.Run("version missing from manifest", func(t *testing.T) {
		responses := defaultResponses()
		responses["/offline/manifest"] = `{"bible_versions":[{"key":"KJV","updated_at":"x"}],"commentary_languages":[],"topic_languages":[]}`
		h := newHarness(t, responses)

		_, err := h.service.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrNotInManifest))

		_, statErr := os.Stat(h.path)
		assert.True(t, os.IsNotExist(statErr), "database must not be created before all fetches succeed")
	})

	t.Run("upstream error status", func(t *testing.T) {
		responses := defaultResponses()
		delete(responses, "/offline/commentaries/en-US")
		h := newHarness(t, responses)

		_, err := h.service.Run(context.Background())
		assert.ErrorIs(t, err, client.ErrUnexpectedStatus)
	})

	t.Run("record missing a required field", func(t *testing.T) {
		responses := defaultResponses()
		responses["/offline/bible/NASB1995"] = `[{"book_id":1,"chapter_number":1,"text":"no verse number"}]`
		h := newHarness(t, responses)

		_, err := h.service.Run(context.Background())
		assert.ErrorIs(t, err, models.ErrMissingField)
	})

	t.Run("cancelled context", func(t *testing.T) {
		h := newHarness(t, defaultResponses())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := h.service.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, &models.SeedReport{
		OutputPath: "assets/data/versemate-seed.db",
		FileSize:   3 * 1024 * 1024,
		Duration:   1500 * time.Millisecond,
		Rows:       models.RowCounts{Verses: 31102, Commentaries: 12000, Topics: 350},
	})

	out := buf.String()
	assert.Contains(t, out, "Seed database: 3.0 MiB")
	assert.Contains(t, out, "Verses:             31,102")
	assert.Contains(t, out, "Topics:             350")
	assert.Contains(t, out, "Commit assets/data/versemate-seed.db")
}
