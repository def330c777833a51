package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table names shared with the app's offline store
const (
	TableVerses            = "offline_verses"
	TableExplanations      = "offline_explanations"
	TableTopics            = "offline_topics"
	TableTopicReferences   = "offline_topic_references"
	TableTopicExplanations = "offline_topic_explanations"
	TableNotes             = "offline_notes"
	TableHighlights        = "offline_highlights"
	TableBookmarks         = "offline_bookmarks"
	TableMetadata          = "offline_metadata"
)

// schema must match the app's offline schema exactly. Notes, highlights and
// bookmarks are user data; they are declared here but only the app writes them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS offline_verses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version_key TEXT NOT NULL,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		text TEXT NOT NULL,
		UNIQUE(version_key, book_id, chapter_number, verse_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verses_lookup
		ON offline_verses(version_key, book_id, chapter_number)`,

	`CREATE TABLE IF NOT EXISTS offline_explanations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language_code TEXT NOT NULL,
		explanation_id INTEGER NOT NULL,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_start INTEGER,
		verse_end INTEGER,
		type TEXT NOT NULL,
		explanation TEXT NOT NULL,
		UNIQUE(language_code, explanation_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_explanations_lookup
		ON offline_explanations(language_code, book_id, chapter_number)`,

	`CREATE TABLE IF NOT EXISTS offline_topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language_code TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sort_order INTEGER,
		UNIQUE(language_code, topic_id)
	)`,

	`CREATE TABLE IF NOT EXISTS offline_topic_references (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_id TEXT NOT NULL,
		reference_content TEXT NOT NULL,
		UNIQUE(topic_id)
	)`,

	`CREATE TABLE IF NOT EXISTS offline_topic_explanations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language_code TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		type TEXT NOT NULL,
		explanation TEXT NOT NULL,
		UNIQUE(language_code, topic_id, type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_topic_explanations_lookup
		ON offline_topic_explanations(language_code, topic_id)`,

	`CREATE TABLE IF NOT EXISTS offline_notes (
		note_id TEXT PRIMARY KEY,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL,
		verse_number INTEGER,
		content TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_chapter
		ON offline_notes(book_id, chapter_number)`,

	`CREATE TABLE IF NOT EXISTS offline_highlights (
		highlight_id INTEGER PRIMARY KEY,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL,
		start_verse INTEGER NOT NULL,
		end_verse INTEGER NOT NULL,
		color TEXT NOT NULL,
		start_char INTEGER,
		end_char INTEGER,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_highlights_chapter
		ON offline_highlights(book_id, chapter_number)`,

	`CREATE TABLE IF NOT EXISTS offline_bookmarks (
		favorite_id INTEGER PRIMARY KEY,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookmarks_chapter
		ON offline_bookmarks(book_id, chapter_number)`,

	`CREATE TABLE IF NOT EXISTS offline_metadata (
		resource_key TEXT PRIMARY KEY,
		last_updated_at TEXT NOT NULL,
		downloaded_at TEXT NOT NULL,
		size_bytes INTEGER NOT NULL
	)`,
}

// EnsureSchema creates every table and index that is missing. Existing rows
// are left untouched, so it is safe on a populated database.
func EnsureSchema(ctx context.Context, sqliteDB *sqlx.DB) error {
	tx, err := sqliteDB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
