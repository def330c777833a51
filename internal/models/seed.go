package models

import "time"

// Metadata is one offline_metadata row describing a downloaded resource
type Metadata struct {
	ResourceKey   string `db:"resource_key"`
	LastUpdatedAt string `db:"last_updated_at"`
	DownloadedAt  string `db:"downloaded_at"`
	SizeBytes     int64  `db:"size_bytes"`
}

// BibleResourceKey is the offline_metadata key the app uses for a Bible version
func BibleResourceKey(version string) string {
	return "bible:" + version
}

// CommentaryResourceKey is the offline_metadata key for a commentary language
func CommentaryResourceKey(language string) string {
	return "commentary:" + language
}

// TopicsResourceKey is the offline_metadata key for a topic language
func TopicsResourceKey(language string) string {
	return "topics:" + language
}

// RowCounts holds the number of stored rows per content table
type RowCounts struct {
	Verses            int `db:"verses"`
	Commentaries      int `db:"commentaries"`
	Topics            int `db:"topics"`
	TopicReferences   int `db:"topic_references"`
	TopicExplanations int `db:"topic_explanations"`
	Metadata          int `db:"metadata"`
}

// SeedReport summarises a finished run
type SeedReport struct {
	OutputPath string
	FileSize   int64
	StartedAt  time.Time
	Duration   time.Duration
	Rows       RowCounts
}

// Row is one insert tuple; values are in the target table's column order
type Row []any
