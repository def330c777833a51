package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required API field is absent or null
	ErrMissingField = errors.New("missing required field")

	// ErrNotInManifest is returned when a version or language is not listed
	ErrNotInManifest = errors.New("not found in manifest")
)

func missingField(record, field string) error {
	return fmt.Errorf("%s: %w %q", record, ErrMissingField, field)
}

// VersionInfo describes one Bible version in the offline manifest
type VersionInfo struct {
	Key       string `json:"key"`
	UpdatedAt string `json:"updated_at"`
}

// LanguageInfo describes one commentary or topic language in the offline manifest
type LanguageInfo struct {
	Code      string `json:"code"`
	UpdatedAt string `json:"updated_at"`
}

// Manifest lists the content available for offline download
type Manifest struct {
	BibleVersions       []VersionInfo  `json:"bible_versions"`
	CommentaryLanguages []LanguageInfo `json:"commentary_languages"`
	TopicLanguages      []LanguageInfo `json:"topic_languages"`
}

// BibleVersion returns the manifest entry for a Bible version key
func (m *Manifest) BibleVersion(key string) (VersionInfo, error) {
	for _, v := range m.BibleVersions {
		if v.Key == key {
			return v, nil
		}
	}
	return VersionInfo{}, fmt.Errorf("bible version %q: %w", key, ErrNotInManifest)
}

// CommentaryLanguage returns the manifest entry for a commentary language code
func (m *Manifest) CommentaryLanguage(code string) (LanguageInfo, error) {
	return findLanguage(m.CommentaryLanguages, "commentary", code)
}

// TopicLanguage returns the manifest entry for a topic language code
func (m *Manifest) TopicLanguage(code string) (LanguageInfo, error) {
	return findLanguage(m.TopicLanguages, "topic", code)
}

func findLanguage(langs []LanguageInfo, kind, code string) (LanguageInfo, error) {
	for _, l := range langs {
		if l.Code == code {
			return l, nil
		}
	}
	return LanguageInfo{}, fmt.Errorf("%s language %q: %w", kind, code, ErrNotInManifest)
}

// UnmarshalJSON requires the three manifest lists to be present
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw struct {
		BibleVersions       *[]VersionInfo  `json:"bible_versions"`
		CommentaryLanguages *[]LanguageInfo `json:"commentary_languages"`
		TopicLanguages      *[]LanguageInfo `json:"topic_languages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.BibleVersions == nil:
		return missingField("manifest", "bible_versions")
	case raw.CommentaryLanguages == nil:
		return missingField("manifest", "commentary_languages")
	case raw.TopicLanguages == nil:
		return missingField("manifest", "topic_languages")
	}
	*m = Manifest{
		BibleVersions:       *raw.BibleVersions,
		CommentaryLanguages: *raw.CommentaryLanguages,
		TopicLanguages:      *raw.TopicLanguages,
	}
	return nil
}

// UnmarshalJSON requires key and updated_at
func (v *VersionInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key       *string `json:"key"`
		UpdatedAt *string `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Key == nil:
		return missingField("bible version", "key")
	case raw.UpdatedAt == nil:
		return missingField("bible version", "updated_at")
	}
	*v = VersionInfo{Key: *raw.Key, UpdatedAt: *raw.UpdatedAt}
	return nil
}

// UnmarshalJSON requires code and updated_at
func (l *LanguageInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code      *string `json:"code"`
		UpdatedAt *string `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Code == nil:
		return missingField("language", "code")
	case raw.UpdatedAt == nil:
		return missingField("language", "updated_at")
	}
	*l = LanguageInfo{Code: *raw.Code, UpdatedAt: *raw.UpdatedAt}
	return nil
}

// Verse is a single Bible verse from /offline/bible/{version}
type Verse struct {
	BookID        int    `json:"book_id"`
	ChapterNumber int    `json:"chapter_number"`
	VerseNumber   int    `json:"verse_number"`
	Text          string `json:"text"`
}

// UnmarshalJSON requires every verse field
func (v *Verse) UnmarshalJSON(data []byte) error {
	var raw struct {
		BookID        *int    `json:"book_id"`
		ChapterNumber *int    `json:"chapter_number"`
		VerseNumber   *int    `json:"verse_number"`
		Text          *string `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.BookID == nil:
		return missingField("verse", "book_id")
	case raw.ChapterNumber == nil:
		return missingField("verse", "chapter_number")
	case raw.VerseNumber == nil:
		return missingField("verse", "verse_number")
	case raw.Text == nil:
		return missingField("verse", "text")
	}
	*v = Verse{
		BookID:        *raw.BookID,
		ChapterNumber: *raw.ChapterNumber,
		VerseNumber:   *raw.VerseNumber,
		Text:          *raw.Text,
	}
	return nil
}

// Commentary is a commentary entry from /offline/commentaries/{language}.
// VerseStart and VerseEnd are nil for chapter-level entries.
type Commentary struct {
	ExplanationID int    `json:"explanation_id"`
	BookID        int    `json:"book_id"`
	ChapterNumber int    `json:"chapter_number"`
	VerseStart    *int   `json:"verse_start,omitempty"`
	VerseEnd      *int   `json:"verse_end,omitempty"`
	Type          string `json:"type"`
	Explanation   string `json:"explanation"`
}

// UnmarshalJSON requires all fields except the verse range
func (c *Commentary) UnmarshalJSON(data []byte) error {
	var raw struct {
		ExplanationID *int    `json:"explanation_id"`
		BookID        *int    `json:"book_id"`
		ChapterNumber *int    `json:"chapter_number"`
		VerseStart    *int    `json:"verse_start"`
		VerseEnd      *int    `json:"verse_end"`
		Type          *string `json:"type"`
		Explanation   *string `json:"explanation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ExplanationID == nil:
		return missingField("commentary", "explanation_id")
	case raw.BookID == nil:
		return missingField("commentary", "book_id")
	case raw.ChapterNumber == nil:
		return missingField("commentary", "chapter_number")
	case raw.Type == nil:
		return missingField("commentary", "type")
	case raw.Explanation == nil:
		return missingField("commentary", "explanation")
	}
	*c = Commentary{
		ExplanationID: *raw.ExplanationID,
		BookID:        *raw.BookID,
		ChapterNumber: *raw.ChapterNumber,
		VerseStart:    raw.VerseStart,
		VerseEnd:      raw.VerseEnd,
		Type:          *raw.Type,
		Explanation:   *raw.Explanation,
	}
	return nil
}

// Topic is a topical article. Category is empty when the API omits it.
type Topic struct {
	LanguageCode string `json:"language_code"`
	TopicID      string `json:"topic_id"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	Category     string `json:"category"`
	SortOrder    *int   `json:"sort_order,omitempty"`
}

// UnmarshalJSON requires everything but category and sort_order
func (t *Topic) UnmarshalJSON(data []byte) error {
	var raw struct {
		LanguageCode *string `json:"language_code"`
		TopicID      *string `json:"topic_id"`
		Name         *string `json:"name"`
		Content      *string `json:"content"`
		Category     *string `json:"category"`
		SortOrder    *int    `json:"sort_order"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.LanguageCode == nil:
		return missingField("topic", "language_code")
	case raw.TopicID == nil:
		return missingField("topic", "topic_id")
	case raw.Name == nil:
		return missingField("topic", "name")
	case raw.Content == nil:
		return missingField("topic", "content")
	}
	*t = Topic{
		LanguageCode: *raw.LanguageCode,
		TopicID:      *raw.TopicID,
		Name:         *raw.Name,
		Content:      *raw.Content,
		SortOrder:    raw.SortOrder,
	}
	if raw.Category != nil {
		t.Category = *raw.Category
	}
	return nil
}

// TopicReference holds the rendered scripture references for a topic
type TopicReference struct {
	TopicID          string `json:"topic_id"`
	ReferenceContent string `json:"reference_content"`
}

// UnmarshalJSON requires both fields
func (r *TopicReference) UnmarshalJSON(data []byte) error {
	var raw struct {
		TopicID          *string `json:"topic_id"`
		ReferenceContent *string `json:"reference_content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.TopicID == nil:
		return missingField("topic reference", "topic_id")
	case raw.ReferenceContent == nil:
		return missingField("topic reference", "reference_content")
	}
	*r = TopicReference{TopicID: *raw.TopicID, ReferenceContent: *raw.ReferenceContent}
	return nil
}

// TopicExplanation is one explanation variant (summary, detailed, ...) of a topic
type TopicExplanation struct {
	LanguageCode string `json:"language_code"`
	TopicID      string `json:"topic_id"`
	Type         string `json:"type"`
	Explanation  string `json:"explanation"`
}

// UnmarshalJSON requires every field
func (e *TopicExplanation) UnmarshalJSON(data []byte) error {
	var raw struct {
		LanguageCode *string `json:"language_code"`
		TopicID      *string `json:"topic_id"`
		Type         *string `json:"type"`
		Explanation  *string `json:"explanation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.LanguageCode == nil:
		return missingField("topic explanation", "language_code")
	case raw.TopicID == nil:
		return missingField("topic explanation", "topic_id")
	case raw.Type == nil:
		return missingField("topic explanation", "type")
	case raw.Explanation == nil:
		return missingField("topic explanation", "explanation")
	}
	*e = TopicExplanation{
		LanguageCode: *raw.LanguageCode,
		TopicID:      *raw.TopicID,
		Type:         *raw.Type,
		Explanation:  *raw.Explanation,
	}
	return nil
}

// TopicsBundle is the /offline/topics/{language} payload
type TopicsBundle struct {
	Topics       []Topic            `json:"topics"`
	References   []TopicReference   `json:"references"`
	Explanations []TopicExplanation `json:"explanations"`
}

// UnmarshalJSON requires the three lists; they may be empty
func (b *TopicsBundle) UnmarshalJSON(data []byte) error {
	var raw struct {
		Topics       *[]Topic            `json:"topics"`
		References   *[]TopicReference   `json:"references"`
		Explanations *[]TopicExplanation `json:"explanations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Topics == nil:
		return missingField("topics bundle", "topics")
	case raw.References == nil:
		return missingField("topics bundle", "references")
	case raw.Explanations == nil:
		return missingField("topics bundle", "explanations")
	}
	*b = TopicsBundle{
		Topics:       *raw.Topics,
		References:   *raw.References,
		Explanations: *raw.Explanations,
	}
	return nil
}
