// Package mapper turns decoded offline API records into insert tuples.
//
// Each function returns rows in the column order of the matching INSERT
// statement in internal/repository/sqlite. Optional values come through as
// untyped nil so they are stored as SQL NULL.
package mapper

import "github.com/versemate-seed-db/internal/models"

// Verses maps to (version_key, book_id, chapter_number, verse_number, text)
func Verses(versionKey string, verses []models.Verse) []models.Row {
	rows := make([]models.Row, len(verses))
	for i, v := range verses {
		rows[i] = models.Row{versionKey, v.BookID, v.ChapterNumber, v.VerseNumber, v.Text}
	}
	return rows
}

// Commentaries maps to (language_code, explanation_id, book_id,
// chapter_number, verse_start, verse_end, type, explanation)
func Commentaries(languageCode string, entries []models.Commentary) []models.Row {
	rows := make([]models.Row, len(entries))
	for i, e := range entries {
		rows[i] = models.Row{
			languageCode,
			e.ExplanationID,
			e.BookID,
			e.ChapterNumber,
			nullableInt(e.VerseStart),
			nullableInt(e.VerseEnd),
			e.Type,
			e.Explanation,
		}
	}
	return rows
}

// Topics maps to (language_code, topic_id, name, content, category, sort_order)
func Topics(topics []models.Topic) []models.Row {
	rows := make([]models.Row, len(topics))
	for i, t := range topics {
		rows[i] = models.Row{
			t.LanguageCode,
			t.TopicID,
			t.Name,
			t.Content,
			t.Category,
			nullableInt(t.SortOrder),
		}
	}
	return rows
}

// TopicReferences maps to (topic_id, reference_content)
func TopicReferences(refs []models.TopicReference) []models.Row {
	rows := make([]models.Row, len(refs))
	for i, r := range refs {
		rows[i] = models.Row{r.TopicID, r.ReferenceContent}
	}
	return rows
}

// TopicExplanations maps to (language_code, topic_id, type, explanation)
func TopicExplanations(explanations []models.TopicExplanation) []models.Row {
	rows := make([]models.Row, len(explanations))
	for i, e := range explanations {
		rows[i] = models.Row{e.LanguageCode, e.TopicID, e.Type, e.Explanation}
	}
	return rows
}

// nullableInt avoids handing database/sql a typed nil pointer
func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
