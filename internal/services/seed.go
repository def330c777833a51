package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/versemate-seed-db/internal/client"
	"github.com/versemate-seed-db/internal/config"
	"github.com/versemate-seed-db/internal/models"
	"github.com/versemate-seed-db/internal/repository"
	"github.com/versemate-seed-db/internal/repository/sqlite"
	schemaconfig "github.com/versemate-seed-db/pkg/schema/config"
	"github.com/versemate-seed-db/pkg/schema/db"
)

// ContentSource is the read side of the offline API
type ContentSource interface {
	Manifest(ctx context.Context) (*models.Manifest, error)
	BibleVerses(ctx context.Context, version string) (client.Payload[[]models.Verse], error)
	Commentaries(ctx context.Context, language string) (client.Payload[[]models.Commentary], error)
	Topics(ctx context.Context, language string) (client.Payload[models.TopicsBundle], error)
}

// SeedService builds the bundled offline database from scratch
type SeedService struct {
	source   ContentSource
	apiCfg   *config.Config
	storeCfg *schemaconfig.Config
	out      io.Writer
	now      func() time.Time
}

// NewSeedService creates a seed service that reports progress to out
func NewSeedService(source ContentSource, apiCfg *config.Config, storeCfg *schemaconfig.Config, out io.Writer) *SeedService {
	if out == nil {
		out = io.Discard
	}
	return &SeedService{
		source:   source,
		apiCfg:   apiCfg,
		storeCfg: storeCfg,
		out:      out,
		now:      time.Now,
	}
}

// content is everything fetched before the database is touched
type content struct {
	bible        models.VersionInfo
	commentary   models.LanguageInfo
	topics       models.LanguageInfo
	verses       client.Payload[[]models.Verse]
	commentaries client.Payload[[]models.Commentary]
	bundle       client.Payload[models.TopicsBundle]
}

// Run deletes any previous output, fetches all content, then writes and
// compacts a fresh database. Any error aborts the run; a partially written
// file is left as is and removed by the next run.
func (s *SeedService) Run(ctx context.Context) (*models.SeedReport, error) {
	started := s.now().UTC()
	outputPath := filepath.Clean(s.storeCfg.OutputPath)

	removed, err := db.RemoveExisting(outputPath)
	if err != nil {
		return nil, err
	}
	if removed {
		fmt.Fprintf(s.out, "Removed existing seed DB at %s\n", outputPath)
	}

	c, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "\nCreating seed database at:\n  %s\n\n", outputPath)
	counts, err := s.populate(ctx, c, started)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat seed database: %w", err)
	}

	return &models.SeedReport{
		OutputPath: outputPath,
		FileSize:   info.Size(),
		StartedAt:  started,
		Duration:   s.now().Sub(started),
		Rows:       counts,
	}, nil
}

func (s *SeedService) fetchAll(ctx context.Context) (*content, error) {
	var (
		c   content
		err error
	)

	fmt.Fprintln(s.out, "\n[1/4] Fetching manifest...")
	manifest, err := s.source.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	if c.bible, err = manifest.BibleVersion(s.apiCfg.BibleVersion); err != nil {
		return nil, err
	}
	if c.commentary, err = manifest.CommentaryLanguage(s.apiCfg.CommentaryLanguage); err != nil {
		return nil, err
	}
	if c.topics, err = manifest.TopicLanguage(s.apiCfg.TopicLanguage); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "\n[2/4] Fetching Bible verses (%s)...\n", c.bible.Key)
	if c.verses, err = s.source.BibleVerses(ctx, c.bible.Key); err != nil {
		return nil, fmt.Errorf("fetch verses: %w", err)
	}
	fmt.Fprintf(s.out, "  -> %s verses\n", humanize.Comma(int64(len(c.verses.Data))))

	fmt.Fprintf(s.out, "\n[3/4] Fetching %s commentaries...\n", c.commentary.Code)
	if c.commentaries, err = s.source.Commentaries(ctx, c.commentary.Code); err != nil {
		return nil, fmt.Errorf("fetch commentaries: %w", err)
	}
	fmt.Fprintf(s.out, "  -> %s entries\n", humanize.Comma(int64(len(c.commentaries.Data))))

	fmt.Fprintf(s.out, "\n[4/4] Fetching %s topics...\n", c.topics.Code)
	if c.bundle, err = s.source.Topics(ctx, c.topics.Code); err != nil {
		return nil, fmt.Errorf("fetch topics: %w", err)
	}
	b := c.bundle.Data
	fmt.Fprintf(s.out, "  -> %s topics, %s references, %s explanations\n",
		humanize.Comma(int64(len(b.Topics))),
		humanize.Comma(int64(len(b.References))),
		humanize.Comma(int64(len(b.Explanations))))

	return &c, nil
}

// populate owns the database handle for the whole write phase and always
// closes it, reporting a close error if nothing failed earlier.
func (s *SeedService) populate(ctx context.Context, c *content, started time.Time) (counts models.RowCounts, err error) {
	sqliteDB, err := db.Open(ctx, s.storeCfg)
	if err != nil {
		return counts, err
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close seed database: %w", cerr)
		}
	}()

	fmt.Fprintln(s.out, "Creating schema...")
	if err := db.EnsureSchema(ctx, sqliteDB); err != nil {
		return counts, err
	}

	var repo repository.ContentRepository = sqlite.NewContentRepository(sqliteDB, s.storeCfg.BatchSize, s.out)

	fmt.Fprintf(s.out, "Inserting %s verses...\n", c.bible.Key)
	if _, err := repo.InsertVerses(ctx, c.bible.Key, c.verses.Data); err != nil {
		return counts, err
	}

	fmt.Fprintf(s.out, "Inserting %s commentaries...\n", c.commentary.Code)
	if _, err := repo.InsertCommentaries(ctx, c.commentary.Code, c.commentaries.Data); err != nil {
		return counts, err
	}

	fmt.Fprintf(s.out, "Inserting %s topics...\n", c.topics.Code)
	if _, err := repo.InsertTopics(ctx, c.bundle.Data); err != nil {
		return counts, err
	}

	fmt.Fprintln(s.out, "Writing metadata rows...")
	downloadedAt := started.Format(time.RFC3339)
	if err := repo.UpsertMetadata(ctx, []models.Metadata{
		{
			ResourceKey:   models.BibleResourceKey(c.bible.Key),
			LastUpdatedAt: c.bible.UpdatedAt,
			DownloadedAt:  downloadedAt,
			SizeBytes:     c.verses.SizeBytes,
		},
		{
			ResourceKey:   models.CommentaryResourceKey(c.commentary.Code),
			LastUpdatedAt: c.commentary.UpdatedAt,
			DownloadedAt:  downloadedAt,
			SizeBytes:     c.commentaries.SizeBytes,
		},
		{
			ResourceKey:   models.TopicsResourceKey(c.topics.Code),
			LastUpdatedAt: c.topics.UpdatedAt,
			DownloadedAt:  downloadedAt,
			SizeBytes:     c.bundle.SizeBytes,
		},
	}); err != nil {
		return counts, err
	}

	if counts, err = repo.Counts(ctx); err != nil {
		return counts, err
	}

	fmt.Fprintln(s.out, "Vacuuming database...")
	if err := db.Vacuum(ctx, sqliteDB); err != nil {
		return counts, err
	}

	return counts, nil
}

// PrintReport writes the end-of-run summary
func PrintReport(w io.Writer, r *models.SeedReport) {
	fmt.Fprintf(w, "\nDone! Seed database: %s\n", humanize.IBytes(uint64(r.FileSize)))
	fmt.Fprintf(w, "  Verses:             %s\n", humanize.Comma(int64(r.Rows.Verses)))
	fmt.Fprintf(w, "  Commentaries:       %s\n", humanize.Comma(int64(r.Rows.Commentaries)))
	fmt.Fprintf(w, "  Topics:             %s\n", humanize.Comma(int64(r.Rows.Topics)))
	fmt.Fprintf(w, "  Topic references:   %s\n", humanize.Comma(int64(r.Rows.TopicReferences)))
	fmt.Fprintf(w, "  Topic explanations: %s\n", humanize.Comma(int64(r.Rows.TopicExplanations)))
	fmt.Fprintf(w, "  Took %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\nCommit %s to include it in the app bundle.\n", r.OutputPath)
}
