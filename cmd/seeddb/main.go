// seeddb generates the pre-populated SQLite database bundled with the app.
//
// It fetches Bible verses, commentaries and topics from the offline API and
// writes them into a database matching the app's offline schema. The output
// is rebuilt from scratch on every run.
//
// Environment variables (a .env file is loaded if present):
//
//	API_URL              - offline API base URL (default: https://api.versemate.org)
//	BIBLE_VERSION        - Bible version key (default: NASB1995)
//	COMMENTARY_LANGUAGE  - commentary language code (default: en-US)
//	TOPIC_LANGUAGE       - topic language code (default: en)
//	SEED_DB_PATH         - output file (default: assets/data/versemate-seed.db)
//	BATCH_SIZE           - rows per insert transaction (default: 1000)
//
// Usage:
//
//	go run ./cmd/seeddb
//	go run ./cmd/seeddb --output /tmp/seed.db --bible-version KJV
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/versemate-seed-db/internal/client"
	"github.com/versemate-seed-db/internal/config"
	"github.com/versemate-seed-db/internal/services"
	schemaconfig "github.com/versemate-seed-db/pkg/schema/config"
)

func main() {
	log.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// A second interrupt kills the process, even mid-VACUUM
		<-ctx.Done()
		stop()
	}()

	code := exitCode(run(ctx, os.Args[1:]), os.Stdout)
	stop()
	os.Exit(code)
}

// exitCode reports err to the operator and returns the process exit status
func exitCode(err error, out io.Writer) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\nAborted.")
		return 1
	default:
		log.Printf("Seed database generation failed: %v", err)
		return 1
	}
}

func run(ctx context.Context, args []string) error {
	// Load .env file if present
	_ = godotenv.Load()

	apiCfg := config.GetConfig()
	storeCfg := schemaconfig.GetConfig()

	if err := applyFlags(args, apiCfg, storeCfg); err != nil {
		return err
	}

	offline := client.NewOfflineClient(apiCfg, os.Stdout)
	seed := services.NewSeedService(offline, apiCfg, storeCfg, os.Stdout)

	report, err := seed.Run(ctx)
	if err != nil {
		return err
	}

	services.PrintReport(os.Stdout, report)
	return nil
}

// applyFlags overrides environment configuration with command-line flags
func applyFlags(args []string, apiCfg *config.Config, storeCfg *schemaconfig.Config) error {
	fs := pflag.NewFlagSet("seeddb", pflag.ContinueOnError)

	apiURL := fs.String("api-url", apiCfg.APIURL, "offline API base URL")
	bibleVersion := fs.StringP("bible-version", "b", apiCfg.BibleVersion, "Bible version key to bundle")
	commentaryLang := fs.StringP("commentary-language", "c", apiCfg.CommentaryLanguage, "commentary language code to bundle")
	topicLang := fs.StringP("topic-language", "t", apiCfg.TopicLanguage, "topic language code to bundle")
	timeout := fs.Duration("timeout", apiCfg.FetchTimeout, "per-request fetch timeout")
	output := fs.StringP("output", "o", storeCfg.OutputPath, "output SQLite file")
	batchSize := fs.Int("batch-size", storeCfg.BatchSize, "rows per insert transaction")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", *batchSize)
	}
	if *timeout <= 0 {
		*timeout = 120 * time.Second
	}

	apiCfg.APIURL = strings.TrimRight(*apiURL, "/")
	apiCfg.BibleVersion = *bibleVersion
	apiCfg.CommentaryLanguage = *commentaryLang
	apiCfg.TopicLanguage = *topicLang
	apiCfg.FetchTimeout = *timeout
	storeCfg.OutputPath = *output
	storeCfg.BatchSize = *batchSize
	return nil
}
