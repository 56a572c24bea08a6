package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"moviereview/internal/editor"
	"moviereview/internal/logging"
	"moviereview/internal/review"
	"moviereview/internal/selector"
	"moviereview/pkg/tmdb"
)

var (
	title  string
	year   int
	limit  int
	useTUI bool
)

var doneStyle = lipgloss.NewStyle().Bold(true)

func init() {
	rootCmd.Flags().StringVarP(&title, "title", "t", "", "Movie title to search for")
	rootCmd.Flags().IntVarP(&year, "year", "y", 0, "Release year to narrow the search")
	rootCmd.Flags().IntVarP(&limit, "number", "n", review.DefaultLimit, "Maximum number of search results to show")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Pick the movie from an interactive list")
}

func runReview(cmd *cobra.Command, args []string) error {
	// An interrupt cancels the run so the transaction rolls back and the
	// deferred cleanup below still happens.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	client := tmdb.New(tmdb.Config{
		APIKey:   cfg.TMDBAPIKey,
		BaseURL:  cfg.TMDBBaseURL,
		Language: cfg.TMDBLanguage,
		Timeout:  cfg.TMDBTimeout,
		Logger:   logger,
	})

	var sel review.Selector = selector.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	if useTUI {
		sel = selector.NewPicker(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	workflow := &review.Workflow{
		Searcher: client,
		Selector: sel,
		Editor:   editor.New(cfg.Editor, editor.WithLogger(logger)),
		Store:    store,
		Now:      time.Now,
		Logger:   logger,
	}

	if _, err := workflow.Run(ctx, review.Query{Title: title, Year: year, Limit: limit}); err != nil {
		return err
	}

	printDone(cmd.OutOrStdout())
	return nil
}

func printDone(w io.Writer) {
	fmt.Fprintf(w, "\n%s ✨ 🍰 ✨\n", doneStyle.Render("All done!"))
}
