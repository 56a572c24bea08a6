package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [movie-id]",
	Short: "Print the review of a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rm, err := store.GetReview(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	header := rm.Movie.OriginalTitle
	if rm.Movie.Year != nil {
		header = fmt.Sprintf("%s (%d)", header, *rm.Movie.Year)
	}
	fmt.Fprintln(out, doneStyle.Render(header))
	if rm.Movie.DefaultTitle != "" && rm.Movie.DefaultTitle != rm.Movie.OriginalTitle {
		fmt.Fprintln(out, rm.Movie.DefaultTitle)
	}
	fmt.Fprintf(out, "Written %s, last edited %s\n\n", rm.Review.CreationDate, rm.Review.ModificationDate)
	fmt.Fprint(out, rm.Review.Text)
	return nil
}
