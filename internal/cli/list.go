package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listFilter string
)

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List reviewed movies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of reviews to list")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Only list movies whose title contains this text")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	filter := listFilter
	if filter == "" && len(args) > 0 {
		filter = args[0]
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reviews, err := store.ListReviews(cmd.Context(), listLimit, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tYEAR\tTITLE\tCREATED\tMODIFIED\tREVIEW")
	for _, rm := range reviews {
		year := "----"
		if rm.Movie.Year != nil {
			year = strconv.Itoa(*rm.Movie.Year)
		}
		firstLine, _, _ := strings.Cut(strings.TrimSpace(rm.Review.Text), "\n")
		fmt.Fprintf(w, "%d\t%s\t%.40s\t%s\t%s\t%.30s\n",
			rm.MovieID,
			year,
			rm.Movie.OriginalTitle,
			rm.Review.CreationDate,
			rm.Review.ModificationDate,
			firstLine,
		)
	}
	return w.Flush()
}
