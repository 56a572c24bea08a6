package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove reviews that were saved empty",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.DeleteEmptyReviews(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if deleted == 0 {
		fmt.Fprintln(out, "Database is clean. No empty reviews found.")
	} else {
		fmt.Fprintf(out, "Cleaned up %d empty reviews.\n", deleted)
	}
	return nil
}
