package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Similarity search over space documents",
	}

	indexCmd := &cobra.Command{
		Use:   "index [space-id]",
		Short: "Add a space's modules and notes to the similarity index",
		Args:  cobra.ExactArgs(1),
		Run:   runDocsIndex,
	}

	similarCmd := &cobra.Command{
		Use:   "similar [query]",
		Short: "Find documents similar to a query",
		Args:  cobra.MinimumNArgs(1),
		Run:   runDocsSimilar,
	}
	similarCmd.Flags().IntP("limit", "l", 5, "Max results")

	docsCmd.AddCommand(indexCmd, similarCmd)
	RootCmd.AddCommand(docsCmd)
}

func runDocsIndex(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	n, err := a.IndexSpaceDocuments(cmd.Context(), args[0])
	if err != nil {
		exitErr("index", err)
	}
	fmt.Printf("Indexed %d documents.\n", n)
}

func runDocsSimilar(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	results := a.FindSimilarDocuments(cmd.Context(), strings.Join(args, " "), limit)
	if len(results) == 0 {
		fmt.Println("No similar documents.")
		return
	}
	for _, r := range results {
		fmt.Printf("%.2f  %s\n", r.Score, r.ID)
		line := r.Content
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		fmt.Printf("      %s\n", line)
	}
}
