package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the workspace as JSON",
		Long:  "Export goals, spaces, modules, and chat history as one JSON document on stdout.",
		Run:   runExport,
	}
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	w, err := a.Store.ExportAll(cmd.Context(), a.Cfg.UserID)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(w)
}
