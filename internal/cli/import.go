package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a workspace export",
		Long:  "Import a workspace JSON document from a file or stdin. Records get fresh ids; existing data is left alone.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}
	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var w store.Workspace
	if err := json.Unmarshal(data, &w); err != nil {
		exitErr("parse input", err)
	}

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	n, err := a.Store.Import(cmd.Context(), &w)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf("Imported %d records.\n", n)
}
