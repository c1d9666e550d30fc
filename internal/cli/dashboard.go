package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show progress aggregates",
		Run:   runDashboard,
	}
	RootCmd.AddCommand(cmd)
}

func runDashboard(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	a.State.LoadGoals(cmd.Context(), a.Cfg.UserID)
	a.State.LoadSpaces(cmd.Context(), a.Cfg.UserID)
	if msg := a.State.LastError(); msg != "" {
		exitErr("refresh", fmt.Errorf("%s", msg))
	}

	d := a.State.Dashboard()
	fmt.Printf("Goals:   %d (%d active)\n", d.TotalGoals, d.ActiveGoals)
	fmt.Printf("Spaces:  %d (%d complete, %d%%)\n", d.TotalSpaces, d.CompletedSpaces, d.CompletionRate)
	fmt.Printf("Modules: %d (%d complete)\n", d.TotalModules, d.CompletedModules)
}
