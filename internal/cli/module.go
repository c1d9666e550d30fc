package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/model"
)

func init() {
	moduleCmd := &cobra.Command{
		Use:   "module",
		Short: "Manage a space's learning modules",
	}

	addCmd := &cobra.Command{
		Use:   "add [space-id] [title]",
		Short: "Append a module to a space",
		Args:  cobra.MinimumNArgs(2),
		Run:   runModuleAdd,
	}
	addCmd.Flags().String("content", "", "Module content (markdown)")

	listCmd := &cobra.Command{
		Use:   "list [space-id]",
		Short: "List a space's modules",
		Args:  cobra.ExactArgs(1),
		Run:   runModuleList,
	}

	doneCmd := &cobra.Command{
		Use:   "done [space-id] [module-id]",
		Short: "Mark a module complete and roll progress up",
		Args:  cobra.ExactArgs(2),
		Run:   runModuleDone,
	}
	doneCmd.Flags().Bool("undo", false, "Mark the module incomplete instead")

	moduleCmd.AddCommand(addCmd, listCmd, doneCmd)
	RootCmd.AddCommand(moduleCmd)
}

func runModuleAdd(cmd *cobra.Command, args []string) {
	content, _ := cmd.Flags().GetString("content")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	spaceID := args[0]
	existing, err := a.Store.ListModules(cmd.Context(), spaceID)
	if err != nil {
		exitErr("list modules", err)
	}
	existing = append(existing, model.Module{
		Title:   strings.Join(args[1:], " "),
		Content: content,
	})

	saved, err := a.Store.SaveModules(cmd.Context(), spaceID, existing)
	if err != nil {
		exitErr("save modules", err)
	}
	printJSON(saved[len(saved)-1])
}

func runModuleList(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	mods, err := a.Store.ListModules(cmd.Context(), args[0])
	if err != nil {
		exitErr("list modules", err)
	}

	if len(mods) == 0 {
		fmt.Println("No modules in this space.")
		return
	}
	for _, m := range mods {
		mark := " "
		if m.Completed {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s\n", mark, m.ID, m.Title)
	}
}

func runModuleDone(cmd *cobra.Command, args []string) {
	undo, _ := cmd.Flags().GetBool("undo")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	if err := a.CompleteModule(cmd.Context(), args[0], args[1], !undo); err != nil {
		exitErr("complete module", err)
	}

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}
	fmt.Printf("%s is now %d%%\n", sp.Title, sp.Progress)
}
