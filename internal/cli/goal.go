package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/store"
)

func init() {
	goalCmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a goal",
		Args:  cobra.MinimumNArgs(1),
		Run:   runGoalAdd,
	}
	addCmd.Flags().StringP("desc", "D", "", "Goal description")
	addCmd.Flags().StringP("category", "c", "learning", "Category: learning, achievement")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Run:   runGoalList,
	}
	listCmd.Flags().String("category", "", "Filter by category")
	listCmd.Flags().String("status", "", "Filter by status")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a goal",
		Args:  cobra.ExactArgs(1),
		Run:   runGoalShow,
	}

	progressCmd := &cobra.Command{
		Use:   "progress [id] [0-100]",
		Short: "Set a goal's progress",
		Args:  cobra.ExactArgs(2),
		Run:   runGoalProgress,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		Run:   runGoalRm,
	}

	goalCmd.AddCommand(addCmd, listCmd, showCmd, progressCmd, rmCmd)
	RootCmd.AddCommand(goalCmd)
}

func runGoalAdd(cmd *cobra.Command, args []string) {
	desc, _ := cmd.Flags().GetString("desc")
	category, _ := cmd.Flags().GetString("category")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	g, err := a.CreateGoal(cmd.Context(), strings.Join(args, " "), desc, model.GoalCategory(category))
	if err != nil {
		exitErr("create goal", err)
	}
	printJSON(g)
}

func runGoalList(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	status, _ := cmd.Flags().GetString("status")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	goals, err := a.Store.ListGoals(cmd.Context(), store.ListGoalsParams{
		UserID:   a.Cfg.UserID,
		Category: model.GoalCategory(category),
		Status:   model.GoalStatus(status),
	})
	if err != nil {
		exitErr("list goals", err)
	}

	if len(goals) == 0 {
		fmt.Println("No goals yet. Create one with: goalspace goal add \"...\"")
		return
	}
	for _, g := range goals {
		fmt.Printf("%s  [%3d%%] %-12s %s\n", g.ID, g.Progress, g.Status, g.Title)
	}
}

func runGoalShow(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	g, err := a.Store.GetGoal(cmd.Context(), args[0])
	if err != nil {
		exitErr("show goal", err)
	}
	printJSON(g)
}

func runGoalProgress(cmd *cobra.Command, args []string) {
	progress, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("progress", fmt.Errorf("not a number: %q", args[1]))
	}

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	g, err := a.UpdateGoalProgress(cmd.Context(), args[0], progress)
	if err != nil {
		exitErr("update progress", err)
	}
	fmt.Printf("%s is now %d%% (%s)\n", g.Title, g.Progress, g.Status)
}

func runGoalRm(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	if err := a.DeleteGoal(cmd.Context(), args[0]); err != nil {
		exitErr("delete goal", err)
	}
	fmt.Println("Deleted.")
}
