package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/store"
)

func init() {
	spaceCmd := &cobra.Command{
		Use:   "space",
		Short: "Manage learning spaces",
	}

	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a learning space with an assigned mentor",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSpaceCreate,
	}
	createCmd.Flags().StringP("goal", "g", "", "Goal id this space belongs to")
	createCmd.Flags().StringP("desc", "D", "", "Space description")
	createCmd.Flags().StringP("category", "c", "learning", "Category: learning, achievement")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List spaces",
		Run:   runSpaceList,
	}
	listCmd.Flags().StringP("goal", "g", "", "Filter by goal id")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a space",
		Args:  cobra.ExactArgs(1),
		Run:   runSpaceShow,
	}

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Substring search over spaces and modules",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSpaceSearch,
	}
	searchCmd.Flags().IntP("limit", "l", 20, "Max results")

	spaceCmd.AddCommand(createCmd, listCmd, showCmd, searchCmd)
	RootCmd.AddCommand(spaceCmd)
}

func runSpaceCreate(cmd *cobra.Command, args []string) {
	goalID, _ := cmd.Flags().GetString("goal")
	desc, _ := cmd.Flags().GetString("desc")
	category, _ := cmd.Flags().GetString("category")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.CreateSpace(cmd.Context(), goalID, strings.Join(args, " "), desc, model.GoalCategory(category))
	if err != nil {
		exitErr("create space", err)
	}

	fmt.Printf("Created space %s\n", sp.ID)
	fmt.Printf("Mentor: %s (%s)\n", sp.Mentor.Name, strings.Join(sp.Mentor.Expertise, ", "))
	fmt.Println(sp.Mentor.Introduction)
	if len(sp.ToDoList) > 0 {
		fmt.Println("\nStarter tasks:")
		for _, t := range sp.ToDoList {
			fmt.Printf("  [ ] %s\n", t)
		}
	}
}

func runSpaceList(cmd *cobra.Command, args []string) {
	goalID, _ := cmd.Flags().GetString("goal")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	spaces, err := a.Store.ListSpaces(cmd.Context(), store.ListSpacesParams{
		UserID: a.Cfg.UserID,
		GoalID: goalID,
	})
	if err != nil {
		exitErr("list spaces", err)
	}

	if len(spaces) == 0 {
		fmt.Println("No spaces yet. Create one with: goalspace space create \"...\"")
		return
	}
	for _, sp := range spaces {
		fmt.Printf("%s  [%3d%%] %-20s mentor: %s\n", sp.ID, sp.Progress, sp.Title, sp.Mentor.Name)
	}
}

func runSpaceShow(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}
	printJSON(sp)
}

func runSpaceSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	results, err := a.Store.Search(cmd.Context(), store.SearchParams{
		UserID: a.Cfg.UserID,
		Query:  strings.Join(args, " "),
		Limit:  limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range results {
		fmt.Printf("%s  %s\n", r.Space.ID, r.Space.Title)
		for _, m := range r.MatchModules {
			fmt.Printf("    module: %s\n", m.Title)
		}
	}
}
