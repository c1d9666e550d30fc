package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/chat"
	"github.com/goalspace/goalspace/internal/store"
)

func init() {
	todoCmd := &cobra.Command{
		Use:   "todo",
		Short: "Work a space's to-do list",
	}

	listCmd := &cobra.Command{
		Use:   "list [space-id]",
		Short: "List a space's to-do items",
		Args:  cobra.ExactArgs(1),
		Run:   runTodoList,
	}

	addCmd := &cobra.Command{
		Use:   "add [space-id] [text]",
		Short: "Append a to-do item",
		Args:  cobra.MinimumNArgs(2),
		Run:   runTodoAdd,
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle [space-id] [index]",
		Short: "Toggle a to-do item's checked state",
		Args:  cobra.ExactArgs(2),
		Run:   runTodoToggle,
	}

	helpCmd := &cobra.Command{
		Use:   "help [space-id] [index]",
		Short: "Hand a to-do item off to the next chat session",
		Args:  cobra.ExactArgs(2),
		Run:   runTodoHelp,
	}

	todoCmd.AddCommand(listCmd, addCmd, toggleCmd, helpCmd)
	RootCmd.AddCommand(todoCmd)
}

func runTodoList(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}

	if len(sp.ToDoList) == 0 {
		fmt.Println("Nothing to do.")
		return
	}
	for i, item := range sp.ToDoList {
		mark := " "
		if a.State.TodoChecked(sp.ID, i) {
			mark = "x"
		}
		fmt.Printf("%2d [%s] %s\n", i, mark, item)
	}
	checked, total := a.State.TodoProgress(sp.ID)
	fmt.Printf("\n%d/%d done\n", checked, total)
}

func runTodoAdd(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}

	todos := append(append([]string{}, sp.ToDoList...), strings.Join(args[1:], " "))
	if _, err := a.Store.UpdateSpace(cmd.Context(), store.UpdateSpaceParams{ID: sp.ID, ToDoList: &todos}); err != nil {
		exitErr("update to-do list", err)
	}
	a.State.UpdateTodoList(sp.ID, todos)
	fmt.Printf("Added item %d.\n", len(todos)-1)
}

func runTodoToggle(cmd *cobra.Command, args []string) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("toggle", fmt.Errorf("not an index: %q", args[1]))
	}

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}
	if index < 0 || index >= len(sp.ToDoList) {
		exitErr("toggle", fmt.Errorf("index %d out of range (%d items)", index, len(sp.ToDoList)))
	}

	a.State.ToggleTodo(sp.ID, index)
	mark := " "
	if a.State.TodoChecked(sp.ID, index) {
		mark = "x"
	}
	fmt.Printf("[%s] %s\n", mark, sp.ToDoList[index])
}

func runTodoHelp(cmd *cobra.Command, args []string) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("help", fmt.Errorf("not an index: %q", args[1]))
	}

	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	sp, err := a.Store.GetSpace(cmd.Context(), args[0])
	if err != nil {
		exitErr("show space", err)
	}
	if index < 0 || index >= len(sp.ToDoList) {
		exitErr("help", fmt.Errorf("index %d out of range (%d items)", index, len(sp.ToDoList)))
	}

	slot := chat.NewHandoffSlot(a.Cfg.HandoffPath)
	if err := slot.Set(fmt.Sprintf("I need help with this task: %s", sp.ToDoList[index])); err != nil {
		exitErr("hand off", err)
	}
	fmt.Println("Queued for the next chat session. Run: goalspace chat", sp.ID)
}
