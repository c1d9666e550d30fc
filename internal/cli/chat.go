package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goalspace/goalspace/internal/chat"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [space-id] [message]",
		Short: "Talk to a space's mentor",
		Long:  "Send a message to the space's mentor and print the reply. With no message, print the conversation so far. A pending to-do hand-off is delivered when the session starts.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChat,
	}
	cmd.Flags().String("task", "", "Queue a task hand-off before the session starts")
	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		exitErr("open", err)
	}
	defer a.Store.Close()

	spaceID := args[0]
	mgr := newSessionManager(a)

	if task, _ := cmd.Flags().GetString("task"); task != "" {
		slot := chat.NewHandoffSlot(a.Cfg.HandoffPath)
		if err := slot.Set(fmt.Sprintf("I need help with this task: %s", task)); err != nil {
			exitErr("hand off", err)
		}
	}

	history, err := mgr.StartSession(cmd.Context(), spaceID)
	if err != nil {
		exitErr("start session", err)
	}

	if len(args) == 1 {
		if len(history) == 0 {
			fmt.Println("No messages yet.")
			return
		}
		for _, m := range history {
			fmt.Printf("%s: %s\n", m.Role, m.Content)
		}
		return
	}

	reply, err := mgr.Send(cmd.Context(), spaceID, strings.Join(args[1:], " "))
	if err != nil {
		exitErr("chat", err)
	}
	fmt.Println(reply.Content)
}
