package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate mentor content for a space",
	}

	planCmd := &cobra.Command{
		Use:   "plan [space-id]",
		Short: "Generate a learning plan",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate("plan"),
	}
	researchCmd := &cobra.Command{
		Use:   "research [space-id]",
		Short: "Generate a research brief",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate("research"),
	}
	mindmapCmd := &cobra.Command{
		Use:   "mindmap [space-id]",
		Short: "Generate a mermaid mind map",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate("mindmap"),
	}

	genCmd.AddCommand(planCmd, researchCmd, mindmapCmd)
	RootCmd.AddCommand(genCmd)
}

func runGenerate(kind string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		if err != nil {
			exitErr("open", err)
		}
		defer a.Store.Close()

		var content string
		switch kind {
		case "plan":
			content, err = a.GeneratePlan(cmd.Context(), args[0])
		case "research":
			content, err = a.GenerateResearch(cmd.Context(), args[0])
		case "mindmap":
			content, err = a.GenerateMindMap(cmd.Context(), args[0])
		}
		if err != nil {
			exitErr("generate "+kind, err)
		}
		fmt.Println(content)
	}
}
