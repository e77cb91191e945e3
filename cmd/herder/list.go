package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile-herder/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Long:  `Shows a list of all scenarios registered with herder.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	scenarios := registry.List()

	if len(scenarios) == 0 {
		fmt.Println("No scenarios available.")
		return
	}

	fmt.Println(titleStyle.Render("Available scenarios"))

	t := newTable("ID", "Title")
	for _, s := range scenarios {
		t.Row(s.ID, s.Title)
	}
	fmt.Println(t.Render())

	fmt.Println(hintStyle.Render("Run 'herder run <id>' to run a scenario."))
}
