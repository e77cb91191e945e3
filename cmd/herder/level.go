package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile-herder/internal/levels"
)

var levelCmd = &cobra.Command{
	Use:   "level <file>",
	Short: "Inspect a level file",
	Long: `Parse and validate a level file (.txt, .yaml, .yml or .toml), then
print its size, what it places and the level drawn as a text grid.

Examples:
  herder level ./levels/meadow.txt
  herder level ./levels/yard.toml`,
	Args: cobra.ExactArgs(1),
	Run:  runLevel,
}

func runLevel(cmd *cobra.Command, args []string) {
	lvl, err := levels.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	title := lvl.ID
	if lvl.Name != "" {
		title = fmt.Sprintf("%s (%s)", lvl.Name, lvl.ID)
	}
	fmt.Println(titleStyle.Render(title))
	fmt.Printf("%dx%d tiles, %d placements\n", lvl.Cols, lvl.Rows, len(lvl.Placements))

	counts := make(map[levels.Kind]int)
	for _, p := range lvl.Placements {
		counts[p.Kind]++
	}
	kinds := make([]levels.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	t := newTable("Kind", "Count")
	for _, k := range kinds {
		t.Row(string(k), strconv.Itoa(counts[k]))
	}
	fmt.Println(t.Render())

	keys := make([]string, 0, len(lvl.Metadata))
	for key := range lvl.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(hintStyle.Render(key + ": " + lvl.Metadata[key]))
	}
	fmt.Println()
	fmt.Print(lvl.Text())
}
