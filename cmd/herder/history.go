package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile-herder/internal/registry"
	"github.com/vovakirdan/tile-herder/internal/storage"
)

var (
	flagLimit int
	flagBest  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [scenario]",
	Short: "Show recorded runs",
	Long: `Display recorded runs, newest first. With a scenario, also show its
statistics; with --best, rank its runs instead.

Examples:
  herder history
  herder history herd
  herder history herd --best --limit 5`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&flagBest, "best", false, "Rank runs: wins first, then score, then fewest ticks")
}

func runHistory(cmd *cobra.Command, args []string) {
	scenarioID := ""
	if len(args) == 1 {
		scenarioID = args[0]
		if !registry.Exists(scenarioID) {
			fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", scenarioID)
			fmt.Fprintln(os.Stderr, "Run 'herder list' to see available scenarios.")
			os.Exit(1)
		}
	}
	if flagBest && scenarioID == "" {
		fmt.Fprintln(os.Stderr, "Error: --best needs a scenario")
		os.Exit(1)
	}

	store, err := storage.Open(dbPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var runs []storage.Run
	if flagBest {
		runs, err = store.BestRuns(scenarioID, flagLimit)
	} else {
		runs, err = store.RecentRuns(scenarioID, flagLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println(hintStyle.Render("Run 'herder run <scenario>' to record one."))
		return
	}

	heading := "Recent runs"
	if flagBest {
		heading = "Best runs"
	}
	if scenarioID != "" {
		heading += " - " + scenarioID
	}
	fmt.Println(titleStyle.Render(heading))

	t := newTable("#", "Scenario", "Level", "Seed", "Ticks", "Score", "Outcome", "Date")
	for i, r := range runs {
		t.Row(
			strconv.Itoa(i+1),
			r.Scenario,
			r.Level,
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatUint(r.Ticks, 10),
			strconv.Itoa(r.Score),
			outcome(r.Won),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	fmt.Println(t.Render())

	if err := printStats(store, scenarioID); err != nil {
		logger.Warn("stats unavailable", "error", err)
	}
}

func printStats(store *storage.Store, scenarioID string) error {
	var stats []*storage.ScenarioStats
	if scenarioID != "" {
		st, err := store.ScenarioStats(scenarioID)
		if err != nil {
			return err
		}
		stats = append(stats, st)
	} else {
		all, err := store.AllScenarioStats()
		if err != nil {
			return err
		}
		for _, st := range all {
			stats = append(stats, st)
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Scenario < stats[j].Scenario })
	}

	t := newTable("Scenario", "Runs", "Wins", "Best", "Average", "Fastest win")
	for _, st := range stats {
		fastest := "-"
		if st.FastestWin > 0 {
			fastest = strconv.FormatUint(st.FastestWin, 10)
		}
		t.Row(
			st.Scenario,
			strconv.Itoa(st.Runs),
			strconv.Itoa(st.Wins),
			strconv.Itoa(st.BestScore),
			strconv.FormatFloat(st.AvgScore, 'f', 1, 64),
			fastest,
		)
	}
	fmt.Println(t.Render())
	return nil
}
