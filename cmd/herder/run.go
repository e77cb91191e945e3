package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile-herder/internal/config"
	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/games/stage"
	"github.com/vovakirdan/tile-herder/internal/registry"
	"github.com/vovakirdan/tile-herder/internal/sim"
	"github.com/vovakirdan/tile-herder/internal/storage"
)

var (
	flagTicks      int
	flagInput      string
	flagLevel      string
	flagScript     string
	flagDifficulty string
	flagSnapshot   bool
	flagNoSave     bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario headless",
	Long: `Run a scenario with a fixed time step, feeding a scripted direction
sequence to the controlled entity. The run stops early once it is won.
The outcome is saved to the run history.

Input is a comma-separated list of DIR:TICKS pairs, where DIR is a
compass direction (n, ne, e, se, s, sw, w, nw) or x for no input.

Examples:
  herder run herd
  herder run herd --ticks 2000 --input "E:40,S:20,E:100"
  herder run herd --level lane --difficulty hard
  herder run sandbox --script ./rules.lua --snapshot`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", 1200, "Maximum number of ticks to simulate")
	runCmd.Flags().StringVar(&flagInput, "input", "", "Scripted input, e.g. \"E:40,S:20\"")
	runCmd.Flags().StringVar(&flagLevel, "level", "", "Level file or built-in level id")
	runCmd.Flags().StringVar(&flagScript, "script", "", "Lua collision rules script")
	runCmd.Flags().StringVarP(&flagDifficulty, "difficulty", "d", "", "Difficulty preset: easy, normal, hard, fixed")
	runCmd.Flags().BoolVar(&flagSnapshot, "snapshot", false, "Print the final entity snapshot")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run")
}

func runRun(cmd *cobra.Command, args []string) {
	scenarioID := args[0]

	if !registry.Exists(scenarioID) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", scenarioID)
		fmt.Fprintln(os.Stderr, "Run 'herder list' to see available scenarios.")
		os.Exit(1)
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	input, err := parseInput(flagInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(1)
	}
	if flagTicks <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --ticks must be positive")
		os.Exit(1)
	}

	if flagDifficulty != "" {
		stage.SetDifficultyPreset(preset)
	}
	stage.SetLevelPath(flagLevel)
	stage.SetScriptPath(flagScript)

	rc := core.DefaultConfig()
	rc.TickRate = appConfig.Sim.TickRate
	if flagTickRate > 0 {
		rc.TickRate = flagTickRate
	}
	rc.Seed = appConfig.Sim.Seed
	if flagSeed != 0 {
		rc.Seed = flagSeed
	}
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}

	scenario, err := registry.Create(scenarioID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating scenario: %v\n", err)
		os.Exit(1)
	}
	if err := scenario.Reset(rc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if c, ok := scenario.(interface{ Close() }); ok {
		defer c.Close()
	}

	levelID := ""
	if l, ok := scenario.(interface{ LevelID() string }); ok {
		levelID = l.LevelID()
	}

	logger.Info("run started",
		"scenario", scenarioID, "level", levelID, "seed", rc.Seed,
		"tick_rate", rc.TickRate, "ticks", flagTicks, "scripted", input.length())

	dt := rc.DeltaTime()
	state := scenario.State()
	for i := 0; i < flagTicks && !state.Won; i++ {
		state = scenario.Step(dt, input.at(i)).State
	}

	printSummary(scenario.Title(), levelID, rc, state)
	if w := scenario.World(); w != nil {
		fmt.Println(hintStyle.Render(fmt.Sprintf("world hash %016x", w.Hash())))
	}
	if flagSnapshot {
		printSnapshot(scenario.World())
	}

	if flagNoSave {
		return
	}
	store, err := storage.Open(dbPath())
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(storage.Run{
		Scenario: scenarioID,
		Level:    levelID,
		Seed:     rc.Seed,
		Ticks:    state.Tick,
		Score:    state.Score,
		Won:      state.Won,
	})
	if err != nil {
		logger.Warn("run not recorded", "error", err)
		return
	}
	logger.Debug("run recorded", "id", id, "db", dbPath())
}

func printSummary(title, levelID string, rc core.RuntimeConfig, state core.GameState) {
	fmt.Println(titleStyle.Render(title))

	t := newTable("Level", "Seed", "Ticks", "Seconds", "Score", "Outcome")
	seconds := float64(state.Tick) * rc.DeltaTime()
	t.Row(levelID, strconv.FormatInt(rc.Seed, 10), strconv.FormatUint(state.Tick, 10),
		strconv.FormatFloat(seconds, 'f', 2, 64), strconv.Itoa(state.Score), outcome(state.Won))
	fmt.Println(t.Render())

	if state.Message != "" {
		fmt.Println(hintStyle.Render(state.Message))
	}
}

func printSnapshot(w *sim.World) {
	if w == nil {
		return
	}
	t := newTable("ID", "Kind", "Tile", "Center", "Movement", "Heading", "Waypoints")
	for _, v := range w.Snapshot() {
		tile := w.Grid().TileForPixel(v.Center.X, v.Center.Y)
		movement := "-"
		if v.Movement != sim.MovementNone {
			movement = v.Movement.String()
		}
		t.Row(
			strconv.FormatUint(uint64(v.ID), 10),
			v.Kind,
			tile.String(),
			v.Center.String(),
			movement,
			v.Direction.String(),
			strconv.Itoa(len(v.Waypoints)),
		)
	}
	fmt.Println(t.Render())
}
