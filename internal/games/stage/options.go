// Package stage turns a level into a populated sim.World with its rules
// attached. The herd and sandbox scenarios share it.
package stage

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile-herder/internal/config"
)

// Options are the CLI-provided settings every scenario reads on Reset.
type Options struct {
	ConfigPath string
	LevelPath  string // level file on disk, or the id of a built-in level
	ScriptPath string // Lua rules script
	Difficulty config.DifficultyPreset
	Logger     *log.Logger
}

var (
	mu      sync.RWMutex
	current Options
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	current.ConfigPath = path
}

// SetLevelPath selects the level scenarios load instead of their default.
func SetLevelPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	current.LevelPath = path
}

// SetScriptPath sets the Lua rules script.
func SetScriptPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	current.ScriptPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset config.DifficultyPreset) {
	mu.Lock()
	defer mu.Unlock()
	current.Difficulty = preset
}

// SetLogger sets the logger handed to worlds and rules.
func SetLogger(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current.Logger = l
}

// Current returns a copy of the options with a usable logger.
func Current() Options {
	mu.RLock()
	defer mu.RUnlock()
	o := current
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// ResetOptions clears every option.
func ResetOptions() {
	mu.Lock()
	defer mu.Unlock()
	current = Options{}
}
