// Package levels loads level files from a directory or an embedded file
// system. Levels only describe placements; scenarios turn them into
// spawns.
package levels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tile-herder/internal/levels/formats"
)

// ErrUnsupported is returned for files whose extension has no parser.
var ErrUnsupported = errors.New("levels: unsupported format")

// Kind and Placement are shared with the format parsers.
type (
	Kind      = formats.Kind
	Placement = formats.Placement
)

// Level kinds, re-exported for scenarios and rules.
const (
	KindWall      = formats.KindWall
	KindPlayer    = formats.KindPlayer
	KindRabbit    = formats.KindRabbit
	KindSpeedDown = formats.KindSpeedDown
	KindSpeedUp   = formats.KindSpeedUp
	KindCarrot    = formats.KindCarrot
	KindGoal      = formats.KindGoal
	KindBoost     = formats.KindBoost
	KindPatrol    = formats.KindPatrol
	KindChaser    = formats.KindChaser
	KindPather    = formats.KindPather
)

// Level represents a complete level definition.
type Level struct {
	formats.Level
	FilePath string
}

// Text draws the level as a legend grid.
func (l *Level) Text() string {
	return formats.FormatText(l.Level)
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// NewFSLoader creates a loader over fsys, rooted at dir.
func NewFSLoader(fsys fs.FS, dir string) *Loader {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		sub = fsys
	}
	return &Loader{Root: dir, fsys: sub}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering. Files that fail
// to parse are skipped.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		level, err := l.LoadFile(p)
		if err != nil {
			return nil
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("levels: walking %s: %w", l.Root, err)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// LoadFile loads a single level file, relative to the loader root.
func (l *Loader) LoadFile(name string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Level{}, fmt.Errorf("levels: reading %s: %w", name, err)
	}
	level, err := Parse(name, data)
	if err != nil {
		return Level{}, err
	}
	level.FilePath = filepath.Join(l.Root, filepath.FromSlash(name))
	return level, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("levels: level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// ReadFile loads one level file from an arbitrary path on disk.
func ReadFile(p string) (Level, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Level{}, fmt.Errorf("levels: reading %s: %w", p, err)
	}
	level, err := Parse(p, data)
	if err != nil {
		return Level{}, err
	}
	level.FilePath = p
	return level, nil
}

// Parse decodes data by the extension of name and validates the result.
// A level without an id takes the file's base name.
func Parse(name string, data []byte) (Level, error) {
	ext := strings.ToLower(path.Ext(name))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("levels: parsing %s: %w", name, err)
	}
	if parsed.ID == "" {
		parsed.ID = strings.TrimSuffix(path.Base(filepath.ToSlash(name)), path.Ext(name))
	}
	if err := parsed.Validate(); err != nil {
		return Level{}, fmt.Errorf("levels: %s: %w", name, err)
	}
	return Level{Level: parsed}, nil
}

func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".txt":
		return formats.ParseText(data)
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".toml":
		return formats.ParseTOML(data)
	default:
		return formats.Level{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}
