package stage

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/vovakirdan/tile-herder/internal/config"
	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/rules"
	"github.com/vovakirdan/tile-herder/internal/sim"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// Stage is a level brought to life.
type Stage struct {
	World  *sim.World
	Level  levels.Level
	Config config.Config
	Rules  *rules.Engine

	script *rules.Script
	byKind map[levels.Kind][]sim.ID
}

// LoadConfig loads the configured file and applies the difficulty preset.
func LoadConfig(o Options) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.Difficulty != "" {
		config.ApplyPreset(&cfg, o.Difficulty)
	}
	return cfg, nil
}

// LoadLevel picks the level named by o.LevelPath: a file on disk if one
// exists there, else a built-in id. Without a LevelPath it loads
// defaultID from the built-in levels under dir.
func LoadLevel(o Options, builtin fs.FS, dir, defaultID string) (levels.Level, error) {
	loader := levels.NewFSLoader(builtin, dir)
	if o.LevelPath == "" {
		return loader.LoadByID(defaultID)
	}
	if info, err := os.Stat(o.LevelPath); err == nil && !info.IsDir() {
		return levels.ReadFile(o.LevelPath)
	}
	return loader.LoadByID(o.LevelPath)
}

// Build populates a world from level. herded names the kind the rules
// treat as the herded animal; empty disables scoring.
func Build(level levels.Level, cfg config.Config, seed int64, herded string, o Options) (*Stage, error) {
	grid, err := spatial.New(level.Cols, level.Rows, cfg.Grid.TileSize)
	if err != nil {
		return nil, fmt.Errorf("stage: %s: %w", level.ID, err)
	}
	w := sim.NewWorld(grid, sim.WithSeed(seed), sim.WithLogger(o.Logger))

	s := &Stage{
		World:  w,
		Level:  level,
		Config: cfg,
		byKind: make(map[levels.Kind][]sim.ID),
	}

	for _, p := range level.Placements {
		spec, err := specFor(p, cfg)
		if err != nil {
			return nil, fmt.Errorf("stage: %s: %w", level.ID, err)
		}
		e, err := w.Spawn(spec)
		if err != nil {
			return nil, fmt.Errorf("stage: %s: %w", level.ID, err)
		}
		s.byKind[p.Kind] = append(s.byKind[p.Kind], e.ID())
	}

	if err := s.wireTargets(); err != nil {
		return nil, fmt.Errorf("stage: %s: %w", level.ID, err)
	}

	settings := rules.SettingsFromConfig(cfg.Items)
	settings.Herded = herded
	ruleOpts := []rules.Option{
		rules.WithLogger(o.Logger),
		rules.WithDifficulty(config.NewDifficultyManager(cfg.Difficulty)),
	}
	if o.ScriptPath != "" {
		script, err := rules.LoadScript(o.ScriptPath, o.Logger)
		if err != nil {
			return nil, err
		}
		s.script = script
		ruleOpts = append(ruleOpts, rules.WithScript(script))
	}
	s.Rules = rules.New(w, settings, ruleOpts...)

	o.Logger.Debug("stage built", "level", level.ID, "entities", w.Len(), "seed", seed)
	return s, nil
}

// Close releases the rules script, if any.
func (s *Stage) Close() {
	if s.script != nil {
		s.script.Close()
		s.script = nil
	}
}

// IDs returns the ids spawned for kind, in level order.
func (s *Stage) IDs(kind levels.Kind) []sim.ID {
	return s.byKind[kind]
}

// First returns the first live entity spawned for kind.
func (s *Stage) First(kind levels.Kind) (*sim.Entity, bool) {
	for _, id := range s.byKind[kind] {
		if e, ok := s.World.Entity(id); ok {
			return e, true
		}
	}
	return nil, false
}

// wireTargets points chasing and path-following actors at their quarry:
// the player if there is one, else the rabbit. Pathers without a quarry
// head for the first goal.
func (s *Stage) wireTargets() error {
	quarry, hasQuarry := s.First(levels.KindPlayer)
	if !hasQuarry {
		quarry, hasQuarry = s.First(levels.KindRabbit)
	}

	if player, ok := s.First(levels.KindPlayer); ok {
		for _, id := range s.byKind[levels.KindRabbit] {
			if err := s.World.SetTarget(id, player.ID()); err != nil {
				return err
			}
		}
	}

	for _, kind := range []levels.Kind{levels.KindChaser, levels.KindPather} {
		for _, id := range s.byKind[kind] {
			if hasQuarry && quarry.ID() != id {
				if err := s.World.SetTarget(id, quarry.ID()); err != nil {
					return err
				}
				continue
			}
			if goal, ok := s.First(levels.KindGoal); ok && kind == levels.KindPather {
				if err := s.World.SetGoal(id, goal.Tile()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// specFor maps a placement to a spawn.
func specFor(p levels.Placement, cfg config.Config) (sim.SpawnSpec, error) {
	tile := cfg.Grid.TileSize
	small := tile - cfg.Grid.EntityInset
	spec := sim.SpawnSpec{Row: p.Row, Col: p.Col, Kind: string(p.Kind)}

	switch p.Kind {
	case levels.KindWall:
		spec.Width, spec.Height = tile, tile
		spec.Layer = spatial.LayerWorld
		spec.Solid = true
		spec.Role = sim.RoleStatic
		spec.Colour = core.ColorGrey
		return spec, nil
	case levels.KindGoal:
		spec.Width, spec.Height = tile, tile
		spec.Layer = spatial.LayerItem
		spec.Role = sim.RoleStatic
		spec.Colour = core.ColorGreen
		return spec, nil
	case levels.KindCarrot, levels.KindSpeedUp, levels.KindSpeedDown, levels.KindBoost:
		spec.Width, spec.Height = small, small
		spec.Layer = spatial.LayerItem
		spec.Role = sim.RoleItem
		spec.Colour = itemColours[p.Kind]
		return spec, nil
	}

	var (
		actor config.ActorConfig
		mtype sim.MovementType
	)
	spec.Width, spec.Height = small, small
	spec.Layer = spatial.LayerNPC
	spec.Role = sim.RoleActor

	switch p.Kind {
	case levels.KindPlayer:
		actor, mtype = cfg.Player, sim.MovementControlled
		spec.Layer = spatial.LayerPlayer
		spec.Role = sim.RoleControlled
		spec.Colour = core.ColorYellow
	case levels.KindRabbit:
		actor, mtype = cfg.Rabbit.ActorConfig, sim.MovementChase
		spec.Colour = core.ColorWhite
		spec.Scout = &sim.ScoutConfig{Interests: cfg.Rabbit.Interests, Range: cfg.Rabbit.ScoutRange}
	case levels.KindPatrol:
		actor, mtype = cfg.Patrol, sim.MovementPatrol
		spec.Colour = core.ColorRed
	case levels.KindChaser:
		actor, mtype = cfg.Chaser, sim.MovementChase
		spec.Colour = core.ColorRedLight
	case levels.KindPather:
		actor, mtype = cfg.Pather, sim.MovementPath
		spec.Colour = core.ColorBlue
	default:
		return sim.SpawnSpec{}, fmt.Errorf("no spawn rule for %q", p.Kind)
	}

	mv, err := movementFor(actor, mtype, tile)
	if err != nil {
		return sim.SpawnSpec{}, fmt.Errorf("%s: %w", p.Kind, err)
	}
	spec.TickRate = actor.TickRate
	spec.Movement = &mv
	return spec, nil
}

var itemColours = map[levels.Kind]core.Color{
	levels.KindCarrot:    core.ColorOrange,
	levels.KindSpeedUp:   core.ColorCyan,
	levels.KindSpeedDown: core.ColorPurple,
	levels.KindBoost:     core.ColorYellow,
}

func movementFor(a config.ActorConfig, t sim.MovementType, tile float64) (sim.MovementConfig, error) {
	fallback := sim.MovementNone
	if a.Fallback != "" {
		var err error
		if fallback, err = sim.ParseMovementType(a.Fallback); err != nil {
			return sim.MovementConfig{}, err
		}
	}
	return sim.MovementConfig{
		Type:             t,
		TargetOffset:     a.TargetOffsetTiles * tile,
		BaseSpeed:        a.BaseSpeed,
		MaxAcceleration:  a.MaxAcceleration,
		AccelerationRate: a.AccelerationRate,
		Fallback:         fallback,
		RepathEvery:      a.RepathEvery,
		SearchBudget:     a.SearchBudget,
	}, nil
}
