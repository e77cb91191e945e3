// Package rules applies item effects when entities collide. It listens to
// sim.CollisionEvent on the world's bus, so effects land in the same tick
// as the contact.
package rules

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile-herder/internal/config"
	"github.com/vovakirdan/tile-herder/internal/event"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/sim"
)

// Effect is what one collision does to the mover and the run.
type Effect struct {
	Consume               bool // detach the other party
	Score                 int
	TickRateDelta         float64
	AccelerationRateDelta float64
	Win                   bool
	Message               string
}

// Settings tunes the native item effects.
type Settings struct {
	TickRateStep float64
	BoostStep    float64
	CarrotScore  int
	// Herded is the kind that eats carrots and wins at the goal.
	Herded string
}

// SettingsFromConfig derives rule settings from the items section.
func SettingsFromConfig(c config.ItemsConfig) Settings {
	return Settings{
		TickRateStep: c.TickRateStep,
		BoostStep:    c.BoostStep,
		CarrotScore:  c.CarrotScore,
		Herded:       string(levels.KindRabbit),
	}
}

// Engine keeps the score of a run and applies collision effects.
type Engine struct {
	world      *sim.World
	settings   Settings
	script     *Script
	difficulty *config.DifficultyManager
	logger     *log.Logger

	baseSpeeds map[sim.ID]float64
	score      int
	eaten      int
	won        bool
	message    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for warnings about skipped effects.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScript lets a Lua script override native effects.
func WithScript(s *Script) Option {
	return func(e *Engine) { e.script = s }
}

// WithDifficulty speeds up the herded animal as the run progresses.
func WithDifficulty(d *config.DifficultyManager) Option {
	return func(e *Engine) { e.difficulty = d }
}

// New creates an engine and subscribes it to the world's bus.
func New(w *sim.World, settings Settings, opts ...Option) *Engine {
	e := &Engine{
		world:      w,
		settings:   settings,
		logger:     log.New(io.Discard),
		baseSpeeds: make(map[sim.ID]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	event.Subscribe(w.Bus(), e.handle)
	return e
}

// Score returns the points collected so far.
func (e *Engine) Score() int { return e.score }

// Eaten returns how many carrots the herded animal ate.
func (e *Engine) Eaten() int { return e.eaten }

// Won reports whether the herded animal reached a goal.
func (e *Engine) Won() bool { return e.won }

// Message returns the description of the last applied effect.
func (e *Engine) Message() string { return e.message }

func (e *Engine) handle(ev sim.CollisionEvent) {
	mover, ok := e.world.Entity(ev.Mover)
	if !ok {
		return
	}
	other, ok := e.world.Entity(ev.Other)
	if !ok {
		return
	}

	if e.script != nil {
		if eff, ok := e.script.OnCollide(e.party(other), e.party(mover)); ok {
			e.apply(mover, other, eff)
			return
		}
	}
	if eff, ok := e.native(mover, other); ok {
		e.apply(mover, other, eff)
	}
}

// native returns the built-in effect of other on mover.
func (e *Engine) native(mover, other *sim.Entity) (Effect, bool) {
	herded := mover.Kind == e.settings.Herded
	switch levels.Kind(other.Kind) {
	case levels.KindSpeedUp:
		return Effect{Consume: true, TickRateDelta: -e.settings.TickRateStep, Message: mover.Kind + " sped up"}, true
	case levels.KindSpeedDown:
		return Effect{Consume: true, TickRateDelta: e.settings.TickRateStep, Message: mover.Kind + " slowed down"}, true
	case levels.KindBoost:
		return Effect{Consume: true, AccelerationRateDelta: e.settings.BoostStep, Message: mover.Kind + " boosted"}, true
	case levels.KindCarrot:
		if !herded {
			return Effect{}, false
		}
		return Effect{Consume: true, Score: e.settings.CarrotScore, Message: mover.Kind + " ate a carrot"}, true
	case levels.KindGoal:
		if !herded {
			return Effect{}, false
		}
		return Effect{Win: true, Message: mover.Kind + " is home"}, true
	}
	return Effect{}, false
}

func (e *Engine) apply(mover, other *sim.Entity, eff Effect) {
	if eff.TickRateDelta != 0 {
		mover.TickRate = max(0, mover.TickRate+eff.TickRateDelta)
	}
	if eff.AccelerationRateDelta != 0 {
		if mover.Movement == nil {
			e.logger.Warn("effect needs movement, skipped", "entity", mover.ID(), "kind", mover.Kind, "item", other.Kind)
		} else {
			mover.Movement.AccelerationRate = max(0, mover.Movement.AccelerationRate+eff.AccelerationRateDelta)
		}
	}
	e.score += eff.Score
	if eff.Consume && levels.Kind(other.Kind) == levels.KindCarrot && mover.Kind == e.settings.Herded {
		e.eaten++
		e.scale(mover)
	}
	if eff.Win && !e.won {
		e.won = true
		e.logger.Info("goal reached", "entity", mover.ID(), "tick", e.world.Tick())
	}
	if eff.Message != "" {
		e.message = eff.Message
	}
	if eff.Consume {
		if err := e.world.Detach(other.ID()); err != nil {
			e.logger.Warn("consume failed", "entity", other.ID(), "error", err)
		}
	}
	e.logger.Debug("collision effect",
		"mover", mover.ID(), "other", other.ID(), "kind", other.Kind,
		"score", e.score, "tick_rate", mover.TickRate)
}

// Advance runs the per-tick part of the rules. With tick progression it
// rescales every herded entity.
func (e *Engine) Advance() {
	if e.difficulty == nil || !e.difficulty.PerTick() {
		return
	}
	for _, ent := range e.world.Entities() {
		if ent.Kind == e.settings.Herded {
			e.scale(ent)
		}
	}
}

func (e *Engine) progress() config.Progress {
	return config.Progress{Carrots: e.eaten, Ticks: e.world.Tick()}
}

// scale raises the base speed of mover with the difficulty level.
func (e *Engine) scale(mover *sim.Entity) {
	if e.difficulty == nil || !e.difficulty.IsEnabled() || mover.Movement == nil {
		return
	}
	base, ok := e.baseSpeeds[mover.ID()]
	if !ok {
		base = mover.Movement.BaseSpeed
		e.baseSpeeds[mover.ID()] = base
	}
	mover.Movement.BaseSpeed = e.difficulty.Speed(base, e.progress())
}

func (e *Engine) party(ent *sim.Entity) Party {
	p := Party{
		ID:       uint64(ent.ID()),
		Kind:     ent.Kind,
		Row:      ent.Tile().Row,
		Col:      ent.Tile().Col,
		TickRate: ent.TickRate,
	}
	if ent.Movement != nil {
		p.AccelerationRate = ent.Movement.AccelerationRate
		p.Speed = ent.Movement.Speed
	}
	return p
}

// String summarises the run for logs.
func (e *Engine) String() string {
	return fmt.Sprintf("score=%d eaten=%d won=%t", e.score, e.eaten, e.won)
}
