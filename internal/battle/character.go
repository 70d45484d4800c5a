package battle

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// Default stats every character starts with and returns to after leaving a battle.
const (
	DefaultHealth   = 100.0
	DefaultDefense  = 0.0
	DefaultAttack   = 10.0
	DefaultAccuracy = 0.5
	DefaultMagic    = 0.0
)

// Ability produces a raw damage value for an attack.
type Ability func() float64

// Stats are the mutable combat numbers of a character. Defense is the share
// of incoming damage that is absorbed, in [0,1).
type Stats struct {
	Health   float64 `json:"health" yaml:"health"`
	Defense  float64 `json:"defense" yaml:"defense"`
	Attack   float64 `json:"attack" yaml:"attack"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	Magic    float64 `json:"magic" yaml:"magic"`
}

func DefaultStats() Stats {
	return Stats{
		Health:   DefaultHealth,
		Defense:  DefaultDefense,
		Attack:   DefaultAttack,
		Accuracy: DefaultAccuracy,
		Magic:    DefaultMagic,
	}
}

// Validate checks the ranges the damage formulas rely on.
func (s Stats) Validate() error {
	for _, v := range []float64{s.Health, s.Defense, s.Attack, s.Accuracy, s.Magic} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: stats must be finite", ErrInvalidStats)
		}
	}
	if s.Health <= 0 {
		return fmt.Errorf("%w: health %.2f must be positive", ErrInvalidStats, s.Health)
	}
	if s.Defense < 0 || s.Defense >= 1 {
		return fmt.Errorf("%w: defense %.2f outside [0,1)", ErrInvalidStats, s.Defense)
	}
	if s.Accuracy < 0 || s.Accuracy > 1 {
		return fmt.Errorf("%w: accuracy %.2f outside [0,1]", ErrInvalidStats, s.Accuracy)
	}
	return nil
}

// Character is a combatant. It belongs to at most one Battle at a time; the
// battle owns its roster and the character only remembers where it is.
type Character struct {
	name   string
	stats  Stats
	dead   bool
	battle *Battle
	roll   func() float64
}

type Option func(*Character)

// WithRand makes Hit draw from r instead of the shared math/rand source.
func WithRand(r *rand.Rand) Option {
	return func(c *Character) { c.roll = r.Float64 }
}

// WithStats overrides the default starting stats.
func WithStats(s Stats) Option {
	return func(c *Character) { c.stats = s }
}

func NewCharacter(name string, opts ...Option) *Character {
	c := &Character{
		name:  name,
		stats: DefaultStats(),
		roll:  rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Character) Name() string     { return c.name }
func (c *Character) Health() float64  { return c.stats.Health }
func (c *Character) Stats() Stats     { return c.stats }
func (c *Character) IsDead() bool     { return c.dead }
func (c *Character) IsInBattle() bool { return c.battle != nil }

// Battle returns the battle the character is in, or nil.
func (c *Character) Battle() *Battle { return c.battle }

func (c *Character) SetStats(s Stats) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("set stats for %s: %w", c.name, err)
	}
	c.stats = s
	return nil
}

// AttackResult describes one resolved attack.
type AttackResult struct {
	Attacker string  `json:"attacker"`
	Target   string  `json:"target"`
	Damage   float64 `json:"damage"`
	Killed   bool    `json:"killed"`
}

func (r AttackResult) String() string {
	s := fmt.Sprintf("%s attacked %s for a total of %s dmg",
		r.Attacker, r.Target, strconv.FormatFloat(r.Damage, 'f', -1, 64))
	if r.Killed {
		s += fmt.Sprintf("\n%s is dead", r.Target)
	}
	return s
}

// Attack hits target with the damage produced by ability. A killed target has
// already left its battle when Attack returns.
func (c *Character) Attack(target *Character, ability Ability) (AttackResult, error) {
	if target == nil || ability == nil {
		return AttackResult{}, fmt.Errorf("%s attack: target and ability are required", c.name)
	}

	applied, died, err := target.ReceiveDamage(ability())
	result := AttackResult{
		Attacker: c.name,
		Target:   target.Name(),
		Damage:   applied,
		Killed:   died,
	}
	if err != nil {
		return result, fmt.Errorf("%s attack: %w", c.name, err)
	}
	return result, nil
}

// ReceiveDamage applies amount reduced by the character's own defense.
func (c *Character) ReceiveDamage(amount float64) (float64, bool, error) {
	applied := amount * (1 - c.stats.Defense)
	c.stats.Health -= applied
	died, err := c.CheckDeath()
	return applied, died, err
}

// CheckDeath marks the character dead once health drops to zero and pulls it
// out of its battle. A character that is already dead is left alone.
func (c *Character) CheckDeath() (bool, error) {
	if c.dead {
		return true, nil
	}
	if c.stats.Health > 0 {
		return false, nil
	}

	c.dead = true
	if c.battle == nil {
		return true, nil
	}
	if err := c.leave(c.battle, RemovalDied); err != nil {
		return true, err
	}
	return true, nil
}

// Hit is the basic ability: full attack damage with probability accuracy.
func (c *Character) Hit() float64 {
	if c.roll() < c.stats.Accuracy {
		return c.stats.Attack
	}
	return 0
}

// JoinBattle registers the character with b. A dead character joins revived
// with default stats.
func (c *Character) JoinBattle(b *Battle) error {
	if c.battle != nil {
		return fmt.Errorf("%s join %s: %w", c.name, b.Name(), ErrAlreadyInBattle)
	}
	if err := b.Add(c); err != nil {
		return err
	}
	c.battle = b
	if c.dead {
		c.ResetStats()
		c.dead = false
	}
	return nil
}

// LeaveBattle withdraws the character from b and resets its stats.
func (c *Character) LeaveBattle(b *Battle) error {
	return c.leave(b, RemovalLeft)
}

func (c *Character) ResetStats() {
	c.stats = DefaultStats()
}

func (c *Character) leave(b *Battle, reason RemovalReason) error {
	if b == nil || c.battle != b {
		return fmt.Errorf("%s leave: %w", c.name, ErrNotInBattle)
	}
	if err := b.Remove(c, reason); err != nil {
		return err
	}
	c.battle = nil
	c.ResetStats()
	return nil
}
