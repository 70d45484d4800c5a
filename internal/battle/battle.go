package battle

import (
	"fmt"
	"strings"
	"sync"
)

// RemovalReason tells Remove why a character is leaving the roster.
type RemovalReason int

const (
	RemovalLeft RemovalReason = iota
	RemovalDied
)

func (r RemovalReason) String() string {
	switch r {
	case RemovalLeft:
		return "left"
	case RemovalDied:
		return "died"
	default:
		return "unknown"
	}
}

// Battle holds the active roster in turn order and the log of characters
// that died in it.
type Battle struct {
	mu         sync.Mutex
	name       string
	characters []*Character
	dead       []*Character
	turn       int
	started    bool
}

func NewBattle(name string) *Battle {
	return &Battle{
		name:       name,
		characters: make([]*Character, 0),
		dead:       make([]*Character, 0),
	}
}

func (b *Battle) Name() string { return b.name }

// Add appends c to the roster. Characters can only be added before Start.
func (b *Battle) Add(c *Character) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("add %s to %s: %w", c.Name(), b.name, ErrBattleAlreadyStarted)
	}
	if b.indexOf(c.Name()) >= 0 {
		return fmt.Errorf("add %s to %s: %w", c.Name(), b.name, ErrAlreadyInBattle)
	}
	b.characters = append(b.characters, c)
	return nil
}

// Remove drops the character whose name matches c from the roster. Deaths are
// also recorded in the dead log.
func (b *Battle) Remove(c *Character, reason RemovalReason) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(c.Name())
	if idx < 0 {
		return fmt.Errorf("remove %s from %s: %w", c.Name(), b.name, ErrNotInBattle)
	}

	removed := b.characters[idx]
	b.characters = append(b.characters[:idx], b.characters[idx+1:]...)
	if reason == RemovalDied {
		b.dead = append(b.dead, removed)
	}

	// Keep the turn pointer on the same character, or on whoever slid into
	// the removed slot.
	if idx < b.turn {
		b.turn--
	}
	if b.turn >= len(b.characters) {
		b.turn = 0
	}
	return nil
}

func (b *Battle) HasCharacter(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexOf(name) >= 0
}

// Character returns the active character with the given name.
func (b *Battle) Character(name string) (*Character, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(name)
	if idx < 0 {
		return nil, false
	}
	return b.characters[idx], true
}

func (b *Battle) Start() {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()
}

func (b *Battle) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

func (b *Battle) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.characters)
}

// Characters returns a copy of the roster in turn order.
func (b *Battle) Characters() []*Character {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Character(nil), b.characters...)
}

// Dead returns a copy of the dead log in order of death.
func (b *Battle) Dead() []*Character {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Character(nil), b.dead...)
}

// Stats renders the remaining characters with their health, then the dead.
func (b *Battle) Stats() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("Remaining Characters:\n")
	for _, c := range b.characters {
		fmt.Fprintf(&sb, "%s: %.2f hp\n", c.Name(), c.Health())
	}
	sb.WriteString("\nDead Players: ")
	for _, c := range b.dead {
		fmt.Fprintf(&sb, "%s\n", c.Name())
	}
	return sb.String()
}

// Turn returns the character whose turn it is.
func (b *Battle) Turn() (*Character, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.characters) == 0 {
		return nil, fmt.Errorf("turn in %s: %w", b.name, ErrNoCharacters)
	}
	return b.characters[b.turn], nil
}

// NextTurn moves the turn to the next character, wrapping to the first.
func (b *Battle) NextTurn() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.characters) == 0 {
		return
	}
	b.turn = (b.turn + 1) % len(b.characters)
}

// indexOf assumes b.mu is held.
func (b *Battle) indexOf(name string) int {
	for i, c := range b.characters {
		if c.Name() == name {
			return i
		}
	}
	return -1
}
