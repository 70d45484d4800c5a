package battle

import "fmt"

// Player binds a display name to the character it controls.
type Player struct {
	name      string
	character *Character
}

func NewPlayer(name string, c *Character) *Player {
	return &Player{name: name, character: c}
}

// Name is the player's own name, not the character's.
func (p *Player) Name() string          { return p.name }
func (p *Player) Character() *Character { return p.character }

func (p *Player) JoinBattle(b *Battle) error  { return p.character.JoinBattle(b) }
func (p *Player) LeaveBattle(b *Battle) error { return p.character.LeaveBattle(b) }
func (p *Player) InBattle() bool              { return p.character.IsInBattle() }

// HasTurn reports whether the player's character holds the turn in its battle.
func (p *Player) HasTurn() (bool, error) {
	b := p.character.Battle()
	if b == nil {
		return false, fmt.Errorf("player %s: %w", p.name, ErrNotInBattle)
	}
	current, err := b.Turn()
	if err != nil {
		return false, err
	}
	return current.Name() == p.character.Name(), nil
}
