package arena

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"turnbattle/internal/battle"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// PlayersFromRoster builds one player per entry. Character i rolls its hits
// from a source seeded with seed+i, so a seed replays the same battle.
func PlayersFromRoster(entries []Entry, seed int64) ([]*battle.Player, error) {
	players := make([]*battle.Player, 0, len(entries))
	for i, e := range entries {
		src := rand.New(rand.NewSource(seed + int64(i)))
		p, err := e.NewPlayer(battle.WithRand(src))
		if err != nil {
			return nil, fmt.Errorf("roster entry %s: %w", e.Name, err)
		}
		players = append(players, p)
	}
	return players, nil
}
