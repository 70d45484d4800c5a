// Package arena runs battles without player input: every character attacks
// the next one in turn order with its basic Hit until one is left standing.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"turnbattle/internal/battle"
)

const (
	OutcomeWinner = "winner"
	OutcomeDraw   = "draw"

	DefaultMaxTurns = 1000
)

var ErrAlreadyRun = errors.New("arena has already run")

// Result is the final state of an arena battle.
type Result struct {
	ID         string    `json:"id"`
	Battle     string    `json:"battle"`
	Outcome    string    `json:"outcome"`
	Winner     string    `json:"winner,omitempty"`
	Turns      int       `json:"turns"`
	Dead       []string  `json:"dead"`
	Report     string    `json:"report"`
	FinishedAt time.Time `json:"finished_at"`
}

// Recorder persists finished battles.
type Recorder interface {
	SaveResult(ctx context.Context, r Result) error
}

type Arena struct {
	mu        sync.RWMutex
	battle    *battle.Battle
	players   []*battle.Player
	log       *zap.Logger
	publisher Publisher
	recorder  Recorder
	metrics   *Metrics
	pace      time.Duration
	maxTurns  int

	// OnFinish is called once with the result, after it was recorded.
	OnFinish func(Result)

	turns   int
	report  string
	running bool
	result  *Result
}

type Option func(*Arena)

func WithLogger(log *zap.Logger) Option { return func(a *Arena) { a.log = log } }

func WithPublisher(p Publisher) Option { return func(a *Arena) { a.publisher = p } }

func WithRecorder(r Recorder) Option { return func(a *Arena) { a.recorder = r } }

func WithMetrics(m *Metrics) Option { return func(a *Arena) { a.metrics = m } }

// WithPace waits d between turns. Zero runs turns back to back.
func WithPace(d time.Duration) Option { return func(a *Arena) { a.pace = d } }

// WithMaxTurns ends the battle as a draw after n attacks.
func WithMaxTurns(n int) Option { return func(a *Arena) { a.maxTurns = n } }

func New(b *battle.Battle, opts ...Option) *Arena {
	a := &Arena{
		battle:    b,
		publisher: nopPublisher{},
		maxTurns:  DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}
	a.log = a.log.With(zap.String("battle", b.Name()))
	a.report = b.Stats()
	return a
}

func (a *Arena) Name() string           { return a.battle.Name() }
func (a *Arena) Battle() *battle.Battle { return a.battle }

// Report returns the stats report as of the last resolved turn.
func (a *Arena) Report() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.report
}

func (a *Arena) Turns() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.turns
}

// Result returns the outcome once Run has finished.
func (a *Arena) Result() (Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.result == nil {
		return Result{}, false
	}
	return *a.result, true
}

func (a *Arena) Players() []*battle.Player {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*battle.Player(nil), a.players...)
}

// Join enters players into the battle in the given order, which becomes the
// turn order. It stops at the first player that cannot join.
func (a *Arena) Join(players ...*battle.Player) error {
	for _, p := range players {
		if err := p.JoinBattle(a.battle); err != nil {
			return fmt.Errorf("player %s: %w", p.Name(), err)
		}

		a.mu.Lock()
		a.players = append(a.players, p)
		a.report = a.battle.Stats()
		a.mu.Unlock()

		ev := newEvent(a.Name(), EventJoin, 0)
		ev.Actor = p.Character().Name()
		ev.Message = fmt.Sprintf("%s joined as %s", p.Name(), p.Character().Name())
		a.emit(ev)
		a.log.Info("Player joined",
			zap.String("player", p.Name()),
			zap.String("character", p.Character().Name()))
	}
	return nil
}

// Run starts the battle and resolves turns until at most one character is
// left, the turn limit is hit, or ctx is done.
func (a *Arena) Run(ctx context.Context) (Result, error) {
	a.mu.Lock()
	if a.running || a.result != nil {
		a.mu.Unlock()
		return Result{}, ErrAlreadyRun
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	a.battle.Start()
	a.emit(newEvent(a.Name(), EventStart, 0))
	a.log.Info("Battle started", zap.Int("characters", a.battle.Len()))

	var tick <-chan time.Time
	if a.pace > 0 {
		ticker := time.NewTicker(a.pace)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		remaining := a.battle.Characters()
		switch {
		case len(remaining) == 1:
			return a.finish(ctx, OutcomeWinner, remaining[0].Name())
		case len(remaining) == 0:
			return a.finish(ctx, OutcomeDraw, "")
		case a.Turns() >= a.maxTurns:
			a.log.Warn("Turn limit reached", zap.Int("max_turns", a.maxTurns))
			return a.finish(ctx, OutcomeDraw, "")
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if err := a.step(); err != nil {
			a.log.Error("Turn failed", zap.Error(err))
			return Result{}, err
		}
	}
}

func (a *Arena) step() error {
	attacker, err := a.battle.Turn()
	if err != nil {
		return err
	}
	target := a.nextOpponent(attacker)

	res, err := attacker.Attack(target, attacker.Hit)
	if err != nil {
		return fmt.Errorf("turn %d: %w", a.Turns()+1, err)
	}
	a.metrics.Attacks.Inc()

	a.mu.Lock()
	a.turns++
	turn := a.turns
	a.report = a.battle.Stats()
	report := a.report
	a.mu.Unlock()

	ev := newEvent(a.Name(), EventAttack, turn)
	ev.Actor = res.Attacker
	ev.Target = res.Target
	ev.Damage = res.Damage
	ev.Message = res.String()
	ev.Report = report
	a.emit(ev)
	a.log.Debug("Attack resolved",
		zap.Int("turn", turn),
		zap.String("attacker", res.Attacker),
		zap.String("target", res.Target),
		zap.Float64("damage", res.Damage))

	if res.Killed {
		a.metrics.Deaths.Inc()
		death := newEvent(a.Name(), EventDeath, turn)
		death.Actor = res.Target
		death.Message = fmt.Sprintf("%s is dead", res.Target)
		death.Report = report
		a.emit(death)
		a.log.Info("Character died", zap.Int("turn", turn), zap.String("character", res.Target))
	}

	// A kill never moves the turn away from the attacker, so this always
	// hands the turn to whoever follows it.
	a.battle.NextTurn()
	return nil
}

// nextOpponent is the character after attacker in turn order.
func (a *Arena) nextOpponent(attacker *battle.Character) *battle.Character {
	roster := a.battle.Characters()
	for i, c := range roster {
		if c == attacker {
			return roster[(i+1)%len(roster)]
		}
	}
	return roster[0]
}

func (a *Arena) finish(ctx context.Context, outcome, winner string) (Result, error) {
	dead := a.battle.Dead()
	names := make([]string, 0, len(dead))
	for _, c := range dead {
		names = append(names, c.Name())
	}

	res := Result{
		ID:         "r_" + uuid.NewString(),
		Battle:     a.Name(),
		Outcome:    outcome,
		Winner:     winner,
		Turns:      a.Turns(),
		Dead:       names,
		Report:     a.battle.Stats(),
		FinishedAt: time.Now().UTC(),
	}

	a.mu.Lock()
	a.result = &res
	a.report = res.Report
	a.mu.Unlock()

	a.metrics.Finished.WithLabelValues(outcome).Inc()

	ev := newEvent(a.Name(), EventFinish, res.Turns)
	ev.Actor = winner
	ev.Message = outcome
	a.emit(ev)
	a.log.Info("Battle finished",
		zap.String("outcome", outcome),
		zap.String("winner", winner),
		zap.Int("turns", res.Turns))

	if a.recorder != nil {
		if err := a.recorder.SaveResult(ctx, res); err != nil {
			a.log.Error("Failed to record result", zap.String("result_id", res.ID), zap.Error(err))
		}
	}
	if a.OnFinish != nil {
		a.OnFinish(res)
	}
	return res, nil
}

func (a *Arena) emit(ev Event) {
	if ev.Report == "" {
		ev.Report = a.Report()
	}
	a.publisher.Publish(ev)
}
