// Package selfplay pits two bot-driven engine instances against each other.
// Each instance owns its own copy of the game and learns the opponent's moves
// only from the snapshots it receives.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wordcircuit/internal/app"
	"wordcircuit/internal/bot"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/ports"
	"wordcircuit/internal/wire"
)

// EndReasonTurnLimit is reported when MaxTurns is reached before the game ends.
const EndReasonTurnLimit = "turn_limit"

const defaultMaxTurns = 200

// Config selects the match played by a Runner.
type Config struct {
	Modes    domain.Modes
	Level    bot.BotLevel
	Seed     int64
	MaxTurns int
}

// TurnRecord is the outcome of one turn as seen by the side that played it.
type TurnRecord struct {
	Turn    int
	Side    domain.Side
	Pass    bool
	Words   []string
	Base    int
	Cascade int
	Points  int
	Totals  [app.Seats]int
}

// Result summarises a finished run.
type Result struct {
	Turns  []TurnRecord
	Scores [app.Seats]int
	Reason string
}

// Runner plays bot-vs-bot games.
type Runner struct {
	dict domain.Dictionary
	cfg  Config
	log  zerolog.Logger

	// Report, when set, is called after every turn. Calls are serialised.
	Report func(TurnRecord)

	mu      sync.Mutex
	records []TurnRecord
}

func NewRunner(dict domain.Dictionary, cfg Config, logger zerolog.Logger) *Runner {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	return &Runner{dict: dict, cfg: cfg, log: logger}
}

// Run plays one game with the instances linked in memory.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	a, b := NewPipe()
	defer a.Close()
	return r.RunOver(ctx, a, b)
}

// RunOver plays one game with side A publishing on linkA and side B on linkB.
func (r *Runner) RunOver(ctx context.Context, linkA, linkB ports.SnapshotLink) (Result, error) {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()

	var instances [app.Seats]*instance
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		link := linkA
		if side == domain.SideB {
			link = linkB
		}
		inst, err := r.newInstance(side, link)
		if err != nil {
			return Result{}, err
		}
		instances[side] = inst
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, inst := range instances {
		g.Go(func() error {
			if err := inst.run(gctx); err != nil {
				return fmt.Errorf("side %s: %w", inst.side, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	ga, gb := instances[domain.SideA].game, instances[domain.SideB].game
	if ga.Players[domain.SideA].Score != gb.Players[domain.SideA].Score ||
		ga.Players[domain.SideB].Score != gb.Players[domain.SideB].Score ||
		ga.Turn != gb.Turn {
		return Result{}, fmt.Errorf("instances diverged at turn %d/%d", ga.Turn, gb.Turn)
	}

	r.mu.Lock()
	records := append([]TurnRecord(nil), r.records...)
	r.mu.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].Turn < records[j].Turn })

	res := Result{
		Turns:  records,
		Scores: [app.Seats]int{ga.Players[domain.SideA].Score, ga.Players[domain.SideB].Score},
		Reason: endReason(ga),
	}
	r.log.Info().
		Str("reason", res.Reason).
		Ints("scores", res.Scores[:]).
		Int("turns", len(records)).
		Msg("self-play finished")
	return res, nil
}

func endReason(g *domain.Game) string {
	switch {
	case g.Phase != domain.PhaseEnded:
		return EndReasonTurnLimit
	case g.Passes >= domain.MaxConsecutivePasses:
		return app.EndReasonPasses
	default:
		return app.EndReasonTilesOut
	}
}

func (r *Runner) record(rec TurnRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if r.Report != nil {
		r.Report(rec)
	}
}

type instance struct {
	side     domain.Side
	link     ports.SnapshotLink
	svc      *app.Service
	agent    *bot.Agent
	modes    domain.Modes
	maxTurns int
	runner   *Runner
	log      zerolog.Logger

	game *domain.Game
}

func (r *Runner) newInstance(side domain.Side, link ports.SnapshotLink) (*instance, error) {
	logger := r.log.With().Str("side", side.String()).Logger()
	seed := r.cfg.Seed*4 + int64(side)*2
	brain, err := bot.NewBrain(r.cfg.Level, r.dict, rand.New(rand.NewSource(seed+1)), logger)
	if err != nil {
		return nil, err
	}
	return &instance{
		side:     side,
		link:     link,
		svc:      app.NewService(rand.New(rand.NewSource(seed)), r.dict, logger),
		agent:    bot.NewAgent("selfplay-"+side.String(), side, brain),
		modes:    r.cfg.Modes,
		maxTurns: r.cfg.MaxTurns,
		runner:   r,
		log:      logger,
	}, nil
}

// run alternates between playing and waiting for the opponent's snapshot
// until the game ends or the turn limit is reached. Side A deals the game and
// announces it with an init snapshot.
func (in *instance) run(ctx context.Context) error {
	if in.side == domain.SideA {
		in.game, _ = in.svc.NewGame(in.modes)
		if err := in.publish(ctx, domain.IntentInit); err != nil {
			return err
		}
	}

	for {
		if in.game == nil || in.game.Current != in.side {
			if err := in.receive(ctx); err != nil {
				return err
			}
		} else {
			rec, err := in.playTurn(ctx)
			if err != nil {
				return err
			}
			in.runner.record(rec)
			if err := in.publish(ctx, domain.IntentTurnCommit); err != nil {
				return err
			}
		}
		if in.finished() {
			return nil
		}
	}
}

func (in *instance) finished() bool {
	return in.game.Phase == domain.PhaseEnded || in.game.Turn > in.maxTurns
}

func (in *instance) publish(ctx context.Context, intent domain.Intent) error {
	payload := wire.MarshalSnapshot(in.game.Snapshot(in.side, intent))
	if err := in.link.Send(ctx, payload); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (in *instance) receive(ctx context.Context) error {
	data, err := in.link.Receive(ctx)
	if err != nil {
		return fmt.Errorf("receive snapshot: %w", err)
	}
	snap, err := wire.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	if in.game == nil {
		in.game = &domain.Game{}
	}
	if err := in.game.ApplySnapshot(snap, in.side); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}
	in.log.Debug().Int("turn", in.game.Turn).Msg("snapshot applied")
	return nil
}

func (in *instance) playTurn(ctx context.Context) (TurnRecord, error) {
	move, err := in.agent.Play(ctx, in.game)
	if err != nil {
		return TurnRecord{}, err
	}

	rec := TurnRecord{Turn: in.game.Turn, Side: in.side, Pass: true}
	var events []app.Event
	if !move.Pass {
		events, err = in.svc.ApplyPlacements(in.game, in.side, move.Placements)
		if err != nil {
			in.log.Warn().Err(err).Str("word", move.Word).Msg("search move rejected, passing")
		}
	}
	if move.Pass || err != nil {
		if events, err = in.svc.PassTurn(in.game, in.side); err != nil {
			return TurnRecord{}, err
		}
	}

	for _, ev := range events {
		if p, ok := ev.Payload.(app.MoveCommittedPayload); ok {
			rec.Pass = false
			rec.Words = p.Words
			rec.Base = p.Base
			rec.Cascade = p.Cascade
			rec.Points = p.Base + p.Cascade
		}
	}
	rec.Totals = [app.Seats]int{in.game.Players[domain.SideA].Score, in.game.Players[domain.SideB].Score}
	return rec, nil
}
