package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wordcircuit/internal/app"
	"wordcircuit/internal/bot"
	"wordcircuit/internal/config"
	"wordcircuit/internal/domain"
	"wordcircuit/internal/ports/relay"
	"wordcircuit/internal/selfplay"
)

type options struct {
	seed          int64
	gameMode      string
	placementMode string
	dictionary    string
	level         string
	maxTurns      int
	games         int
	relayURL      string
	logLevel      string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "selfplay",
		Short:        "Play bot-vs-bot games and print every turn",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	defaults := config.Defaults()
	f := cmd.Flags()
	f.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "random seed of the first game")
	f.StringVar(&opts.gameMode, "game-mode", defaults.DefaultGameMode, "DYNAMIC or FIXED")
	f.StringVar(&opts.placementMode, "placement-mode", defaults.DefaultPlacementMode, "ACROSTIC or GO")
	f.StringVar(&opts.dictionary, "dictionary", defaults.DictionaryPath, "word list, one word per line")
	f.StringVar(&opts.level, "level", defaults.BotLevel, "bot level: standard or quick")
	f.IntVar(&opts.maxTurns, "max-turns", 200, "stop a game after this many turns")
	f.IntVar(&opts.games, "games", 1, "number of games to play")
	f.StringVar(&opts.relayURL, "relay", "", "relay base URL such as ws://localhost:7360; empty links the instances in memory")
	f.StringVar(&opts.logLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "zerolog level")
	return cmd
}

func run(ctx context.Context, out, errOut io.Writer, opts options) error {
	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()

	modes, err := domain.ParseModes(opts.gameMode, opts.placementMode)
	if err != nil {
		return err
	}
	botLevel, err := bot.ParseBotLevel(opts.level)
	if err != nil {
		return err
	}
	dict, err := loadDictionary(opts.dictionary)
	if err != nil {
		return err
	}

	var wins [app.Seats]int
	for i := 0; i < opts.games; i++ {
		seed := opts.seed + int64(i)
		fmt.Fprintf(out, "game %d  seed %d  %s/%s\n", i+1, seed, modes.Game, modes.Placement)

		runner := selfplay.NewRunner(dict, selfplay.Config{
			Modes:    modes,
			Level:    botLevel,
			Seed:     seed,
			MaxTurns: opts.maxTurns,
		}, logger)
		runner.Report = func(rec selfplay.TurnRecord) { fmt.Fprintln(out, formatTurn(rec)) }

		res, err := playOnce(ctx, runner, opts.relayURL, logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, formatResult(res))
		switch {
		case res.Scores[domain.SideA] > res.Scores[domain.SideB]:
			wins[domain.SideA]++
		case res.Scores[domain.SideB] > res.Scores[domain.SideA]:
			wins[domain.SideB]++
		}
	}
	if opts.games > 1 {
		fmt.Fprintf(out, "wins  A %d  B %d  draws %d\n", wins[domain.SideA], wins[domain.SideB], opts.games-wins[domain.SideA]-wins[domain.SideB])
	}
	return nil
}

func playOnce(ctx context.Context, runner *selfplay.Runner, relayURL string, logger zerolog.Logger) (selfplay.Result, error) {
	if relayURL == "" {
		return runner.Run(ctx)
	}

	secret := os.Getenv("WORDCIRCUIT_PEER_TOKEN_SECRET")
	if secret == "" {
		return selfplay.Result{}, fmt.Errorf("WORDCIRCUIT_PEER_TOKEN_SECRET is required with --relay")
	}
	cfg := config.GetGameConfig()
	tokens := app.NewPeerTokenService(secret, cfg.PeerTokenIssuer, cfg.PeerTokenTTL())
	room := uuid.NewString()
	logger.Info().Str("room", room).Str("relay", relayURL).Msg("playing through relay")

	var links [app.Seats]*relay.Client
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		tok, err := tokens.Issue(room, "selfplay-"+side.String(), side)
		if err != nil {
			return selfplay.Result{}, err
		}
		c, err := relay.Dial(ctx, relayURL, room, tok)
		if err != nil {
			return selfplay.Result{}, err
		}
		defer c.Close()
		links[side] = c
	}
	return runner.RunOver(ctx, links[domain.SideA], links[domain.SideB])
}

func loadDictionary(path string) (*domain.WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return domain.LoadWordList(f)
}

func formatTurn(rec selfplay.TurnRecord) string {
	if rec.Pass {
		return fmt.Sprintf("%4d  %s  pass%28s[%d %d]", rec.Turn, rec.Side, "", rec.Totals[0], rec.Totals[1])
	}
	return fmt.Sprintf("%4d  %s  %-16s base %3d  cascade %4d  [%d %d]",
		rec.Turn, rec.Side, strings.Join(rec.Words, ","), rec.Base, rec.Cascade, rec.Totals[0], rec.Totals[1])
}

func formatResult(res selfplay.Result) string {
	winner := "draw"
	switch {
	case res.Scores[domain.SideA] > res.Scores[domain.SideB]:
		winner = "A wins"
	case res.Scores[domain.SideB] > res.Scores[domain.SideA]:
		winner = "B wins"
	}
	return fmt.Sprintf("final  A %d  B %d  (%s, %s)", res.Scores[domain.SideA], res.Scores[domain.SideB], res.Reason, winner)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
