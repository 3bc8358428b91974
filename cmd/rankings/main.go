// Command rankings rates college football teams from completed games and
// prints the top-division table.
//
// Games come from the configured database by default, from a CSV file with
// -games, or from a generated round robin with -demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"

	"github.com/utakatalp/cfb-rankings/internal/config"
	"github.com/utakatalp/cfb-rankings/internal/league"
	"github.com/utakatalp/cfb-rankings/internal/metrics"
	"github.com/utakatalp/cfb-rankings/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

type options struct {
	games      string
	demo       int
	seed       int64
	team       string
	top        int
	season     int
	week       int
	conference string
	metrics    string
	migrate    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return err
	}

	fs := flag.NewFlagSet("rankings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.games, "games", "", "read games from this CSV file instead of the database")
	fs.IntVar(&opts.demo, "demo", 0, "rate a generated round robin of this many teams")
	fs.Int64Var(&opts.seed, "seed", 1, "random seed for -demo")
	fs.StringVar(&opts.team, "team", "", "print the game log of this team")
	fs.IntVar(&opts.top, "top", cfg.Output.TopN, "number of teams to print, 0 for all")
	fs.IntVar(&opts.season, "season", cfg.Season.Year, "season year")
	fs.IntVar(&opts.week, "week", cfg.Season.Week, "include games up to this week, 0 for all")
	fs.StringVar(&opts.conference, "conference", cfg.Season.Conference, "only games involving this conference (database only)")
	fs.StringVar(&opts.metrics, "metrics", cfg.Output.MetricsFile, "write run metrics to this textfile")
	fs.BoolVar(&opts.migrate, "migrate", false, "create the source tables before loading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Season.Year = opts.season
	cfg.Season.Week = opts.week
	cfg.Season.Conference = opts.conference

	logger := newLogger(stderr, cfg.Output.LogLevel)
	logger = log.With(logger, "run", uuid.NewString())

	if err := rate(ctx, cfg, opts, logger, stdout); err != nil {
		level.Error(logger).Log("msg", "rating failed", "err", err)
		return err
	}
	return nil
}

func rate(ctx context.Context, cfg *config.Config, opts options, logger log.Logger, w io.Writer) error {
	games, err := loadGames(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}

	rec := metrics.New()
	sys := league.NewSystem(
		league.WithFormula(cfg.Formula()),
		league.WithLogger(logger),
	)
	rec.ObserveLoad(sys.LoadGames(games))

	res, err := sys.Calculate(cfg.Convergence())
	if errors.Is(err, league.ErrNoTeams) {
		return fmt.Errorf("no games for season %d week %d: %w", cfg.Season.Year, cfg.Season.Week, err)
	}
	if err != nil {
		return err
	}
	rec.ObserveRun(res, sys.Len(), len(sys.Rankings(false)))

	if opts.team != "" {
		st, err := sys.Standing(opts.team)
		if err != nil {
			return err
		}
		league.PrintTeam(w, st)
	} else {
		league.PrintRankings(w, sys.Standings(opts.top))
	}

	if opts.metrics != "" {
		if err := rec.WriteFile(opts.metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		level.Debug(logger).Log("msg", "wrote metrics", "path", opts.metrics)
	}
	return nil
}

func loadGames(ctx context.Context, cfg *config.Config, opts options, logger log.Logger) ([]league.Game, error) {
	switch {
	case opts.demo > 0:
		names := make([]string, opts.demo)
		for i := range names {
			names[i] = fmt.Sprintf("Team %02d", i+1)
		}
		// every fifth team plays in the lower division
		top := func(name string) bool {
			var n int
			fmt.Sscanf(name, "Team %d", &n)
			return n%5 != 0
		}
		level.Info(logger).Log("msg", "simulating season", "teams", opts.demo, "seed", opts.seed)
		return upToWeek(league.SimulateSeason(names, top, opts.seed), cfg.Season.Week), nil

	case opts.games != "":
		f, err := os.Open(opts.games)
		if err != nil {
			return nil, fmt.Errorf("opening games file: %w", err)
		}
		defer f.Close()
		games, err := store.ReadGamesCSV(f, cfg.Season.TopDivision)
		if err != nil {
			return nil, err
		}
		level.Info(logger).Log("msg", "read games file", "path", opts.games, "games", len(games))
		return upToWeek(games, cfg.Season.Week), nil

	default:
		if cfg.DB.URL == "" {
			return nil, errors.New("DATABASE_URL is not set; use -games or -demo to rate without a database")
		}
		s, err := store.Open(cfg.DB.Driver, cfg.DB.URL)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		if opts.migrate {
			if err := s.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		games, err := s.LoadGames(ctx, store.Query{
			Season:      cfg.Season.Year,
			SeasonType:  cfg.Season.Type,
			Week:        cfg.Season.Week,
			Conference:  cfg.Season.Conference,
			TopDivision: cfg.Season.TopDivision,
		})
		if err != nil {
			return nil, err
		}
		level.Info(logger).Log("msg", "loaded games from database", "driver", cfg.DB.Driver,
			"season", cfg.Season.Year, "week", cfg.Season.Week, "games", len(games))
		return games, nil
	}
}

// upToWeek keeps games played up to and including week. Games without a week
// are always kept.
func upToWeek(games []league.Game, week int) []league.Game {
	if week <= 0 {
		return games
	}
	kept := games[:0]
	for _, g := range games {
		if g.Week <= week {
			kept = append(kept, g)
		}
	}
	return kept
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var allow level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}
	return level.NewFilter(logger, allow)
}
