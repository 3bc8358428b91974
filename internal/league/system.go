package league

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

var (
	// ErrNoTeams is returned by Calculate when no game has been ingested.
	ErrNoTeams = errors.New("no teams to rate")
	// ErrIncompleteGame marks a game with a missing team name or score.
	ErrIncompleteGame = errors.New("incomplete game")
	// ErrUnknownTeam is returned when a team name is not registered.
	ErrUnknownTeam = errors.New("unknown team")
)

// Convergence bounds the iterative rating computation.
type Convergence struct {
	Iterations int
	Tolerance  float64
}

// DefaultConvergence returns a cap of 20 passes and a tolerance of 0.01.
func DefaultConvergence() Convergence {
	return Convergence{Iterations: 20, Tolerance: 0.01}
}

// Result describes how a Calculate run ended.
type Result struct {
	Passes    int
	Converged bool
	MaxChange float64
}

// System owns the team registry and runs the rating computation.
//
// A System is not safe for concurrent mutation. Use one System per
// computation, or serialize AddGame and Calculate externally. Reading the
// results of a finished computation from several goroutines is fine.
type System struct {
	teams       []*Team
	index       map[string]TeamID
	topDivision map[string]struct{}

	formula Formula
	logger  log.Logger
}

// Option configures a System.
type Option func(*System)

// WithFormula overrides DefaultFormula.
func WithFormula(f Formula) Option {
	return func(s *System) { s.formula = f }
}

// WithLogger sets the logger used to report ingestion and convergence.
func WithLogger(l log.Logger) Option {
	return func(s *System) { s.logger = l }
}

func NewSystem(opts ...Option) *System {
	s := &System{
		index:       make(map[string]TeamID),
		topDivision: make(map[string]struct{}),
		formula:     DefaultFormula(),
		logger:      log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Formula returns the parameters the System values games with.
func (s *System) Formula() Formula { return s.formula }

// Team returns the team called name, registering it on first use.
func (s *System) Team(name string) *Team {
	if id, ok := s.index[name]; ok {
		return s.teams[id]
	}
	t := &Team{ID: TeamID(len(s.teams)), Name: name, Rating: InitialRating}
	s.teams = append(s.teams, t)
	s.index[name] = t.ID
	return t
}

// Lookup returns the team registered under id.
func (s *System) Lookup(id TeamID) *Team { return s.teams[id] }

// Find returns the team called name without registering it.
func (s *System) Find(name string) (*Team, bool) {
	id, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.teams[id], true
}

// Len reports the number of registered teams.
func (s *System) Len() int { return len(s.teams) }

// TopDivision reports whether name has been flagged as a top-division team.
func (s *System) TopDivision(name string) bool {
	_, ok := s.topDivision[name]
	return ok
}

// AddResult records a completed game as two mirrored results. Division
// membership only grows: a false flag never removes a team from the set.
func (s *System) AddResult(
	home string, homePoints int,
	away string, awayPoints int,
	homeTop, awayTop bool,
	week int,
) {
	h := s.Team(home)
	a := s.Team(away)

	if homeTop {
		s.topDivision[home] = struct{}{}
	}
	if awayTop {
		s.topDivision[away] = struct{}{}
	}

	margin := homePoints - awayPoints

	// a tie leaves Won false on both sides
	h.Games = append(h.Games, GameResult{
		Opponent:            a.ID,
		Won:                 margin > 0,
		Margin:              margin,
		OpponentTopDivision: awayTop,
		Week:                week,
	})
	a.Games = append(a.Games, GameResult{
		Opponent:            h.ID,
		Won:                 margin < 0,
		Margin:              -margin,
		OpponentTopDivision: homeTop,
		Week:                week,
	})
}

// AddGame validates g and records it.
func (s *System) AddGame(g Game) error {
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return fmt.Errorf("week %d %q vs %q: missing team: %w", g.Week, g.HomeTeam, g.AwayTeam, ErrIncompleteGame)
	}
	if g.HomePoints == nil || g.AwayPoints == nil {
		return fmt.Errorf("week %d %s vs %s: missing score: %w", g.Week, g.HomeTeam, g.AwayTeam, ErrIncompleteGame)
	}
	s.AddResult(
		g.HomeTeam, *g.HomePoints,
		g.AwayTeam, *g.AwayPoints,
		g.HomeTopDivision, g.AwayTopDivision,
		g.Week,
	)
	return nil
}

// LoadGames records every complete game and skips the rest.
func (s *System) LoadGames(games []Game) (added, skipped int) {
	for _, g := range games {
		if err := s.AddGame(g); err != nil {
			level.Debug(s.logger).Log("msg", "skipping game", "err", err)
			skipped++
			continue
		}
		added++
	}
	level.Info(s.logger).Log("msg", "loaded games", "added", added, "skipped", skipped,
		"teams", len(s.teams), "top_division", len(s.topDivision))
	return added, skipped
}

// Calculate iterates ratings towards a fixed point.
//
// Each pass values every game from the opponent ratings as they stood at the
// start of the pass, then sets each rating to the sum of its game values.
// Iteration stops once no rating moves by Tolerance or more, or after
// Iterations passes. Running out of passes is not an error. A last valuation
// runs afterwards so stored game values match the final ratings.
func (s *System) Calculate(c Convergence) (Result, error) {
	if len(s.teams) == 0 {
		return Result{}, ErrNoTeams
	}

	for _, t := range s.teams {
		t.Rating = InitialRating
	}

	var res Result
	previous := make([]float64, len(s.teams))
	for pass := 0; pass < c.Iterations; pass++ {
		s.snapshot(previous)
		s.updateValues(previous, s.forward())
		s.aggregate()

		res.Passes = pass + 1
		res.MaxChange = 0
		for i, t := range s.teams {
			res.MaxChange = math.Max(res.MaxChange, math.Abs(t.Rating-previous[i]))
		}
		level.Debug(s.logger).Log("msg", "pass complete", "pass", res.Passes, "max_change", res.MaxChange)

		if res.MaxChange < c.Tolerance {
			res.Converged = true
			break
		}
	}

	s.snapshot(previous)
	s.updateValues(previous, s.forward())

	if res.Converged {
		level.Info(s.logger).Log("msg", "ratings converged", "passes", res.Passes, "max_change", res.MaxChange)
	} else {
		level.Info(s.logger).Log("msg", "iteration cap reached", "passes", res.Passes, "max_change", res.MaxChange)
	}
	return res, nil
}

func (s *System) snapshot(dst []float64) {
	for i, t := range s.teams {
		dst[i] = t.Rating
	}
}

func (s *System) forward() []TeamID {
	order := make([]TeamID, len(s.teams))
	for i := range order {
		order[i] = TeamID(i)
	}
	return order
}

// updateValues refreshes division flags and game values for the teams in
// order. Opponent ratings come only from ratings, never from s.teams, so the
// result is the same for any order.
func (s *System) updateValues(ratings []float64, order []TeamID) {
	for _, id := range order {
		t := s.teams[id]
		for i := range t.Games {
			g := &t.Games[i]
			g.OpponentTopDivision = s.TopDivision(s.teams[g.Opponent].Name)
			g.Value = s.formula.Value(*g, ratings[g.Opponent])
		}
	}
}

func (s *System) aggregate() {
	for _, t := range s.teams {
		sum := 0.0
		for _, g := range t.Games {
			sum += g.Value
		}
		t.Rating = sum
	}
}

// Rankings returns the top-division teams. When sorted, teams are ordered by
// rating descending, with equal ratings ordered by name ascending; otherwise
// they come in the order they were first seen.
func (s *System) Rankings(sorted bool) []*Team {
	teams := make([]*Team, 0, len(s.topDivision))
	for _, t := range s.teams {
		if s.TopDivision(t.Name) {
			teams = append(teams, t)
		}
	}
	if sorted {
		sort.Slice(teams, func(i, j int) bool {
			a, b := teams[i], teams[j]
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.Name < b.Name
		})
	}
	return teams
}
