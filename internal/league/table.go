package league

import (
	"fmt"
	"io"
)

// Standings returns the ranked top-division teams with their game logs.
// A topN of zero or less returns every ranked team.
func (s *System) Standings(topN int) []Standing {
	ranked := s.Rankings(true)
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	out := make([]Standing, 0, len(ranked))
	for i, t := range ranked {
		out = append(out, s.standing(t, i+1))
	}
	return out
}

// Standing returns the detail view of a single team. Rank is the team's
// position in Rankings, or 0 for a team outside the top division.
func (s *System) Standing(name string) (Standing, error) {
	t, ok := s.Find(name)
	if !ok {
		return Standing{}, fmt.Errorf("%q: %w", name, ErrUnknownTeam)
	}
	rank := 0
	for i, r := range s.Rankings(true) {
		if r.ID == t.ID {
			rank = i + 1
			break
		}
	}
	return s.standing(t, rank), nil
}

func (s *System) standing(t *Team, rank int) Standing {
	wins, losses := t.Record()
	st := Standing{
		Rank:   rank,
		Name:   t.Name,
		Wins:   wins,
		Losses: losses,
		Rating: t.Rating,
		Games:  make([]GameLine, 0, len(t.Games)),
	}
	for _, g := range t.Games {
		opp := s.teams[g.Opponent]
		ow, ol := opp.Record()
		st.Games = append(st.Games, GameLine{
			Opponent:       opp.Name,
			OpponentWins:   ow,
			OpponentLosses: ol,
			OpponentRating: opp.Rating,
			Won:            g.Won,
			Margin:         g.Margin,
			Value:          g.Value,
			Week:           g.Week,
		})
	}
	return st
}

func PrintRankings(w io.Writer, table []Standing) {
	fmt.Fprintf(w, "%-6s %-25s %-10s %8s\n", "Rank", "Team", "Record", "Rating")
	for _, st := range table {
		fmt.Fprintf(w, "%-6d %-25s %-10s %8.2f\n",
			st.Rank,
			st.Name,
			fmt.Sprintf("%d-%d", st.Wins, st.Losses),
			st.Rating,
		)
	}
}

// PrintTeam writes one line per game, W or L first, then the opponent's
// record and rating, the margin and the value the game earned.
func PrintTeam(w io.Writer, st Standing) {
	fmt.Fprintf(w, "%s (%d-%d) rating %.2f\n", st.Name, st.Wins, st.Losses, st.Rating)
	for _, g := range st.Games {
		result := "L"
		if g.Won {
			result = "W"
		}
		fmt.Fprintf(w, "  wk %2d %s vs %-25s (%d-%d, %6.2f) margin %+4d value %6.2f\n",
			g.Week, result, g.Opponent,
			g.OpponentWins, g.OpponentLosses, g.OpponentRating,
			g.Margin, g.Value,
		)
	}
}
