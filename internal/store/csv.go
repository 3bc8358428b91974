package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/utakatalp/cfb-rankings/internal/league"
)

// ReadGamesCSV parses games from CSV with a header row. Columns are matched by
// name: home_team, away_team, home_points and away_points are required; week,
// home_classification and away_classification are optional. Empty points
// produce a game with nil points, and a missing classification counts as the
// top division.
func ReadGamesCSV(r io.Reader, topDivision string) ([]league.Game, error) {
	if topDivision == "" {
		topDivision = DefaultTopDivision
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reading games csv: missing header")
		}
		return nil, fmt.Errorf("reading games csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"home_team", "away_team", "home_points", "away_points"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("reading games csv: missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	isTop := func(class string) bool {
		return class == "" || strings.EqualFold(class, topDivision)
	}

	var games []league.Game
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading games csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		g := league.Game{
			HomeTeam:        field(rec, "home_team"),
			AwayTeam:        field(rec, "away_team"),
			HomeTopDivision: isTop(field(rec, "home_classification")),
			AwayTopDivision: isTop(field(rec, "away_classification")),
		}
		if w := field(rec, "week"); w != "" {
			if g.Week, err = strconv.Atoi(w); err != nil {
				return nil, fmt.Errorf("games csv line %d: week %q: %w", line, w, err)
			}
		}
		if g.HomePoints, err = points(field(rec, "home_points")); err != nil {
			return nil, fmt.Errorf("games csv line %d: home_points: %w", line, err)
		}
		if g.AwayPoints, err = points(field(rec, "away_points")); err != nil {
			return nil, fmt.Errorf("games csv line %d: away_points: %w", line, err)
		}
		games = append(games, g)
	}
	return games, nil
}

func points(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
