package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/utakatalp/cfb-rankings/internal/league"
	"github.com/utakatalp/cfb-rankings/internal/store"
)

func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunDemo(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "info")
	out, logs, err := runArgs(t, "-demo", "10", "-top", "5")
	if err != nil {
		t.Fatalf("run() error = %v\n%s", err, logs)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected a header and 5 rows, got:\n%s", out)
	}
	// Team 05 and Team 10 are lower division
	if strings.Contains(out, "Team 05") || strings.Contains(out, "Team 10") {
		t.Errorf("lower-division team printed:\n%s", out)
	}
	if !strings.Contains(logs, "run=") || !strings.Contains(logs, "ratings converged") {
		t.Errorf("unexpected log output:\n%s", logs)
	}
}

func TestRunGamesFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "games.csv")
	csv := `week,home_team,home_points,away_team,away_points,home_classification,away_classification
1,A,30,B,10,fbs,fbs
1,B,14,C,0,fbs,fcs
2,A,,C,,fbs,fcs
`
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	metricsPath := filepath.Join(t.TempDir(), "run.prom")

	out, logs, err := runArgs(t, "-games", path, "-metrics", metricsPath)
	if err != nil {
		t.Fatalf("run() error = %v\n%s", err, logs)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "A") || !strings.Contains(lines[2], "B") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if strings.Contains(out, " C ") {
		t.Errorf("lower-division C printed:\n%s", out)
	}

	b, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "cfb_rankings_games_skipped_total 1") {
		t.Errorf("metrics file:\n%s", b)
	}

	out, _, err = runArgs(t, "-games", path, "-team", "B")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "B (1-1)") {
		t.Errorf("unexpected team output:\n%s", out)
	}

	if _, _, err := runArgs(t, "-games", path, "-team", "Z"); !errors.Is(err, league.ErrUnknownTeam) {
		t.Errorf("unknown team error = %v", err)
	}
}

func TestRunWeekFilter(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "games.csv")
	csv := "week,home_team,home_points,away_team,away_points\n1,A,21,B,20\n5,C,21,D,20\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runArgs(t, "-games", path, "-week", "2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "C") || strings.Contains(out, "D ") {
		t.Errorf("week 5 game included:\n%s", out)
	}
}

func TestRunNoGames(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(path, []byte("home_team,away_team,home_points,away_points\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, logs, err := runArgs(t, "-games", path)
	if !errors.Is(err, league.ErrNoTeams) {
		t.Errorf("run() error = %v, expected ErrNoTeams", err)
	}
	if !strings.Contains(logs, "no games for season") {
		t.Errorf("error not logged:\n%s", logs)
	}
}

func TestRunRequiresASource(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, _, err := runArgs(t)
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("run() error = %v, expected a missing DATABASE_URL error", err)
	}
}

func TestRunDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "games.db")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("SEASON_TYPE", "regular")

	// the tables exist but hold nothing for 2024 yet
	if _, _, err := runArgs(t, "-migrate", "-season", "2024"); !errors.Is(err, league.ErrNoTeams) {
		t.Fatalf("run() on empty database error = %v", err)
	}

	s, err := store.Open("sqlite3", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	home, away := 35, 31
	if err := s.SaveGames(ctx, []store.GameRow{
		{ID: 401, Season: 2024, Week: 1, HomeTeam: "Oregon", AwayTeam: "Idaho", HomePoints: &home, AwayPoints: &away, Completed: true},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTeams(ctx, []store.TeamRow{
		{School: "Oregon", Conference: "Big Ten", Classification: "fbs"},
		{School: "Idaho", Conference: "Big Sky", Classification: "fcs"},
	}); err != nil {
		t.Fatal(err)
	}

	out, logs, err := runArgs(t, "-season", "2024")
	if err != nil {
		t.Fatalf("run() error = %v\n%s", err, logs)
	}
	if !strings.Contains(out, "Oregon") || strings.Contains(out, "Idaho") {
		t.Errorf("unexpected table:\n%s", out)
	}
}
