package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/utakatalp/cfb-rankings/internal/league"
)

// DefaultTopDivision is the classification treated as the top division when
// a query does not name one. Teams without a classification fall into it.
const DefaultTopDivision = "fbs"

// Store wraps a SQL connection holding provider games and team metadata.
// Postgres ("postgres") and SQLite ("sqlite3") are supported.
type Store struct {
	DB *sql.DB
}

// TeamRow is a team as mirrored from the data provider.
type TeamRow struct {
	School         string
	Conference     string
	Classification string
}

// GameRow is a game as mirrored from the data provider. Points stay nil
// until the game is played.
type GameRow struct {
	ID                     int64
	Season                 int
	Week                   int
	SeasonType             string
	HomeTeam, AwayTeam     string
	HomePoints, AwayPoints *int
	Completed              bool
}

// Query selects the games fed to the rating engine.
type Query struct {
	Season     int
	SeasonType string
	// Week includes every game up to and including this week; 0 means all.
	Week int
	// Conference keeps games where either side plays in it; "" means all.
	Conference  string
	TopDivision string
}

// Open opens a connection with the given driver and verifies it early.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			school         TEXT PRIMARY KEY,
			conference     TEXT,
			classification TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id          BIGINT  PRIMARY KEY,
			season      INT     NOT NULL,
			week        INT     NOT NULL,
			season_type TEXT    NOT NULL DEFAULT 'regular',
			home_team   TEXT    NOT NULL,
			away_team   TEXT    NOT NULL,
			home_points INT,
			away_points INT,
			completed   BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS games_season_week ON games (season, season_type, week)`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// SaveTeams upserts team metadata.
func (s *Store) SaveTeams(ctx context.Context, teams []TeamRow) error {
	const q = `
	INSERT INTO teams (school, conference, classification)
	VALUES ($1, $2, $3)
	ON CONFLICT (school) DO UPDATE
	  SET conference = EXCLUDED.conference,
	      classification = EXCLUDED.classification
	`
	for _, t := range teams {
		if _, err := s.DB.ExecContext(ctx, q, t.School, t.Conference, t.Classification); err != nil {
			return fmt.Errorf("saving team %s: %w", t.School, err)
		}
	}
	return nil
}

// SaveGames upserts games in one transaction.
func (s *Store) SaveGames(ctx context.Context, games []GameRow) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveGames tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
	INSERT INTO games (id, season, week, season_type, home_team, away_team, home_points, away_points, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE
	  SET week = EXCLUDED.week,
	      home_points = EXCLUDED.home_points,
	      away_points = EXCLUDED.away_points,
	      completed = EXCLUDED.completed
	`
	for _, g := range games {
		seasonType := g.SeasonType
		if seasonType == "" {
			seasonType = "regular"
		}
		if _, err := tx.ExecContext(ctx, q,
			g.ID, g.Season, g.Week, seasonType,
			g.HomeTeam, g.AwayTeam,
			g.HomePoints, g.AwayPoints,
			g.Completed,
		); err != nil {
			return fmt.Errorf("saving game %d: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveGames tx: %w", err)
	}
	return nil
}

// LoadGames fetches the completed, scored games matching q in week order,
// with each side flagged by whether its classification is q.TopDivision.
func (s *Store) LoadGames(ctx context.Context, q Query) ([]league.Game, error) {
	top := q.TopDivision
	if top == "" {
		top = DefaultTopDivision
	}
	seasonType := q.SeasonType
	if seasonType == "" {
		seasonType = "regular"
	}

	query := `
	SELECT
	  g.week,
	  g.home_team,
	  g.away_team,
	  g.home_points,
	  g.away_points,
	  COALESCE(ht.classification, $1),
	  COALESCE(awt.classification, $1)
	FROM games g
	LEFT JOIN teams ht ON g.home_team = ht.school
	LEFT JOIN teams awt ON g.away_team = awt.school
	WHERE g.season = $2
	  AND g.season_type = $3
	  AND g.completed
	  AND g.home_points IS NOT NULL
	  AND g.away_points IS NOT NULL
	`
	args := []any{top, q.Season, seasonType}
	if q.Week > 0 {
		args = append(args, q.Week)
		query += fmt.Sprintf(" AND g.week <= $%d", len(args))
	}
	if q.Conference != "" {
		args = append(args, q.Conference)
		query += fmt.Sprintf(" AND (ht.conference = $%d OR awt.conference = $%d)", len(args), len(args))
	}
	query += " ORDER BY g.week, g.id"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []league.Game
	for rows.Next() {
		var g league.Game
		var homeClass, awayClass string
		if err := rows.Scan(
			&g.Week,
			&g.HomeTeam,
			&g.AwayTeam,
			&g.HomePoints,
			&g.AwayPoints,
			&homeClass,
			&awayClass,
		); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		g.HomeTopDivision = strings.EqualFold(homeClass, top)
		g.AwayTopDivision = strings.EqualFold(awayClass, top)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating games rows: %w", err)
	}
	return games, nil
}
