package league

// InitialRating is the rating every team starts from before the first pass.
const InitialRating = 50.0

// TeamID indexes a team in the System registry.
type TeamID int

// Team represents a program and every game it has played.
type Team struct {
	ID     TeamID
	Name   string
	Games  []GameResult
	Rating float64 `json:"rating"`
}

// GameResult is one game seen from a single team's side. Every game yields two
// of them, one per participant, with negated margins.
type GameResult struct {
	Opponent            TeamID
	Won                 bool
	Margin              int
	OpponentTopDivision bool
	Value               float64
	Week                int // 0 when unknown
}

// Game is a completed game as delivered by a data source. Nil points mark a
// game that has not finished and must not be ingested.
type Game struct {
	HomeTeam, AwayTeam               string
	HomePoints, AwayPoints           *int
	HomeTopDivision, AwayTopDivision bool
	Week                             int
}

// Record returns the team's wins and losses. A tie counts as a loss.
func (t *Team) Record() (wins, losses int) {
	for _, g := range t.Games {
		if g.Won {
			wins++
		}
	}
	return wins, len(t.Games) - wins
}

// Standing holds the presentation view of one ranked team.
type Standing struct {
	Rank         int
	Name         string
	Wins, Losses int
	Rating       float64
	Games        []GameLine
}

// GameLine is one row of a team's game log.
type GameLine struct {
	Opponent                     string
	OpponentWins, OpponentLosses int
	OpponentRating               float64
	Won                          bool
	Margin                       int
	Value                        float64
	Week                         int
}
