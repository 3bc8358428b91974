package league

import (
	"math"
	"math/rand"
)

// Pairing is one scheduled game.
type Pairing struct {
	Home, Away string
	Week       int
}

// RoundRobin returns a single round-robin schedule for the provided teams.
// It outputs one slice of pairings per week. With an odd number of teams one
// team sits out each week.
func RoundRobin(names []string) [][]Pairing {
	teams := make([]string, len(names), len(names)+1)
	copy(teams, names)
	// "" is the bye placeholder
	if len(teams)%2 != 0 {
		teams = append(teams, "")
	}
	n := len(teams)
	if n < 2 {
		return nil
	}

	rounds := make([][]Pairing, n-1)
	for i := 0; i < n-1; i++ {
		round := make([]Pairing, 0, n/2)
		for j := 0; j < n/2; j++ {
			home, away := teams[j], teams[n-1-j]
			if home == "" || away == "" {
				continue
			}
			// alternate sides for the fixed team so it is not always at home
			if j == 0 && i%2 == 1 {
				home, away = away, home
			}
			round = append(round, Pairing{Home: home, Away: away, Week: i + 1})
		}
		rounds[i] = round

		// rotate everyone except the first
		last := teams[n-1]
		copy(teams[2:], teams[1:n-1])
		teams[1] = last
	}
	return rounds
}

// SimulateSeason plays a full round robin between names with scores drawn
// from the seeded generator, so the same seed always yields the same games.
// topDivision decides the division flag of each participant.
func SimulateSeason(names []string, topDivision func(string) bool, seed int64) []Game {
	rng := rand.New(rand.NewSource(seed))

	strength := make(map[string]float64, len(names))
	for _, n := range names {
		strength[n] = 0.5 + rng.Float64()
	}

	var games []Game
	for _, round := range RoundRobin(names) {
		for _, p := range round {
			home, away := simulateScore(rng, strength[p.Home], strength[p.Away])
			games = append(games, Game{
				HomeTeam:        p.Home,
				AwayTeam:        p.Away,
				HomePoints:      &home,
				AwayPoints:      &away,
				HomeTopDivision: topDivision(p.Home),
				AwayTopDivision: topDivision(p.Away),
				Week:            p.Week,
			})
		}
	}
	return games
}

// simulateScore splits roughly nine scoring drives between the sides in
// proportion to their strength, each drive a touchdown or a field goal.
func simulateScore(rng *rand.Rand, home, away float64) (int, int) {
	const drives = 9.0
	total := home + away
	score := func(share float64) int {
		td := samplePoisson(rng, drives*share*0.6)
		fg := samplePoisson(rng, drives*share*0.4)
		return td*7 + fg*3
	}
	return score(home / total), score(away / total)
}

// samplePoisson generates a random sample from a Poisson distribution with mean lambda
func samplePoisson(rng *rand.Rand, lambda float64) int {
	L := math.Exp(-lambda)
	p := 1.0
	k := 0
	for p > L {
		k++
		p *= rng.Float64()
	}
	return k - 1
}
