package league

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestFormulaValue(t *testing.T) {
	f := DefaultFormula()
	for _, test := range []struct {
		name     string
		game     GameResult
		opponent float64
		expected float64
	}{
		{
			"one-score win",
			GameResult{Won: true, Margin: 3, OpponentTopDivision: true},
			50,
			1.0 + 0.5,
		},
		{
			"one-score bucket is inclusive",
			GameResult{Won: true, Margin: 8, OpponentTopDivision: true},
			0,
			1.0,
		},
		{
			"two-score win",
			GameResult{Won: true, Margin: 9, OpponentTopDivision: true},
			0,
			1.3,
		},
		{
			"two-score bucket is inclusive",
			GameResult{Won: true, Margin: 16, OpponentTopDivision: true},
			0,
			1.3,
		},
		{
			"three-score win",
			GameResult{Won: true, Margin: 17, OpponentTopDivision: true},
			20,
			1.5 + 0.2,
		},
		{
			"three-score loss uses absolute margin",
			GameResult{Won: false, Margin: -20, OpponentTopDivision: true},
			50,
			-1.5 + 0.5,
		},
		{
			"one-score loss",
			GameResult{Won: false, Margin: -8, OpponentTopDivision: true},
			100,
			-1.0 + 1.0,
		},
		{
			"win over lower division is worthless",
			GameResult{Won: true, Margin: 40, OpponentTopDivision: false},
			80,
			0,
		},
		{
			"loss to lower division is still penalized",
			GameResult{Won: false, Margin: -14, OpponentTopDivision: false},
			-10,
			-1.3 - 0.1,
		},
		{
			"tie is valued as a one-score loss",
			GameResult{Won: false, Margin: 0, OpponentTopDivision: true},
			50,
			-1.0 + 0.5,
		},
		{
			"negative opponent rating lowers the bonus",
			GameResult{Won: true, Margin: 1, OpponentTopDivision: true},
			-50,
			1.0 - 0.5,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := f.Value(test.game, test.opponent)
			if !near(got, test.expected, epsilon) {
				t.Errorf("Value() = %v, expected %v", got, test.expected)
			}
		})
	}
}

func TestFormulaCustomMultipliers(t *testing.T) {
	f := Formula{
		WinLoss:            2,
		OneScore:           1,
		TwoScore:           3,
		ThreeScore:         5,
		StrengthOfSchedule: 0.5,
		OneScoreMargin:     3,
		TwoScoreMargin:     10,
	}
	for _, test := range []struct {
		margin   int
		won      bool
		expected float64
	}{
		{3, true, 2*1 + 0.25},
		{4, true, 2*3 + 0.25},
		{-10, false, -2*3 + 0.25},
		{-11, false, -2*5 + 0.25},
	} {
		g := GameResult{Won: test.won, Margin: test.margin, OpponentTopDivision: true}
		if got := f.Value(g, 50); !near(got, test.expected, epsilon) {
			t.Errorf("margin %d: Value() = %v, expected %v", test.margin, got, test.expected)
		}
	}
}

func TestNonDivisionWinIsWorthless(t *testing.T) {
	for _, f := range []Formula{
		DefaultFormula(),
		{},
		{WinLoss: -3, OneScore: 2, TwoScore: 2, ThreeScore: 2, StrengthOfSchedule: 10, OneScoreMargin: 8, TwoScoreMargin: 16},
		{WinLoss: 0, OneScore: -1, TwoScore: -1, ThreeScore: -1, StrengthOfSchedule: -1, OneScoreMargin: 8, TwoScoreMargin: 16},
	} {
		for _, margin := range []int{1, 8, 12, 35} {
			for _, rating := range []float64{-100, 0, 50, 250} {
				g := GameResult{Won: true, Margin: margin, OpponentTopDivision: false}
				if got := f.Value(g, rating); got != 0 {
					t.Errorf("%+v margin %d rating %v: Value() = %v, expected 0", f, margin, rating, got)
				}
			}
		}
	}
}

func TestZeroStrengthOfScheduleIgnoresOpponent(t *testing.T) {
	f := DefaultFormula()
	f.StrengthOfSchedule = 0
	g := GameResult{Won: true, Margin: 20, OpponentTopDivision: true}
	if a, b := f.Value(g, -500), f.Value(g, 500); a != b {
		t.Errorf("Value() depends on opponent rating: %v != %v", a, b)
	}
}
