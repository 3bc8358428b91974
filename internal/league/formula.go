package league

// Formula values a single game for the team that played it.
//
// Multipliers are not range checked. Zero or negative values are legal and
// neutralize or invert the component they scale.
type Formula struct {
	// WinLoss is the base credit for a win (added) or a loss (subtracted).
	WinLoss float64
	// OneScore scales games decided by at most OneScoreMargin points.
	OneScore float64
	// TwoScore scales games decided by at most TwoScoreMargin points.
	TwoScore float64
	// ThreeScore scales anything wider than TwoScoreMargin.
	ThreeScore float64
	// StrengthOfSchedule scales the opponent bonus, rating/100.
	StrengthOfSchedule float64

	OneScoreMargin int
	TwoScoreMargin int
}

// DefaultFormula returns the standard parameters.
func DefaultFormula() Formula {
	return Formula{
		WinLoss:            1.0,
		OneScore:           1.0,
		TwoScore:           1.3,
		ThreeScore:         1.5,
		StrengthOfSchedule: 1.0,
		OneScoreMargin:     8,
		TwoScoreMargin:     16,
	}
}

// Value computes the contribution of g given the opponent's rating.
//
// A win over a team outside the top division is worth nothing. A loss to the
// same team is not special-cased and is penalized like any other loss.
func (f Formula) Value(g GameResult, opponentRating float64) float64 {
	if g.Won && !g.OpponentTopDivision {
		return 0.0
	}

	sign := -f.WinLoss
	if g.Won {
		sign = f.WinLoss
	}
	bonus := (opponentRating / 100.0) * f.StrengthOfSchedule

	return sign*f.marginMultiplier(g.Margin) + bonus
}

// marginMultiplier buckets a point differential. Bounds are inclusive on the
// lower bucket: exactly OneScoreMargin is a one-score game.
func (f Formula) marginMultiplier(margin int) float64 {
	if margin < 0 {
		margin = -margin
	}
	switch {
	case margin <= f.OneScoreMargin:
		return f.OneScore
	case margin <= f.TwoScoreMargin:
		return f.TwoScore
	default:
		return f.ThreeScore
	}
}
