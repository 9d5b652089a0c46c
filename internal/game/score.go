package game

import (
	"time"

	"github.com/shopspring/decimal"
)

const basePoints = 1000

var (
	maxSpeedBonus  = decimal.NewFromInt(500)
	bonusDecayRate = decimal.NewFromInt(50) // bonus points lost per second
)

// scorePoints computes the award for a correct answer: 1000 base points plus
// a speed bonus decaying linearly from 500 to zero at 10 seconds elapsed.
// The bonus never goes negative, so the result is always in [1000, 1500].
func scorePoints(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}

	bonus := maxSpeedBonus.Sub(decimal.NewFromFloat(elapsed.Seconds()).Mul(bonusDecayRate))
	if bonus.IsNegative() {
		bonus = decimal.Zero
	}

	return int(decimal.NewFromInt(basePoints).Add(bonus).Floor().IntPart())
}
