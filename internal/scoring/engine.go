package scoring

import (
	"fmt"
	"math"

	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// ballsPerOver is fixed at six legal deliveries.
const ballsPerOver = 6

// BallsInOver returns the number of legal balls already bowled in the
// current over, decoded from decimal over notation. Rounding guards
// against float drift in the stored fraction (e.g. 2.3000000001).
func BallsInOver(overs float64) int {
	return int(math.Round(math.Mod(overs, 1) * 10))
}

// OverNumber is the 1-based over a delivery at this state belongs to.
func OverNumber(overs float64) int {
	return int(math.Floor(overs)) + 1
}

// BallNumber is the 1-based position of the next delivery within its over.
func BallNumber(overs float64) int {
	return BallsInOver(overs) + 1
}

// ValidateBall rejects malformed input before any state is touched.
func ValidateBall(in models.BallInput) error {
	if in.Runs < 0 {
		return fmt.Errorf("runs must be non-negative, got %d", in.Runs)
	}
	return nil
}

// Apply computes the innings state after one delivery. It is pure: the
// input innings is passed by value and never mutated, and identical
// inputs always produce identical outputs.
//
// Rules:
//   - a wide or no-ball adds 1 run on top of the event's own runs and
//     does not count toward the over;
//   - any other delivery (byes and leg-byes included) is legal and
//     advances the ball count, rolling the over on the 6th;
//   - a wicket increments the wicket count by exactly 1; the 10-wicket
//     bound is the caller's concern.
func Apply(in models.Innings, ev models.BallEvent) models.Innings {
	extra := 0
	if ev.IsWide || ev.IsNoBall {
		extra = 1
	}

	out := models.Innings{
		Runs:    in.Runs + ev.Runs + extra,
		Wickets: in.Wickets,
		Overs:   in.Overs,
	}

	if ev.IsWicket {
		out.Wickets++
	}

	if !ev.IsWide && !ev.IsNoBall {
		balls := BallsInOver(in.Overs)
		if balls >= ballsPerOver-1 {
			// 6th legal ball: clean rollover, fraction reset.
			out.Overs = math.Floor(in.Overs) + 1
		} else {
			out.Overs = math.Floor(in.Overs) + float64(balls+1)/10
		}
	}

	return out
}
