package srs

import (
	"math"
	"time"

	"github.com/recallhq/recall-api/internal/domain"
)

// All day arithmetic uses exactly 86,400,000 milliseconds per day. Elapsed
// time is a real-valued quotient, never an integer truncation.
const millisPerDay = 86_400_000.0

// elapsedDays returns the real-valued day difference between two instants.
func elapsedDays(lastReview, now time.Time) float64 {
	return float64(now.Sub(lastReview).Milliseconds()) / millisPerDay
}

// retrievability computes the exponential forgetting curve R = 0.9^(t/S).
// The base 0.9 is what defines stability as "days until recall probability
// drops to 0.9". Callers must guard stability == 0.
func retrievability(elapsed, stability float64) float64 {
	return math.Pow(0.9, elapsed/stability)
}

// initialDifficulty computes first-review difficulty D0 = w4 - w5*(G-3).
// The ordinal distance from "good" is load-bearing; see domain.Rating.
func (p *Params) initialDifficulty(rating domain.Rating) float64 {
	return p.Weights[4] - p.Weights[5]*float64(rating-domain.RatingGood)
}

// nextDifficulty updates difficulty for a repeat review: D' = D - w6*(G-3).
func (p *Params) nextDifficulty(difficulty float64, rating domain.Rating) float64 {
	return difficulty - p.Weights[6]*float64(rating-domain.RatingGood)
}

// meanReversion pulls difficulty back toward the new-item baseline w4,
// then clamps to [1, 10]. Applied after every difficulty update so no
// downstream formula ever sees an out-of-domain difficulty.
func (p *Params) meanReversion(difficulty float64) float64 {
	d := p.Weights[7]*p.Weights[4] + (1-p.Weights[7])*difficulty
	return clampDifficulty(d)
}

// initialStability returns the rating-indexed stability baseline w[G-1].
// Used both for the first review and for short-term Learning/Relearning
// resets.
func (p *Params) initialStability(rating domain.Rating) float64 {
	return p.Weights[rating-1]
}

// forgetStability computes post-lapse stability:
//
//	S' = w11 * D^(-w12) * ((S+1)^w13 - 1) * e^(w14*(1-r))
//
// where r is the retention target. Models the asymmetry of forgetting: the
// result is far below the pre-lapse stability.
func (p *Params) forgetStability(difficulty, stability float64) float64 {
	return p.Weights[11] *
		math.Pow(difficulty, -p.Weights[12]) *
		(math.Pow(stability+1, p.Weights[13]) - 1) *
		math.Exp(p.Weights[14]*(1-p.RequestRetention))
}

// recallStability computes reinforced stability after a successful Review:
//
//	S' = S * (1 + e^w8 * (11-D) * S^(-w9) * (e^(w10*(1-r)) - 1) * hardPenalty * easyBonus)
//
// Growth slows as stability rises (S^(-w9)) and as difficulty approaches 10.
func (p *Params) recallStability(difficulty, stability float64, rating domain.Rating) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = p.Weights[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = p.Weights[16]
	}
	return stability * (1 + math.Exp(p.Weights[8])*
		(11-difficulty)*
		math.Pow(stability, -p.Weights[9])*
		(math.Exp(p.Weights[10]*(1-p.RequestRetention))-1)*
		hardPenalty*easyBonus)
}

// nextInterval derives the review interval in whole days from stability:
// round(S * 9 * (1/r - 1)), floored at 1 and capped at MaximumInterval.
// The factor 9 falls out of the forgetting curve at r = 0.9.
func (p *Params) nextInterval(stability float64) int {
	ivl := int(math.Round(stability * 9 * (1/p.RequestRetention - 1)))
	if ivl < 1 {
		ivl = 1
	}
	if ivl > p.MaximumInterval {
		ivl = p.MaximumInterval
	}
	return ivl
}

// clampDifficulty clamps difficulty to [1, 10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

// round4 rounds to 4 decimal places. Stability and difficulty are stored
// rounded so repeated serialize/deserialize cycles cannot drift.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
