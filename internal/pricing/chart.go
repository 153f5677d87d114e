package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

// PricePoint is one step of the issuance price chart.
type PricePoint struct {
	Cycle  int               `json:"cycle"` // -1 is the cycle before the stage's weight
	Start  time.Time         `json:"start"`
	Weight fixedpoint.Amount `json:"weight"`
	Price  fixedpoint.Amount `json:"price"`
}

// PriceSteps returns the payer's token price for the cycle preceding the stage, the stage's
// first cycle and the given number of decayed cycles after it. A stage without a decay
// frequency yields a single point. The preceding point is omitted when the decay cannot be
// inverted.
func PriceSteps(stage types.Stage, paymentDecimals, cycles int) ([]PricePoint, error) {
	if cycles < 0 {
		return nil, fmt.Errorf("%w: negative cycle count %d", fixedpoint.ErrParse, cycles)
	}
	cycle := stage.DecayFrequency
	if cycle == 0 {
		cycles = 0
	}

	var points []PricePoint
	if cycle > 0 && !stage.DecayPercent.IsZero() {
		prev, err := PreviousWeight(stage.InitialWeight, stage.DecayPercent)
		switch {
		case errors.Is(err, fixedpoint.ErrDivisionByZero):
		case err != nil:
			return nil, err
		default:
			p, err := pricePoint(-1, stage.StartTime.Add(-cycle), prev, paymentDecimals, stage.ReservedPercent)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
	}

	w := stage.InitialWeight
	for i := 0; i <= cycles; i++ {
		if i > 0 {
			next, err := NextWeight(w, stage.DecayPercent)
			if err != nil {
				return nil, err
			}
			w = next
		}
		if w.IsZero() {
			break
		}
		p, err := pricePoint(i, stage.StartTime.Add(time.Duration(i)*cycle), w, paymentDecimals, stage.ReservedPercent)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func pricePoint(cycle int, start time.Time, weight fixedpoint.Amount, paymentDecimals int, reserved fixedpoint.Percent) (PricePoint, error) {
	price, err := TokenPrice(paymentDecimals, weight, reserved)
	if err != nil {
		return PricePoint{}, err
	}
	return PricePoint{Cycle: cycle, Start: start, Weight: weight, Price: price}, nil
}
