package srs

import (
	"errors"
	"fmt"
)

// WeightCount is the length of the scheduler's weight vector.
const WeightCount = 17

// DefaultWeights is the calibrated 17-element weight vector.
//
// Index map:
//
//	w[0..3]   initial stability per rating (again, hard, good, easy)
//	w[4]      initial difficulty baseline (also the mean-reversion target)
//	w[5]      initial difficulty rating slope
//	w[6]      difficulty rating slope on later reviews
//	w[7]      mean-reversion weight toward w[4]
//	w[8..10]  reinforcement stability growth
//	w[11..14] lapse (forgetting) stability
//	w[15]     hard penalty, w[16] easy bonus
var DefaultWeights = [WeightCount]float64{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94,
	2.18, 0.05, 0.34, 1.26,
	0.29, 2.61,
}

// Defaults that are not per-rating weights.
const (
	// DefaultRequestRetention is the recall probability the scheduler aims to
	// maintain at the due date.
	DefaultRequestRetention = 0.9

	// DefaultMaximumInterval caps scheduling at roughly one hundred years.
	DefaultMaximumInterval = 36500
)

// Parameter validation errors.
var (
	ErrInvalidWeights   = errors.New("weights out of bounds")
	ErrInvalidRetention = errors.New("request retention must be in (0, 1]")
	ErrInvalidMaxInterval = errors.New("maximum interval must be at least 1 day")
)

// Params holds the fixed configuration of the scheduler: the weight vector,
// the retention target and the interval cap. Params do not vary per item or
// per call; swapping them (e.g. for per-user personalization) requires no
// algorithm changes.
type Params struct {
	Weights          [WeightCount]float64
	RequestRetention float64
	MaximumInterval  int
}

// ParamsConfig allows overriding the defaults when creating a Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	Weights          []float64 // nil or empty → DefaultWeights; otherwise must have 17 elements
	RequestRetention float64   // zero → 0.9
	MaximumInterval  int       // zero → 36500
}

// NewDefaultParams creates a Params instance with the calibrated defaults.
func NewDefaultParams() *Params {
	return &Params{
		Weights:          DefaultWeights,
		RequestRetention: DefaultRequestRetention,
		MaximumInterval:  DefaultMaximumInterval,
	}
}

// NewParams creates a Params instance with custom configuration.
// Returns an error if any override is out of bounds.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.Weights) > 0 {
		if len(config.Weights) != WeightCount {
			return nil, fmt.Errorf("%w: expected %d weights, got %d",
				ErrInvalidWeights, WeightCount, len(config.Weights))
		}
		copy(params.Weights[:], config.Weights)
	}

	if config.RequestRetention != 0 {
		params.RequestRetention = config.RequestRetention
	}

	if config.MaximumInterval != 0 {
		params.MaximumInterval = config.MaximumInterval
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that the parameters are usable by the scheduler formulas.
func (p *Params) Validate() error {
	for i, w := range p.Weights {
		if w <= 0 {
			return fmt.Errorf("%w: w[%d] = %f must be positive", ErrInvalidWeights, i, w)
		}
	}

	if p.RequestRetention <= 0 || p.RequestRetention > 1 {
		return fmt.Errorf("%w: got %f", ErrInvalidRetention, p.RequestRetention)
	}

	if p.MaximumInterval < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxInterval, p.MaximumInterval)
	}

	return nil
}
