package scoring

import "fmt"

// Weights defines the relative importance of the four fit dimensions.
// They nominally sum to 100 but that is a convention, not an invariant;
// a universe may deliberately over- or under-weight.
type Weights struct {
	Size       float64
	Geography  float64
	Service    float64
	OwnerGoals float64
}

// DefaultWeights returns the even 25/25/25/25 split used when a universe
// leaves its weights unset.
func DefaultWeights() Weights {
	return Weights{Size: 25, Geography: 25, Service: 25, OwnerGoals: 25}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Size + w.Geography + w.Service + w.OwnerGoals
}

// IsZero reports whether no weight has been set.
func (w Weights) IsZero() bool {
	return w.Size == 0 && w.Geography == 0 && w.Service == 0 && w.OwnerGoals == 0
}

// Validate checks that no weight is negative.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Size, w.Geography, w.Service, w.OwnerGoals} {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}
