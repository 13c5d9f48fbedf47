package mealplan

import "math/rand/v2"

// Picker chooses one of n equally eligible candidates.
type Picker interface {
	// Pick returns an index in [0, n). n is always > 0.
	Pick(n int) int
}

type randomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker returns a uniform picker seeded with seed.
func NewRandomPicker(seed uint64) Picker {
	return &randomPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *randomPicker) Pick(n int) int {
	return p.rng.IntN(n)
}

type sequencePicker struct {
	values []int
	next   int
}

// NewSequencePicker replays values in order, wrapping around, each reduced
// modulo n. With no values it always picks the first candidate.
func NewSequencePicker(values ...int) Picker {
	return &sequencePicker{values: values}
}

func (p *sequencePicker) Pick(n int) int {
	if len(p.values) == 0 {
		return 0
	}
	v := p.values[p.next%len(p.values)]
	p.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
