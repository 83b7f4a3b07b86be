package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Policy keeps the accumulated regrets and strategy weights of a single
// information set, and the current strategy derived from them by regret
// matching.
type Policy struct {
	regretSum   []float64
	strategy    []float64
	strategySum []float64
}

// New returns a Policy for an information set with the given number of actions.
// The current strategy starts out uniform.
func New(nActions int) *Policy {
	if nActions <= 0 {
		panic(fmt.Errorf("policy must have at least one action, got %d", nActions))
	}

	return &Policy{
		regretSum:   make([]float64, nActions),
		strategy:    uniformDist(nActions),
		strategySum: make([]float64, nActions),
	}
}

// FromSums returns a Policy with the given accumulated sums.
// The current strategy is recomputed from regretSum.
func FromSums(regretSum, strategySum []float64) *Policy {
	if len(regretSum) != len(strategySum) {
		panic(fmt.Errorf("regret sum has %d actions but strategy sum has %d",
			len(regretSum), len(strategySum)))
	}

	p := New(len(regretSum))
	copy(p.regretSum, regretSum)
	copy(p.strategySum, strategySum)
	p.RegretMatching()
	return p
}

// NumActions returns the number of actions of this policy.
func (p *Policy) NumActions() int {
	return len(p.regretSum)
}

// RegretMatching recomputes the current strategy in proportion to
// the positive accumulated regret of each action.
func (p *Policy) RegretMatching() {
	copy(p.strategy, p.regretSum)
	makePositive(p.strategy)
	total := floats.Sum(p.strategy)
	if total > 0 {
		floats.Scale(1.0/total, p.strategy)
	} else {
		for i := range p.strategy {
			p.strategy[i] = 1.0 / float64(len(p.strategy))
		}
	}
}

// Strategy returns the current strategy. The returned slice is owned by
// the Policy and is overwritten by the next call to RegretMatching.
func (p *Policy) Strategy() []float64 {
	return p.strategy
}

// AddStrategyWeight adds the current strategy with weight w to the strategy sum.
func (p *Policy) AddStrategyWeight(w float64) {
	floats.AddScaled(p.strategySum, w, p.strategy)
}

// AddRegret adds the instantaneous regrets, scaled by w, to the regret sum.
func (p *Policy) AddRegret(w float64, instantaneousRegrets []float64) {
	floats.AddScaled(p.regretSum, w, instantaneousRegrets)
}

// Discount scales the positive and negative accumulated regrets and the
// accumulated strategy by the given factors.
func (p *Policy) Discount(discountPositiveRegret, discountNegativeRegret, discountStrategySum float64) {
	if discountStrategySum != 1.0 {
		floats.Scale(discountStrategySum, p.strategySum)
	}

	for i, x := range p.regretSum {
		if x > 0 {
			p.regretSum[i] *= discountPositiveRegret
		} else if x < 0 {
			p.regretSum[i] *= discountNegativeRegret
		}
	}
}

// AverageStrategy returns the average strategy over all iterations.
// If no strategy weight has been accumulated the uniform strategy is returned.
func (p *Policy) AverageStrategy() []float64 {
	avgStrat := make([]float64, len(p.strategySum))

	total := floats.Sum(p.strategySum)
	if total > 0 {
		floats.ScaleTo(avgStrat, 1.0/total, p.strategySum)
	} else {
		for i := range avgStrat {
			avgStrat[i] = 1.0 / float64(len(avgStrat))
		}
	}

	return avgStrat
}

// RegretSum returns a copy of the accumulated regrets.
func (p *Policy) RegretSum() []float64 {
	return append([]float64(nil), p.regretSum...)
}

// StrategySum returns a copy of the accumulated strategy weights.
func (p *Policy) StrategySum() []float64 {
	return append([]float64(nil), p.strategySum...)
}

// GobDecode implements gob.GobDecoder.
func (p *Policy) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	var nActions int
	if err := dec.Decode(&nActions); err != nil {
		return err
	}

	regretSum := make([]float64, 0, nActions)
	if err := dec.Decode(&regretSum); err != nil {
		return err
	}

	strategySum := make([]float64, 0, nActions)
	if err := dec.Decode(&strategySum); err != nil {
		return err
	}

	if len(regretSum) != nActions || len(strategySum) != nActions {
		return fmt.Errorf("corrupt policy: expected %d actions, got %d regrets and %d strategy weights",
			nActions, len(regretSum), len(strategySum))
	}

	p.regretSum = regretSum
	p.strategySum = strategySum
	p.strategy = make([]float64, nActions)
	p.RegretMatching()
	return nil
}

// GobEncode implements gob.GobEncoder.
func (p *Policy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(p.NumActions()); err != nil {
		return nil, err
	}

	if err := enc.Encode(p.regretSum); err != nil {
		return nil, err
	}

	if err := enc.Encode(p.strategySum); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func uniformDist(n int) []float64 {
	result := make([]float64, n)
	floats.AddConst(1.0/float64(n), result)
	return result
}

func makePositive(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0.0
		}
	}
}
