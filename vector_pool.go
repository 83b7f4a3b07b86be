package cfr

// vectorPool recycles the scratch vectors a traversal needs at each
// decision node. Vectors are kept in buckets by length, since a game only
// has a handful of distinct action counts. A nil pool allocates.
type vectorPool struct {
	free [][][]float64
}

// get returns a zeroed vector of length n.
func (p *vectorPool) get(n int) []float64 {
	if p == nil || n >= len(p.free) || len(p.free[n]) == 0 {
		return make([]float64, n)
	}

	bucket := p.free[n]
	v := bucket[len(bucket)-1]
	p.free[n] = bucket[:len(bucket)-1]
	clear(v)
	return v
}

// put returns v to the pool. v must not be used afterwards.
func (p *vectorPool) put(v []float64) {
	if p == nil || len(v) == 0 {
		return
	}

	n := len(v)
	for len(p.free) <= n {
		p.free = append(p.free, nil)
	}

	p.free[n] = append(p.free[n], v)
}
