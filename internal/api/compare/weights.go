package compare

// Base weights of the recommendation score. When certainty and/or cost data
// is entirely missing, their weight is redistributed to the remaining
// available signals instead of silently treating missing data as zero — "no
// data" must never look like "no preference".
const (
	weightCertainty = 0.5
	weightCost      = 0.3
	weightVisa      = 0.15
	weightBuffer    = 0.05
)

// signalWeights is the per-comparison weight vector, built explicitly from
// the set of available signals so the renormalization rule stays auditable.
type signalWeights struct {
	Certainty float64
	Cost      float64
	Visa      float64
	Buffer    float64
}

func buildWeights(hasCertainty, hasCost, hasVisa, hasBuffer bool) signalWeights {
	var w signalWeights
	var total float64
	if hasCertainty {
		w.Certainty = weightCertainty
		total += weightCertainty
	}
	if hasCost {
		w.Cost = weightCost
		total += weightCost
	}
	if hasVisa {
		w.Visa = weightVisa
		total += weightVisa
	}
	if hasBuffer {
		w.Buffer = weightBuffer
		total += weightBuffer
	}
	if total == 0 {
		return w
	}
	w.Certainty /= total
	w.Cost /= total
	w.Visa /= total
	w.Buffer /= total
	return w
}
