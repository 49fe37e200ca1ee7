package simulation

// Tally counts outcomes. Workers keep one Tally each and the run merges
// them once all payments are classified.
type Tally struct {
	Total          int
	Delivered      int
	FailedNoPath   int
	FailedCensored int

	// CensoredBy counts censored payments per blamed AS.
	CensoredBy map[uint32]int

	// Exposure counts, per adversarial AS, the routed payments that crossed
	// it whether or not they were dropped.
	Exposure map[uint32]int

	// TruePositive, FalsePositive and FalseNegative grade intra-prob drop
	// decisions per AS against the payment's destination AS.
	TruePositive  map[uint32]int
	FalsePositive map[uint32]int
	FalseNegative map[uint32]int
}

// NewTally creates an empty Tally.
func NewTally() Tally {
	return Tally{
		CensoredBy: make(map[uint32]int),
		Exposure:   make(map[uint32]int),

		TruePositive:  make(map[uint32]int),
		FalsePositive: make(map[uint32]int),
		FalseNegative: make(map[uint32]int),
	}
}

// Observe counts a classified payment.
func (t *Tally) Observe(p *Payment) {
	t.Total++

	for _, a := range p.Crossed {
		t.Exposure[a]++
	}

	for _, d := range p.Detections {
		switch d.Kind {
		case TruePositive:
			t.TruePositive[d.ASN]++
		case FalsePositive:
			t.FalsePositive[d.ASN]++
		case FalseNegative:
			t.FalseNegative[d.ASN]++
		}
	}

	switch p.Outcome.Kind() {
	case OutcomeDelivered:
		t.Delivered++
	case OutcomeFailedNoPath:
		t.FailedNoPath++
	case OutcomeFailedCensored:
		t.FailedCensored++
		a, _ := p.Outcome.Censor()
		t.CensoredBy[a]++
	}
}

// Merge adds the counts of o.
func (t *Tally) Merge(o Tally) {
	t.Total += o.Total
	t.Delivered += o.Delivered
	t.FailedNoPath += o.FailedNoPath
	t.FailedCensored += o.FailedCensored

	for a, n := range o.CensoredBy {
		t.CensoredBy[a] += n
	}

	for a, n := range o.Exposure {
		t.Exposure[a] += n
	}

	mergeCounts(t.TruePositive, o.TruePositive)
	mergeCounts(t.FalsePositive, o.FalsePositive)
	mergeCounts(t.FalseNegative, o.FalseNegative)
}

func mergeCounts(dst, src map[uint32]int) {
	for a, n := range src {
		dst[a] += n
	}
}

// BaselineDelivered is the number of payments that would have been
// delivered without any censorship.
func (t *Tally) BaselineDelivered() int {
	return t.Delivered + t.FailedCensored
}
