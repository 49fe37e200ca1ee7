package simulation

import (
	"fmt"
)

// OutcomeKind enumerates how a payment ends.
type OutcomeKind uint8

// Outcome kinds.
const (
	OutcomeDelivered OutcomeKind = iota
	OutcomeFailedNoPath
	OutcomeFailedCensored
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFailedNoPath:
		return "failed_no_path"
	case OutcomeFailedCensored:
		return "failed_censored"
	}

	return fmt.Sprintf("outcome(%d)", uint8(k))
}

// Outcome is the terminal state of a payment. Only censored outcomes carry
// an AS. Outcomes are built with Delivered, NoPath and CensoredBy.
type Outcome struct {
	kind OutcomeKind
	asn  uint32
}

// Delivered is the outcome of a payment that reached its destination.
func Delivered() Outcome {
	return Outcome{kind: OutcomeDelivered}
}

// NoPath is the outcome of a payment for which no route was found.
func NoPath() Outcome {
	return Outcome{kind: OutcomeFailedNoPath}
}

// CensoredBy is the outcome of a payment dropped by asn.
func CensoredBy(asn uint32) Outcome {
	return Outcome{kind: OutcomeFailedCensored, asn: asn}
}

// Kind returns the outcome kind.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Censor returns the AS that dropped the payment.
func (o Outcome) Censor() (uint32, bool) {
	return o.asn, o.kind == OutcomeFailedCensored
}

func (o Outcome) String() string {
	if o.kind == OutcomeFailedCensored {
		return fmt.Sprintf("%s(AS%d)", o.kind, o.asn)
	}

	return o.kind.String()
}
