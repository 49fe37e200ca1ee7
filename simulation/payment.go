package simulation

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lncensor/lncensor/routing"
	"github.com/lncensor/lncensor/topology"
)

// PaymentID identifies a payment within all runs.
type PaymentID struct {
	Seed  uint64
	Index int
}

func (id PaymentID) String() string {
	return fmt.Sprintf("%d-%d", id.Seed, id.Index)
}

// PaymentState tracks a payment through its lifecycle.
type PaymentState uint8

// Payment states.
const (
	PaymentCreated PaymentState = iota
	PaymentRoutingAttempted
	PaymentClassified
)

// Payment is one simulated payment.
type Payment struct {
	ID          PaymentID
	Source      topology.NodeIndex
	Destination topology.NodeIndex
	Amount      btcutil.Amount
	State       PaymentState

	// Route is empty unless a route was found.
	Route   routing.Route
	Outcome Outcome

	// Crossed lists, in path order, the adversarial ASes of the route's
	// intermediate nodes.
	Crossed []uint32

	// Detections grades the decisions taken on the payment. Only the
	// intra-prob strategy fills it.
	Detections []Detection
}

// DetectionKind grades a drop decision against whether the payment was
// meant for the deciding AS.
type DetectionKind uint8

// Detection kinds.
const (
	// TruePositive is a dropped payment destined to the AS.
	TruePositive DetectionKind = iota
	// FalsePositive is a dropped payment destined elsewhere.
	FalsePositive
	// FalseNegative is a passed payment destined to the AS.
	FalseNegative
)

// Detection is one graded decision of an adversarial AS.
type Detection struct {
	ASN  uint32
	Kind DetectionKind
}
