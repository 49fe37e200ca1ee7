package report

import (
	"sort"

	"github.com/lncensor/lncensor/asn"
	"github.com/lncensor/lncensor/topology"
)

// DegreeRecord is the number of channels touching an AS.
type DegreeRecord struct {
	ASN    uint32
	Degree int
}

// DegreeRecords returns one record per AS, highest degree first, ties by
// ascending AS number. The sentinel AS is included.
func DegreeRecords(m *asn.Mapping) []DegreeRecord {
	out := make([]DegreeRecord, 0, len(m.Systems()))
	for _, s := range m.Systems() {
		out = append(out, DegreeRecord{ASN: s.ASN, Degree: s.Channels()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Degree != out[j].Degree {
			return out[i].Degree > out[j].Degree
		}

		return out[i].ASN < out[j].ASN
	})

	return out
}

// NodeDegreeRecords returns one record per node in graph order, pairing
// the node's AS with its channel degree.
func NodeDegreeRecords(m *asn.Mapping) []DegreeRecord {
	g := m.Graph()

	out := make([]DegreeRecord, g.NumNodes())
	for i := range out {
		n := topology.NodeIndex(i)
		out[i] = DegreeRecord{ASN: m.ASNOf(n), Degree: g.Degree(n)}
	}

	return out
}

// IntraRecord counts the channels of an AS by whether they leave it.
type IntraRecord struct {
	ASN   uint32
	Intra int
	Inter int
}

// IntraRecords returns one record per AS in order of first appearance.
func IntraRecords(m *asn.Mapping) []IntraRecord {
	out := make([]IntraRecord, 0, len(m.Systems()))
	for _, s := range m.Systems() {
		out = append(out, IntraRecord{ASN: s.ASN, Intra: s.Intra, Inter: s.Inter})
	}

	return out
}

// RatioRecord is the intra-AS channel ratio of one node.
type RatioRecord struct {
	ASN   uint32
	Ratio float64
}

// RatioRecords returns the intra-AS ratio of every node with channels,
// grouped by AS in order of first appearance.
func RatioRecords(m *asn.Mapping) []RatioRecord {
	var out []RatioRecord

	for _, s := range m.Systems() {
		for _, r := range m.IntraRatios(s.ASN) {
			out = append(out, RatioRecord{ASN: s.ASN, Ratio: r})
		}
	}

	return out
}
