package asn

import (
	"bufio"
	"io"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/gaissmai/bart"
	"github.com/pkg/errors"
)

// PrefixResolver resolves addresses by longest-prefix match over a table
// of announced prefixes.
type PrefixResolver struct {
	table *bart.Table[uint32]
}

// NewPrefixResolver creates an empty table.
func NewPrefixResolver() *PrefixResolver {
	return &PrefixResolver{table: new(bart.Table[uint32])}
}

// Add announces prefix from asn. A later announcement of the same prefix
// replaces the earlier one.
func (r *PrefixResolver) Add(prefix netip.Prefix, asn uint32) {
	if prefix.Addr().Is4In6() && prefix.Bits() >= 96 {
		prefix = netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()-96)
	}

	r.table.Insert(prefix.Masked(), asn)
}

// Lookup returns the AS of the most specific prefix containing ip.
func (r *PrefixResolver) Lookup(ip netip.Addr) (uint32, bool) {
	return r.table.Lookup(ip.Unmap().WithZone(""))
}

// Close is a no-op.
func (r *PrefixResolver) Close() error {
	return nil
}

// ParsePrefixTable reads lines of the form "prefix asn". Fields may be
// separated by whitespace or a comma, the AS number may carry an "AS"
// prefix, and lines starting with # are ignored.
func ParsePrefixTable(rd io.Reader) (*PrefixResolver, error) {
	r := NewPrefixResolver()
	scanner := bufio.NewScanner(rd)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		if len(fields) < 2 {
			return nil, errors.Wrapf(ErrAddressLookupUnavailable,
				"line %d: want prefix and asn", lineNo)
		}

		prefix, err := netip.ParsePrefix(fields[0])
		if err != nil {
			return nil, errors.Wrapf(ErrAddressLookupUnavailable,
				"line %d: %v", lineNo, err)
		}

		asnText := strings.TrimPrefix(strings.ToUpper(fields[1]), "AS")
		asn, err := strconv.ParseUint(asnText, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrAddressLookupUnavailable,
				"line %d: bad asn %q", lineNo, fields[1])
		}

		r.Add(prefix, uint32(asn))
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrAddressLookupUnavailable, "%v", err)
	}

	return r, nil
}

// OpenPrefixTable reads a prefix table from a file.
func OpenPrefixTable(path string) (*PrefixResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrAddressLookupUnavailable,
			"open %s: %v", path, err)
	}
	defer f.Close()

	return ParsePrefixTable(f)
}
