package asn

import (
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrAddressLookupUnavailable is returned when the address-to-AS dataset
// cannot be opened or read.
var ErrAddressLookupUnavailable = errors.New("address lookup unavailable")

// A Resolver finds the AS announcing an IP address.
type Resolver interface {
	// Lookup returns the AS number announcing ip. It returns false when the
	// dataset has no entry for ip.
	Lookup(ip netip.Addr) (uint32, bool)

	// Close releases the dataset.
	Close() error
}

// OpenResolver opens an address-to-AS dataset. Files ending in .mmdb are
// read as MaxMind databases, anything else as a plain prefix table.
func OpenResolver(path string) (Resolver, error) {
	if strings.EqualFold(filepath.Ext(path), ".mmdb") {
		return OpenMMDB(path)
	}

	return OpenPrefixTable(path)
}
