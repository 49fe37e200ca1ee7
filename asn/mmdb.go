package asn

import (
	"net"
	"net/netip"
	"strings"

	"github.com/oschwald/maxminddb-golang"
	"github.com/pkg/errors"
)

type asnRecord struct {
	AutonomousSystemNumber       uint32 `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

// MMDBResolver resolves addresses with a GeoLite2-ASN style database.
type MMDBResolver struct {
	reader *maxminddb.Reader
}

// OpenMMDB opens a MaxMind ASN database.
func OpenMMDB(path string) (*MMDBResolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrAddressLookupUnavailable,
			"open %s: %v", path, err)
	}

	if !strings.Contains(reader.Metadata.DatabaseType, "ASN") {
		reader.Close()

		return nil, errors.Wrapf(ErrAddressLookupUnavailable,
			"%s is a %s database, not an ASN database",
			path, reader.Metadata.DatabaseType)
	}

	return &MMDBResolver{reader: reader}, nil
}

// Lookup returns the AS announcing ip.
func (r *MMDBResolver) Lookup(ip netip.Addr) (uint32, bool) {
	var rec asnRecord
	if err := r.reader.Lookup(net.IP(ip.AsSlice()), &rec); err != nil {
		return 0, false
	}

	if rec.AutonomousSystemNumber == 0 {
		return 0, false
	}

	return rec.AutonomousSystemNumber, true
}

// Close closes the database.
func (r *MMDBResolver) Close() error {
	return r.reader.Close()
}
