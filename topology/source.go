package topology

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Source names a topology description format.
type Source string

const (
	// SourceLND is the describegraph dump produced by lnd.
	SourceLND Source = "lnd"
	// SourceLNResearch is the node-link dump used by LN research tooling,
	// where each channel is listed once per direction.
	SourceLNResearch Source = "lnr"
)

// ParseSource converts a flag value into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(s)) {
	case SourceLND:
		return SourceLND, nil
	case SourceLNResearch:
		return SourceLNResearch, nil
	}

	return "", errors.Errorf("unknown graph source %q, want lnd or lnr", s)
}

func (s Source) String() string {
	return string(s)
}

// Set implements pflag.Value.
func (s *Source) Set(v string) error {
	parsed, err := ParseSource(v)
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Type implements pflag.Value.
func (s *Source) Type() string {
	return "source"
}

// Load decodes a topology description in the given format.
func Load(r io.Reader, src Source) (*Graph, error) {
	switch src {
	case SourceLND:
		return loadLND(r)
	case SourceLNResearch:
		return loadLNResearch(r)
	}

	return nil, errors.Errorf("unknown graph source %q", src)
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string, src Source) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open topology")
	}
	defer f.Close()

	g, err := Load(f, src)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	return g, nil
}

// flexUint accepts both JSON numbers and decimal strings. lnd serializes
// 64-bit integers as strings.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.Errorf("not an unsigned integer: %s", b)
	}

	*f = flexUint(v)

	return nil
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*f = flexString(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Errorf("not a string or number: %s", b)
	}

	*f = flexString(n.String())

	return nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return malformed("document", "%v", err)
	}

	return nil
}
