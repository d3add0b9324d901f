package linkconfig

import (
	"errors"
	"strings"

	"golang.org/x/net/idna"
)

// normalizeHost converts host to its lower-case ASCII form.
func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", errors.New("empty host")
	}

	return idna.Lookup.ToASCII(host)
}

// hostSet is an allow-list of normalized hosts. An empty set allows any
// host.
type hostSet map[string]struct{}

func newHostSet(hosts []string) (hostSet, error) {
	set := make(hostSet, len(hosts))
	for _, host := range hosts {
		normalized, err := normalizeHost(host)
		if err != nil {
			return nil, err
		}
		set[normalized] = struct{}{}
	}
	return set, nil
}

func (s hostSet) allows(host string) bool {
	if len(s) == 0 {
		return true
	}

	normalized, err := normalizeHost(host)
	if err != nil {
		return false
	}

	_, ok := s[normalized]
	return ok
}
