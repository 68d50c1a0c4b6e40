// Package common holds the value types shared by every layer of the driver:
// addresses, credentials, options, and the error taxonomy. It has no
// dependency on gRPC or on the wire protocol so that both the public API
// package and the internal transport packages can depend on it without
// creating an import cycle.
package common

import (
	"fmt"
	"net"
	"strconv"
)

// Address is a parsed network endpoint identifying one server in a cluster.
// Two addresses are equal iff their canonical strings match.
type Address struct {
	host string
	port uint16
}

// ParseAddress parses a "host:port" string into an Address.
func ParseAddress(raw string) (Address, error) {
	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		return Address{}, fmt.Errorf("common: parse address %q: %w", raw, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("common: parse address %q: invalid port: %w", raw, err)
	}
	if host == "" {
		return Address{}, fmt.Errorf("common: parse address %q: empty host", raw)
	}
	return Address{host: host, port: uint16(port)}, nil
}

// Host returns the address's hostname or IP literal.
func (a Address) Host() string { return a.host }

// Port returns the address's TCP port.
func (a Address) Port() uint16 { return a.port }

// String returns the canonical "host:port" form used for equality and as the
// gRPC dial target.
func (a Address) String() string {
	return net.JoinHostPort(a.host, strconv.FormatUint(uint64(a.port), 10))
}

// Equal reports whether two addresses have the same canonical string form.
func (a Address) Equal(other Address) bool {
	return a.String() == other.String()
}

// IsZero reports whether a is the zero Address (no host set).
func (a Address) IsZero() bool {
	return a.host == "" && a.port == 0
}
