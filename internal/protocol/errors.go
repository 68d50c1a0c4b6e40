package protocol

import "fmt"

// errInvalidIDLength reports a SessionID/RequestID field that did not decode
// to exactly 16 bytes.
func errInvalidIDLength(field string, got int) error {
	return fmt.Errorf("protocol: invalid %s: expected 16 bytes, got %d", field, got)
}
