package common

import (
	"errors"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unable to connect", ErrUnableToConnect, true},
		{"wrapped unable to connect", errors.New("outer: " + ErrUnableToConnect.Error()), false},
		{"not primary", ErrClusterReplicaNotPrimary, true},
		{"cluster unable to connect", &ClusterUnableToConnectError{Addresses: []string{"a:1"}}, true},
		{"database does not exist", &DatabaseDoesNotExistError{Name: "x"}, false},
		{"internal", ErrInternal, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("%s: IsRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryableFollowsWrappedSentinels(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrUnableToConnect)
	if !IsRetryable(wrapped) {
		t.Errorf("IsRetryable(wrapped ErrUnableToConnect) = false, want true")
	}
}

// TestClusterAllNodesFailedErrorMessageCarriesEveryCause exercises testable
// property 2: the surfaced message contains every endpoint and its error.
func TestClusterAllNodesFailedErrorMessageCarriesEveryCause(t *testing.T) {
	err := &ClusterAllNodesFailedError{
		Database: "social_network",
		Causes: map[string]error{
			"node1:1729": errors.New("boom1"),
			"node2:1729": errors.New("boom2"),
		},
	}
	msg := err.Error()
	for _, want := range []string{"node1:1729", "boom1", "node2:1729", "boom2", "social_network"} {
		if !contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestClusterUnableToConnectErrorUnwrapsCauses(t *testing.T) {
	cause1 := errors.New("dial refused")
	cause2 := errors.New("timeout")
	err := &ClusterUnableToConnectError{Addresses: []string{"a:1", "b:1"}, Causes: []error{cause1, cause2}}
	if !errors.Is(err, cause1) || !errors.Is(err, cause2) {
		t.Fatalf("errors.Is did not find wrapped causes via Unwrap() []error")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
