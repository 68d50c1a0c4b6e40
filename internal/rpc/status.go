package rpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// wrappedStatus adapts *status.Status to the tiny interface channel.go needs,
// kept separate so channel.go's interceptor logic does not depend directly
// on the grpc/status package's exact surface.
type wrappedStatus struct{ *status.Status }

func (s wrappedStatus) isUnauthenticated() bool { return s.Code() == codes.Unauthenticated }

func statusFromError(err error) (wrappedStatus, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return wrappedStatus{}, false
	}
	return wrappedStatus{st}, true
}
