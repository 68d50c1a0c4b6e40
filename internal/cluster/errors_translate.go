package cluster

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// translateRPCError maps a gRPC status error onto the driver's own error
// taxonomy (SPEC_FULL.md §7). dbName, when non-empty, is used to build a
// DatabaseDoesNotExistError for a NotFound status, since the status message
// alone is not guaranteed to carry it.
func translateRPCError(err error, dbName string) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("nexusdb/cluster: %w: %v", common.ErrUnableToConnect, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("nexusdb/cluster: %w: %s", common.ErrUnableToConnect, st.Message())
	case codes.NotFound:
		if dbName != "" {
			return &common.DatabaseDoesNotExistError{Name: dbName}
		}
		return &common.OtherError{Message: st.Message()}
	case codes.FailedPrecondition:
		return fmt.Errorf("nexusdb/cluster: %w: %s", common.ErrClusterReplicaNotPrimary, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return &common.OtherError{Message: st.Message()}
	default:
		return &common.OtherError{Message: st.Message()}
	}
}
