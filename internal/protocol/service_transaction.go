package protocol

import (
	"context"

	"google.golang.org/grpc"
)

const (
	transactionServiceName = "nexusdb.Transaction"
	transactionTransact    = "/" + transactionServiceName + "/Transact"
)

// TransactionStreamClient is the bidi-stream half of the hand-written
// Transaction service stub, equivalent to the generated
// AlertService_StreamAlertsClient in the teacher.
type TransactionStreamClient interface {
	Send(*ClientFrame) error
	Recv() (*ServerFrame, error)
	grpc.ClientStream
}

// TransactionClient opens the bidirectional Transact stream.
type TransactionClient interface {
	Transact(ctx context.Context, opts ...grpc.CallOption) (TransactionStreamClient, error)
}

type transactionClient struct{ cc grpc.ClientConnInterface }

// NewTransactionClient wraps a live connection for the Transaction service.
func NewTransactionClient(cc grpc.ClientConnInterface) TransactionClient {
	return &transactionClient{cc: cc}
}

func (c *transactionClient) Transact(ctx context.Context, opts ...grpc.CallOption) (TransactionStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &transactionStreamDesc, transactionTransact, append(callOpts, opts...)...)
	if err != nil {
		return nil, err
	}
	return &transactionStreamClient{stream}, nil
}

type transactionStreamClient struct{ grpc.ClientStream }

func (s *transactionStreamClient) Send(frame *ClientFrame) error {
	return s.ClientStream.SendMsg(frame)
}

func (s *transactionStreamClient) Recv() (*ServerFrame, error) {
	frame := new(ServerFrame)
	if err := s.ClientStream.RecvMsg(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// TransactionStreamServer is the server-side half handed to
// TransactionServer.Transact.
type TransactionStreamServer interface {
	Send(*ServerFrame) error
	Recv() (*ClientFrame, error)
	grpc.ServerStream
}

// TransactionServer is implemented by the test double / real server that
// mounts onto a grpc.Server via RegisterTransactionServer.
type TransactionServer interface {
	Transact(TransactionStreamServer) error
}

type transactionStreamServer struct{ grpc.ServerStream }

func (s *transactionStreamServer) Send(frame *ServerFrame) error {
	return s.ServerStream.SendMsg(frame)
}

func (s *transactionStreamServer) Recv() (*ClientFrame, error) {
	frame := new(ClientFrame)
	if err := s.ServerStream.RecvMsg(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

var transactionStreamDesc = grpc.StreamDesc{
	StreamName:    "Transact",
	ServerStreams: true,
	ClientStreams: true,
}

var transactionServiceDesc = grpc.ServiceDesc{
	ServiceName: transactionServiceName,
	HandlerType: (*TransactionServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "Transact",
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(TransactionServer).Transact(&transactionStreamServer{stream})
			},
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "nexusdb/transaction.proto",
}

// RegisterTransactionServer mounts srv's Transact handler onto s.
func RegisterTransactionServer(s grpc.ServiceRegistrar, srv TransactionServer) {
	s.RegisterService(&transactionServiceDesc, srv)
}
