package protocol

import (
	"context"

	"google.golang.org/grpc"
)

// callOpts selects this package's wire codec for every unary and streaming
// call, the way a generated stub would bake in its own proto codec.
var callOpts = []grpc.CallOption{grpc.CallContentSubtype(CodecName)}

// --- ServerManager ---

const (
	serverManagerServiceName = "nexusdb.ServerManager"
	serverManagerServersAll  = "/" + serverManagerServiceName + "/ServersAll"
)

// ServerManagerClient is the hand-written equivalent of the
// protoc-gen-go-grpc client stub for the ServerManager service.
type ServerManagerClient interface {
	ServersAll(ctx context.Context, req *ServersAllReq, opts ...grpc.CallOption) (*ServersAllRes, error)
}

type serverManagerClient struct{ cc grpc.ClientConnInterface }

// NewServerManagerClient wraps a live connection for the ServerManager
// service, analogous to alertpb.NewAlertServiceClient in the teacher.
func NewServerManagerClient(cc grpc.ClientConnInterface) ServerManagerClient {
	return &serverManagerClient{cc: cc}
}

func (c *serverManagerClient) ServersAll(ctx context.Context, req *ServersAllReq, opts ...grpc.CallOption) (*ServersAllRes, error) {
	res := new(ServersAllRes)
	if err := c.cc.Invoke(ctx, serverManagerServersAll, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

// ServerManagerServer is implemented by the test double / real server that
// mounts onto a grpc.Server via RegisterServerManagerServer.
type ServerManagerServer interface {
	ServersAll(context.Context, *ServersAllReq) (*ServersAllRes, error)
}

var serverManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: serverManagerServiceName,
	HandlerType: (*ServerManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ServersAll",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(ServersAllReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ServerManagerServer).ServersAll(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serverManagerServersAll}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(ServerManagerServer).ServersAll(ctx, req.(*ServersAllReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nexusdb/server_manager.proto",
}

// RegisterServerManagerServer mounts srv's handlers onto s.
func RegisterServerManagerServer(s grpc.ServiceRegistrar, srv ServerManagerServer) {
	s.RegisterService(&serverManagerServiceDesc, srv)
}

// --- CoreDatabaseManager ---

const (
	coreDatabaseManagerServiceName = "nexusdb.CoreDatabaseManager"
	coreDatabaseManagerContains    = "/" + coreDatabaseManagerServiceName + "/Contains"
	coreDatabaseManagerCreate      = "/" + coreDatabaseManagerServiceName + "/Create"
	coreDatabaseManagerAll         = "/" + coreDatabaseManagerServiceName + "/All"
)

type CoreDatabaseManagerClient interface {
	Contains(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*ContainsRes, error)
	Create(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*CreateRes, error)
	All(ctx context.Context, req *AllReq, opts ...grpc.CallOption) (*AllRes, error)
}

type coreDatabaseManagerClient struct{ cc grpc.ClientConnInterface }

func NewCoreDatabaseManagerClient(cc grpc.ClientConnInterface) CoreDatabaseManagerClient {
	return &coreDatabaseManagerClient{cc: cc}
}

func (c *coreDatabaseManagerClient) Contains(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*ContainsRes, error) {
	res := new(ContainsRes)
	if err := c.cc.Invoke(ctx, coreDatabaseManagerContains, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coreDatabaseManagerClient) Create(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*CreateRes, error) {
	res := new(CreateRes)
	if err := c.cc.Invoke(ctx, coreDatabaseManagerCreate, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coreDatabaseManagerClient) All(ctx context.Context, req *AllReq, opts ...grpc.CallOption) (*AllRes, error) {
	res := new(AllRes)
	if err := c.cc.Invoke(ctx, coreDatabaseManagerAll, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

type CoreDatabaseManagerServer interface {
	Contains(context.Context, *NameReq) (*ContainsRes, error)
	Create(context.Context, *NameReq) (*CreateRes, error)
	All(context.Context, *AllReq) (*AllRes, error)
}

var coreDatabaseManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: coreDatabaseManagerServiceName,
	HandlerType: (*CoreDatabaseManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Contains",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(NameReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CoreDatabaseManagerServer).Contains(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: coreDatabaseManagerContains}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(CoreDatabaseManagerServer).Contains(ctx, req.(*NameReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "Create",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(NameReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CoreDatabaseManagerServer).Create(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: coreDatabaseManagerCreate}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(CoreDatabaseManagerServer).Create(ctx, req.(*NameReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "All",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(AllReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CoreDatabaseManagerServer).All(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: coreDatabaseManagerAll}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(CoreDatabaseManagerServer).All(ctx, req.(*AllReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nexusdb/core_database_manager.proto",
}

func RegisterCoreDatabaseManagerServer(s grpc.ServiceRegistrar, srv CoreDatabaseManagerServer) {
	s.RegisterService(&coreDatabaseManagerServiceDesc, srv)
}

// --- CoreDatabase ---

const (
	coreDatabaseServiceName = "nexusdb.CoreDatabase"
	coreDatabaseSchema      = "/" + coreDatabaseServiceName + "/Schema"
	coreDatabaseTypeSchema  = "/" + coreDatabaseServiceName + "/TypeSchema"
	coreDatabaseRuleSchema  = "/" + coreDatabaseServiceName + "/RuleSchema"
	coreDatabaseDelete      = "/" + coreDatabaseServiceName + "/Delete"
)

type CoreDatabaseClient interface {
	Schema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error)
	TypeSchema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error)
	RuleSchema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error)
	Delete(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*DeleteRes, error)
}

type coreDatabaseClient struct{ cc grpc.ClientConnInterface }

func NewCoreDatabaseClient(cc grpc.ClientConnInterface) CoreDatabaseClient {
	return &coreDatabaseClient{cc: cc}
}

func (c *coreDatabaseClient) Schema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error) {
	res := new(SchemaRes)
	if err := c.cc.Invoke(ctx, coreDatabaseSchema, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coreDatabaseClient) TypeSchema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error) {
	res := new(SchemaRes)
	if err := c.cc.Invoke(ctx, coreDatabaseTypeSchema, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coreDatabaseClient) RuleSchema(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*SchemaRes, error) {
	res := new(SchemaRes)
	if err := c.cc.Invoke(ctx, coreDatabaseRuleSchema, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coreDatabaseClient) Delete(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*DeleteRes, error) {
	res := new(DeleteRes)
	if err := c.cc.Invoke(ctx, coreDatabaseDelete, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

type CoreDatabaseServer interface {
	Schema(context.Context, *NameReq) (*SchemaRes, error)
	TypeSchema(context.Context, *NameReq) (*SchemaRes, error)
	RuleSchema(context.Context, *NameReq) (*SchemaRes, error)
	Delete(context.Context, *NameReq) (*DeleteRes, error)
}

func coreDatabaseUnaryHandler(methodName, fullMethod string, call func(CoreDatabaseServer, context.Context, *NameReq) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: methodName,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(NameReq)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CoreDatabaseServer), ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CoreDatabaseServer), ctx, req.(*NameReq))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

var coreDatabaseServiceDesc = grpc.ServiceDesc{
	ServiceName: coreDatabaseServiceName,
	HandlerType: (*CoreDatabaseServer)(nil),
	Methods: []grpc.MethodDesc{
		coreDatabaseUnaryHandler("Schema", coreDatabaseSchema, func(s CoreDatabaseServer, ctx context.Context, r *NameReq) (any, error) { return s.Schema(ctx, r) }),
		coreDatabaseUnaryHandler("TypeSchema", coreDatabaseTypeSchema, func(s CoreDatabaseServer, ctx context.Context, r *NameReq) (any, error) { return s.TypeSchema(ctx, r) }),
		coreDatabaseUnaryHandler("RuleSchema", coreDatabaseRuleSchema, func(s CoreDatabaseServer, ctx context.Context, r *NameReq) (any, error) { return s.RuleSchema(ctx, r) }),
		coreDatabaseUnaryHandler("Delete", coreDatabaseDelete, func(s CoreDatabaseServer, ctx context.Context, r *NameReq) (any, error) { return s.Delete(ctx, r) }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nexusdb/core_database.proto",
}

func RegisterCoreDatabaseServer(s grpc.ServiceRegistrar, srv CoreDatabaseServer) {
	s.RegisterService(&coreDatabaseServiceDesc, srv)
}

// --- ClusterDatabaseManager ---

const (
	clusterDatabaseManagerServiceName = "nexusdb.ClusterDatabaseManager"
	clusterDatabaseManagerGet         = "/" + clusterDatabaseManagerServiceName + "/Get"
	clusterDatabaseManagerAll         = "/" + clusterDatabaseManagerServiceName + "/All"
)

type ClusterDatabaseManagerClient interface {
	Get(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*GetRes, error)
	All(ctx context.Context, req *AllReq, opts ...grpc.CallOption) (*AllRes, error)
}

type clusterDatabaseManagerClient struct{ cc grpc.ClientConnInterface }

func NewClusterDatabaseManagerClient(cc grpc.ClientConnInterface) ClusterDatabaseManagerClient {
	return &clusterDatabaseManagerClient{cc: cc}
}

func (c *clusterDatabaseManagerClient) Get(ctx context.Context, req *NameReq, opts ...grpc.CallOption) (*GetRes, error) {
	res := new(GetRes)
	if err := c.cc.Invoke(ctx, clusterDatabaseManagerGet, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *clusterDatabaseManagerClient) All(ctx context.Context, req *AllReq, opts ...grpc.CallOption) (*AllRes, error) {
	res := new(AllRes)
	if err := c.cc.Invoke(ctx, clusterDatabaseManagerAll, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

type ClusterDatabaseManagerServer interface {
	Get(context.Context, *NameReq) (*GetRes, error)
	All(context.Context, *AllReq) (*AllRes, error)
}

var clusterDatabaseManagerServiceDesc = grpc.ServiceDesc{
	ServiceName: clusterDatabaseManagerServiceName,
	HandlerType: (*ClusterDatabaseManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Get",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(NameReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ClusterDatabaseManagerServer).Get(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: clusterDatabaseManagerGet}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(ClusterDatabaseManagerServer).Get(ctx, req.(*NameReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "All",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(AllReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ClusterDatabaseManagerServer).All(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: clusterDatabaseManagerAll}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(ClusterDatabaseManagerServer).All(ctx, req.(*AllReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nexusdb/cluster_database_manager.proto",
}

func RegisterClusterDatabaseManagerServer(s grpc.ServiceRegistrar, srv ClusterDatabaseManagerServer) {
	s.RegisterService(&clusterDatabaseManagerServiceDesc, srv)
}

// --- Session ---

const (
	sessionServiceName = "nexusdb.Session"
	sessionOpen        = "/" + sessionServiceName + "/Open"
	sessionClose       = "/" + sessionServiceName + "/Close"
	sessionPulse       = "/" + sessionServiceName + "/Pulse"
)

type SessionClient interface {
	Open(ctx context.Context, req *SessionOpenReq, opts ...grpc.CallOption) (*SessionOpenRes, error)
	Close(ctx context.Context, req *SessionIDReq, opts ...grpc.CallOption) (*SessionCloseRes, error)
	Pulse(ctx context.Context, req *SessionIDReq, opts ...grpc.CallOption) (*SessionPulseRes, error)
}

type sessionClient struct{ cc grpc.ClientConnInterface }

func NewSessionClient(cc grpc.ClientConnInterface) SessionClient {
	return &sessionClient{cc: cc}
}

func (c *sessionClient) Open(ctx context.Context, req *SessionOpenReq, opts ...grpc.CallOption) (*SessionOpenRes, error) {
	res := new(SessionOpenRes)
	if err := c.cc.Invoke(ctx, sessionOpen, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *sessionClient) Close(ctx context.Context, req *SessionIDReq, opts ...grpc.CallOption) (*SessionCloseRes, error) {
	res := new(SessionCloseRes)
	if err := c.cc.Invoke(ctx, sessionClose, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *sessionClient) Pulse(ctx context.Context, req *SessionIDReq, opts ...grpc.CallOption) (*SessionPulseRes, error) {
	res := new(SessionPulseRes)
	if err := c.cc.Invoke(ctx, sessionPulse, req, res, append(callOpts, opts...)...); err != nil {
		return nil, err
	}
	return res, nil
}

type SessionServer interface {
	Open(context.Context, *SessionOpenReq) (*SessionOpenRes, error)
	Close(context.Context, *SessionIDReq) (*SessionCloseRes, error)
	Pulse(context.Context, *SessionIDReq) (*SessionPulseRes, error)
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: sessionServiceName,
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Open",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(SessionOpenReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(SessionServer).Open(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sessionOpen}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(SessionServer).Open(ctx, req.(*SessionOpenReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "Close",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(SessionIDReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(SessionServer).Close(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sessionClose}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(SessionServer).Close(ctx, req.(*SessionIDReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "Pulse",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(SessionIDReq)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(SessionServer).Pulse(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sessionPulse}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(SessionServer).Pulse(ctx, req.(*SessionIDReq))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nexusdb/session.proto",
}

func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&sessionServiceDesc, srv)
}
