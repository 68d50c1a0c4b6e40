// Package rpc wires the generated-style stubs in internal/protocol onto
// live gRPC channels: dialing, TLS and per-call authentication metadata,
// and the validate-connection probe. The per-endpoint facade
// (ServerConnection) built on top of it lives in internal/cluster.
package rpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// Channel is a reusable gRPC transport to one server address, built once per
// ServerConnection. Either Plaintext or Encrypted; the encrypted variant
// decorates every call with authentication metadata via an interceptor pair.
type Channel struct {
	Address common.Address
	Conn    *grpc.ClientConn

	// creds is nil for a plaintext channel.
	creds *common.CallCredentials
}

// OpenPlaintext dials addr with no transport security and no per-call
// authentication metadata.
func OpenPlaintext(ctx context.Context, addr common.Address) (*Channel, error) {
	conn, err := grpc.NewClient(addr.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("nexusdb/rpc: dial %s: %w", addr, err)
	}
	return &Channel{Address: addr, Conn: conn}, nil
}

// OpenEncrypted dials addr over TLS and returns a Channel plus the
// CallCredentials the caller should keep a reference to in order to observe
// and clear the server-issued token (e.g. on an authentication error).
func OpenEncrypted(ctx context.Context, addr common.Address, credential common.Credential) (*Channel, *common.CallCredentials, error) {
	tlsConfig, err := buildTLSConfig(credential)
	if err != nil {
		return nil, nil, err
	}

	callCreds := common.NewCallCredentials(credential)

	conn, err := grpc.NewClient(
		addr.String(),
		grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)),
		grpc.WithUnaryInterceptor(authUnaryInterceptor(callCreds)),
		grpc.WithStreamInterceptor(authStreamInterceptor(callCreds)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nexusdb/rpc: dial %s: %w", addr, err)
	}
	return &Channel{Address: addr, Conn: conn, creds: callCreds}, callCreds, nil
}

// buildTLSConfig builds a tls.Config that verifies the server against
// credential's root CA, or the system pool when none is configured.
func buildTLSConfig(credential common.Credential) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	caPath := credential.TLSRootCA()
	if caPath == "" {
		return cfg, nil
	}

	caPEM, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("nexusdb/rpc: read root CA %s: %w", caPath, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("nexusdb/rpc: parse root CA %s: no certificates found", caPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// Close releases the underlying connection. Does not touch any open
// sessions; callers are responsible for closing those first.
func (c *Channel) Close() error {
	return c.Conn.Close()
}

// authUnaryInterceptor decorates every unary call with authentication
// metadata read from callCreds, and caches any refreshed token carried back
// in trailing metadata.
func authUnaryInterceptor(callCreds *common.CallCredentials) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = decorateOutgoing(ctx, callCreds)
		var trailer metadata.MD
		opts = append(opts, grpc.Trailer(&trailer))
		err := invoker(ctx, method, req, reply, cc, opts...)
		observeTrailer(callCreds, trailer, err)
		return err
	}
}

// authStreamInterceptor is the streaming counterpart, used for the
// Transaction bidi stream.
func authStreamInterceptor(callCreds *common.CallCredentials) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		ctx = decorateOutgoing(ctx, callCreds)
		return streamer(ctx, desc, cc, method, opts...)
	}
}

// tokenMetadataKey and passwordMetadataKey name the trailing/outgoing
// metadata fields exchanged with the server for authentication.
const (
	usernameMetadataKey = "username"
	tokenMetadataKey    = "token"
	passwordMetadataKey = "password"
)

func decorateOutgoing(ctx context.Context, callCreds *common.CallCredentials) context.Context {
	pairs := []string{usernameMetadataKey, callCreds.Username()}
	if token, ok := callCreds.Token(); ok {
		pairs = append(pairs, tokenMetadataKey, token)
	} else {
		pairs = append(pairs, passwordMetadataKey, callCreds.Password())
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// observeTrailer caches a freshly issued token, or clears the cached token
// on an authentication failure so the next request falls back to the
// password.
func observeTrailer(callCreds *common.CallCredentials, trailer metadata.MD, callErr error) {
	if callErr != nil {
		if isAuthError(callErr) {
			callCreds.ResetToken()
		}
		return
	}
	if tokens := trailer.Get(tokenMetadataKey); len(tokens) > 0 && tokens[0] != "" {
		callCreds.SetToken(tokens[0])
	}
}

func isAuthError(err error) bool {
	st, ok := statusFromError(err)
	return ok && st.isUnauthenticated()
}
