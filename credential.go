package nexusdb

import "github.com/nexusdb/nexusdb-driver-go/internal/common"

// Credential holds the username/password pair and TLS configuration an
// embedding program authenticates with.
type Credential = common.Credential

// NewCredentialWithTLS builds a Credential for an encrypted connection. When
// tlsRootCA is empty the system's default certificate pool is used to verify
// the server.
func NewCredentialWithTLS(username, password, tlsRootCA string) Credential {
	return common.NewCredentialWithTLS(username, password, tlsRootCA)
}

// NewCredentialWithoutTLS builds a Credential for a plaintext connection.
func NewCredentialWithoutTLS(username, password string) Credential {
	return common.NewCredentialWithoutTLS(username, password)
}
