package common

import "sync"

// Credential holds the username/password pair and TLS configuration an
// embedding program authenticates with. It is immutable once constructed;
// [CallCredentials] layers the mutable, per-connection auth token on top.
type Credential struct {
	username     string
	password     string
	tlsEnabled   bool
	tlsRootCAPEM string // path to the root CA certificate, empty when unset
}

// NewCredentialWithTLS builds a Credential for an encrypted connection. When
// tlsRootCA is empty the system's default certificate pool is used to verify
// the server.
func NewCredentialWithTLS(username, password, tlsRootCA string) Credential {
	return Credential{username: username, password: password, tlsEnabled: true, tlsRootCAPEM: tlsRootCA}
}

// NewCredentialWithoutTLS builds a Credential for a plaintext connection.
func NewCredentialWithoutTLS(username, password string) Credential {
	return Credential{username: username, password: password}
}

// Username returns the configured username.
func (c Credential) Username() string { return c.username }

// Password returns the configured password.
func (c Credential) Password() string { return c.password }

// IsTLSEnabled reports whether this credential is for an encrypted channel.
func (c Credential) IsTLSEnabled() bool { return c.tlsEnabled }

// TLSRootCA returns the path to the root CA certificate, or "" to use the
// system default pool.
func (c Credential) TLSRootCA() string { return c.tlsRootCAPEM }

// CallCredentials is a live Credential plus an optional server-issued auth
// token. The token, once set, replaces the password on subsequent requests;
// an authentication error resets it so the next request falls back to the
// password. It is safe for concurrent use: the token is guarded by a mutex,
// but the common case (read the token to decorate an outbound request) takes
// only a read lock so it never blocks behind a writer for long.
type CallCredentials struct {
	credential Credential

	mu    sync.RWMutex
	token string
	has   bool
}

// NewCallCredentials wraps credential with no cached token.
func NewCallCredentials(credential Credential) *CallCredentials {
	return &CallCredentials{credential: credential}
}

// Username returns the wrapped credential's username.
func (c *CallCredentials) Username() string { return c.credential.Username() }

// Password returns the wrapped credential's password.
func (c *CallCredentials) Password() string { return c.credential.Password() }

// Token returns the cached token and whether one is present.
func (c *CallCredentials) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.has
}

// SetToken caches a freshly issued server token. It is visible to every call
// on the channel that starts after SetToken returns; calls already in flight
// read the token before SetToken was called and are unaffected.
func (c *CallCredentials) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.has = true
}

// ResetToken clears the cached token, e.g. after an authentication error, so
// the next request falls back to the password.
func (c *CallCredentials) ResetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.has = false
}
