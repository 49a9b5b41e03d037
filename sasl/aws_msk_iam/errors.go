package aws_msk_iam

import "fmt"

// ConfigError indicates a missing or invalid combination of configuration
// options. It is fatal: it is only ever returned from New, before any
// goroutine has been started.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string { return "aws_msk_iam: config: " + e.Field + ": " + e.Reason }

// CredentialExpiredError is returned by (*CredentialStore).install when the
// caller supplies a credential whose expiry is not strictly in the future.
// The store is left unmodified.
type CredentialExpiredError struct {
	ExpiresAtUnixMs int64
	NowUnixMs       int64
}

func (e *CredentialExpiredError) Error() string {
	return fmt.Sprintf("aws_msk_iam: credential expires_at=%dms is not after now=%dms",
		e.ExpiresAtUnixMs, e.NowUnixMs)
}

// StsTransportError wraps a connection, TLS, or I/O failure talking to STS.
// It is retried by the refresh scheduler after a fixed backoff.
type StsTransportError struct {
	Err error
}

func (e *StsTransportError) Error() string { return "aws_msk_iam: sts transport: " + e.Err.Error() }
func (e *StsTransportError) Unwrap() error { return e.Err }

// StsProtocolError wraps a well-formed STS HTTP response that could not be
// turned into a credential: either the XML was an ErrorResponse, or a
// required field was missing from a successful-looking response.
type StsProtocolError struct {
	Msg string
}

func (e *StsProtocolError) Error() string { return "aws_msk_iam: sts protocol: " + e.Msg }

// NoCredentialsAvailableError is returned by (*CredentialStore).snapshot
// when no credential has been installed yet.
type NoCredentialsAvailableError struct {
	Reason string
}

func (e *NoCredentialsAvailableError) Error() string {
	return "aws_msk_iam: no credentials available: " + e.Reason
}

// SessionTokenMissingError is returned when STS mode is enabled but the
// credential being used carries no session token.
type SessionTokenMissingError struct{}

func (e *SessionTokenMissingError) Error() string {
	return "aws_msk_iam: session token required but missing"
}

// AuthenticationError is the event published on (*CredentialStore).Errors()
// when a credential refresh fails, per §6: Kind is always "authentication"
// and Text is the human-readable message surfaced to the client.
type AuthenticationError struct {
	Kind string
	Text string
}

func (e *AuthenticationError) Error() string { return e.Text }

// AuthRejectedError wraps the broker's non-empty SASL response, which is a
// human-readable rejection reason.
type AuthRejectedError struct {
	ServerResponse string
}

func (e *AuthRejectedError) Error() string {
	return "aws_msk_iam: authentication rejected by broker: " + e.ServerResponse
}
