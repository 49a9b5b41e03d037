package aws_msk_iam

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/solacedev/librdkafka-msk-iam-auth/sasl"
)

const mechanismName = "AWS_MSK_IAM"

// Mechanism implements sasl.Mechanism and sasl.NeedsHost for the
// AWS_MSK_IAM SASL mechanism, per §4.H. One Mechanism is constructed per
// Config and is safe for concurrent use by multiple connections; each
// Start call produces its own authState.
type Mechanism struct {
	cfg   *Config
	store *CredentialStore
	sched *refreshScheduler

	host string
}

// NewMechanism validates cfg and constructs a Mechanism. If cfg selects
// the STS credential source, the refresh scheduler is started immediately
// and keeps running until Close is called.
func NewMechanism(cfg *Config) (*Mechanism, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Mechanism{cfg: cfg, store: NewCredentialStore()}

	if cfg.RoleArn != "" {
		sts := newSTSClient(cfg.TLS)
		m.sched = newRefreshScheduler(sts, m.store, cfg.assumeRoleParams(), cfg.baseCredentialFunc(), cfg.logger())
		m.sched.Start()
	}
	// With no RoleArn, Start resolves the credential from cfg.provider()
	// directly on every call; no background scheduler is needed.

	return m, nil
}

// Close stops the background refresh scheduler, if one is running. Safe
// to call on a Mechanism that never started one.
func (m *Mechanism) Close() {
	if m.sched != nil {
		m.sched.Close()
	}
}

// Name implements sasl.Mechanism.
func (m *Mechanism) Name() string { return mechanismName }

// Errors returns the channel on which credential-refresh failures are
// published as *AuthenticationError events, per §6. Only the most recent
// failure is ever buffered; a caller that never reads it is never blocked.
// The channel is empty (never sends) when cfg selects a static credential
// source, since there is no background refresh to fail.
func (m *Mechanism) Errors() <-chan error {
	return m.store.Errors()
}

// WithHost implements sasl.NeedsHost. It returns a shallow copy of m bound
// to address, since the signed payload embeds the broker hostname.
func (m *Mechanism) WithHost(address string) sasl.Mechanism {
	clone := *m
	clone.host = address
	return &clone
}

// Start implements sasl.Mechanism. It resolves the current credential
// (from the store, or the configured CredentialsProvider) and builds the
// signed first-message payload.
func (m *Mechanism) Start(ctx context.Context) (sasl.StateMachine, []byte, error) {
	cred, err := m.resolveCredential(ctx)
	if err != nil {
		return nil, nil, err
	}

	payload, err := buildSASLPayload(m.host, cred, time.Now())
	if err != nil {
		return nil, nil, &ConfigError{Field: "payload", Reason: err.Error()}
	}

	return &authState{}, payload, nil
}

func (m *Mechanism) resolveCredential(ctx context.Context) (Credential, error) {
	if m.cfg.RoleArn == "" {
		awsCred, err := m.cfg.provider().Retrieve(ctx)
		if err != nil {
			return Credential{}, &NoCredentialsAvailableError{Reason: err.Error()}
		}
		return fromAWSCredentials(awsCred, m.cfg.Region), nil
	}

	cred, refreshErr, ok := m.store.Snapshot()
	if !ok {
		if !m.store.WaitTimeout(10 * time.Second) {
			reason := "no credential available after waiting"
			if refreshErr != nil {
				reason = refreshErr.Error()
			}
			return Credential{}, &NoCredentialsAvailableError{Reason: reason}
		}
		cred, _, _ = m.store.Snapshot()
	}
	if cred.SessionToken == "" {
		return Credential{}, &SessionTokenMissingError{}
	}
	return cred, nil
}

func fromAWSCredentials(c aws.Credentials, region string) Credential {
	expires := neverExpires
	if !c.Expires.IsZero() {
		expires = nowUnixMs(c.Expires)
	}
	return Credential{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		Region:          region,
		ExpiresAtUnixMs: expires,
	}
}

// authState implements sasl.StateMachine. AWS_MSK_IAM is a single
// challenge/response round trip: the broker's one response is either
// empty (accepted) or a non-empty rejection reason, per §4.H's two-state
// machine (sendFirst has already happened by the time Next is reached,
// since the first message is returned from Start as the initial
// response).
type authState struct {
	done bool
}

// Next implements sasl.StateMachine. Per §4.H/§6, the broker sends zero
// bytes on success; any non-empty response is the broker's human-readable
// rejection reason and is treated as a rejection unconditionally, whatever
// shape it takes.
func (s *authState) Next(ctx context.Context, challenge []byte) (bool, []byte, error) {
	if s.done {
		return true, nil, nil
	}
	s.done = true

	if len(challenge) != 0 {
		return false, nil, &AuthRejectedError{ServerResponse: string(challenge)}
	}
	return true, nil, nil
}
