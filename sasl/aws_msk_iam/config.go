package aws_msk_iam

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config configures a Mechanism, mirroring the option names of §6.
//
// When RoleArn is empty, the static AccessKeyID/SecretAccessKey/
// SessionToken fields (or, exclusively, CredentialsProvider) supply the
// credential used directly against the broker.
//
// When RoleArn is set, those same two sources instead supply the *base*
// credential used to sign the periodic STS AssumeRole call; the
// credential actually used against the broker is the temporary one STS
// returns, kept refreshed by the background scheduler.
type Config struct {
	// AccessKeyID, SecretAccessKey, and SessionToken configure a static
	// base credential. SessionToken is optional. Mutually exclusive with
	// CredentialsProvider.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Region is required in all modes.
	Region string

	// CredentialsProvider, if set, is queried for the base credential
	// instead of using the static fields. Retrieve is called lazily: on
	// every Start when RoleArn is empty, or before every AssumeRole call
	// when RoleArn is set.
	CredentialsProvider aws.CredentialsProvider

	// RoleArn, if set, enables the STS AssumeRole refresh scheduler.
	RoleArn         string
	RoleSessionName string
	ExternalID      string
	DurationSec     int

	// TLS carries optional client-cert/CA material for the STS HTTPS call.
	TLS *TLSConfig

	Logger Logger
}

// Validate checks Config for internal consistency, returning a
// *ConfigError describing the first problem found.
func (c *Config) Validate() error {
	hasStatic := c.AccessKeyID != "" || c.SecretAccessKey != ""
	if hasStatic && (c.AccessKeyID == "" || c.SecretAccessKey == "") {
		return &ConfigError{Field: "AccessKeyID/SecretAccessKey", Reason: "both must be set together"}
	}
	if hasStatic && c.CredentialsProvider != nil {
		return &ConfigError{Field: "Config", Reason: "AccessKeyID/SecretAccessKey and CredentialsProvider are mutually exclusive"}
	}
	if !hasStatic && c.CredentialsProvider == nil {
		return &ConfigError{Field: "Config", Reason: "a credential source is required: static keys or CredentialsProvider"}
	}

	if c.Region == "" {
		return &ConfigError{Field: "Region", Reason: "must not be empty"}
	}

	if c.RoleArn != "" {
		if c.RoleSessionName == "" {
			return &ConfigError{Field: "RoleSessionName", Reason: "required when RoleArn is set"}
		}
		if c.DurationSec != 0 && (c.DurationSec < 900 || c.DurationSec > 43200) {
			return &ConfigError{Field: "DurationSec", Reason: "must be between 900 and 43200 seconds"}
		}
	}

	return nil
}

func (c *Config) durationSecOrDefault() int {
	if c.DurationSec == 0 {
		return 3600
	}
	return c.DurationSec
}

func (c *Config) assumeRoleParams() assumeRoleParams {
	return assumeRoleParams{
		RoleArn:         c.RoleArn,
		RoleSessionName: c.RoleSessionName,
		ExternalID:      c.ExternalID,
		Region:          c.Region,
		DurationSec:     c.durationSecOrDefault(),
	}
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return nopLogger{}
	}
	return c.Logger
}

// provider returns the aws.CredentialsProvider this Config resolves
// credentials through. A caller-supplied CredentialsProvider is used
// as-is; static keys are wrapped in credentials.NewStaticCredentialsProvider
// so the rest of the package has a single aws.CredentialsProvider seam to
// call through, regardless of which source the caller configured.
func (c *Config) provider() aws.CredentialsProvider {
	if c.CredentialsProvider != nil {
		return c.CredentialsProvider
	}
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// baseCredentialFunc returns the function the refresh scheduler uses to
// resolve the credential that signs each AssumeRole call, re-queried on
// every attempt so a rotating base credential (e.g. an instance-profile
// role behind a CredentialsProvider) stays current.
func (c *Config) baseCredentialFunc() baseCredentialFunc {
	provider := c.provider()
	region := c.Region
	return func(ctx context.Context) (Credential, error) {
		awsCred, err := provider.Retrieve(ctx)
		if err != nil {
			return Credential{}, err
		}
		return fromAWSCredentials(awsCred, region), nil
	}
}
