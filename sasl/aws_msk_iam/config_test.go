package aws_msk_iam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidateStaticOK(t *testing.T) {
	cfg := &Config{AccessKeyID: "id", SecretAccessKey: "secret", Region: "us-east-1"}
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRequiresRegion(t *testing.T) {
	cfg := &Config{AccessKeyID: "id", SecretAccessKey: "secret"}
	err := cfg.Validate()
	require.Error(t, err)
	require.IsType(t, &ConfigError{}, err)
}

func TestConfigValidateRequiresBothStaticFields(t *testing.T) {
	cfg := &Config{AccessKeyID: "id", Region: "us-east-1"}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRequiresACredentialSource(t *testing.T) {
	cfg := &Config{Region: "us-east-1"}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateStaticAndProviderMutuallyExclusive(t *testing.T) {
	cfg := &Config{
		AccessKeyID:         "id",
		SecretAccessKey:     "secret",
		Region:              "us-east-1",
		CredentialsProvider: fakeProvider{},
	}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRoleArnRequiresSessionName(t *testing.T) {
	cfg := &Config{AccessKeyID: "id", SecretAccessKey: "secret", Region: "us-east-1", RoleArn: "arn:aws:iam::1:role/r"}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateDurationSecRange(t *testing.T) {
	cfg := &Config{
		AccessKeyID: "id", SecretAccessKey: "secret", Region: "us-east-1",
		RoleArn: "arn:aws:iam::1:role/r", RoleSessionName: "s", DurationSec: 100,
	}
	require.Error(t, cfg.Validate())
}

func TestConfigAssumeRoleParamsDefaultsDuration(t *testing.T) {
	cfg := &Config{RoleArn: "arn", RoleSessionName: "s", Region: "us-east-1"}
	p := cfg.assumeRoleParams()
	require.Equal(t, 3600, p.DurationSec)
}
