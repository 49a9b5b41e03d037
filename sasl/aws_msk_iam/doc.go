// Package aws_msk_iam implements the AWS_MSK_IAM SASL mechanism: it signs
// requests with AWS Signature Version 4, keeps a credential refreshed from
// AWS STS, and authenticates connections to an Amazon MSK IAM-enabled
// broker, based on the official reference implementation:
// https://github.com/aws/aws-msk-iam-auth
package aws_msk_iam
