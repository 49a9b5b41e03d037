package aws_msk_iam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureForRequest(t *testing.T) {
	strToSign := "AWS4-HMAC-SHA256\n20100101T000000Z\n20100101/us-east-1/kafka-cluster/aws4_request\n" +
		"8a719fb6d4b33f7d9c5b25b65af85a44d3627bdca66e1287b1a366fa90bafaa1"

	got := signatureForRequest("AWS_SECRET_ACCESS_KEY", "20100101", "us-east-1", "kafka-cluster", strToSign)

	require.Equal(t, "d3eeeddfb2c2b76162d583d7499c2364eb9a92b248218e31866659b18997ef44", got)
}

func TestSignatureForRequestSTS(t *testing.T) {
	strToSign := "AWS4-HMAC-SHA256\n20210910T190714Z\n20210910/us-east-1/sts/aws4_request\n" +
		"d66dff688ce93a268731fee21e3751669e2c27b8b54ce6d2d627b2c6f7049a7f"

	got := signatureForRequest("TESTSECRET", "20210910", "us-east-1", "sts", strToSign)

	require.Equal(t, "a825a6136b83c3feb7993b9d2947f6e479901f805089b08f717c0f2a03cd98f0", got)
}

func TestAuthorizationHeader(t *testing.T) {
	scope := "20210910/us-east-1/sts/aws4_request"
	signature := "a825a6136b83c3feb7993b9d2947f6e479901f805089b08f717c0f2a03cd98f0"

	got := authorizationHeader("TESTKEY", scope, "content-length;content-type;host;x-amz-date", signature)

	want := "AWS4-HMAC-SHA256 Credential=TESTKEY/20210910/us-east-1/sts/aws4_request, " +
		"SignedHeaders=content-length;content-type;host;x-amz-date, " +
		"Signature=a825a6136b83c3feb7993b9d2947f6e479901f805089b08f717c0f2a03cd98f0"
	require.Equal(t, want, got)
}
