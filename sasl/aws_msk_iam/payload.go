package aws_msk_iam

import (
	"encoding/json"
	"time"
)

const (
	kafkaClusterService = "kafka-cluster"
	connectAction       = "kafka-cluster:Connect"
	signedExpirySeconds = "900"
	payloadVersion      = "2020_10_22"
	userAgent           = "librdkafka"
)

// saslPayload mirrors the exact field order required by §4.E. encoding/json
// preserves struct field declaration order on Marshal, which is what makes
// this safe to build as a typed struct instead of a map (a map would
// reorder keys and break the broker's expectations, even though the broker
// only needs well-formed JSON — matching the reference payload byte for
// byte keeps the module's own test vectors exact).
type saslPayload struct {
	Version       string `json:"version"`
	Host          string `json:"host"`
	UserAgent     string `json:"user-agent"`
	Action        string `json:"action"`
	Algorithm     string `json:"x-amz-algorithm"`
	Credential    string `json:"x-amz-credential"`
	Date          string `json:"x-amz-date"`
	SecurityToken string `json:"x-amz-security-token,omitempty"`
	SignedHeaders string `json:"x-amz-signedheaders"`
	Expires       string `json:"x-amz-expires"`
	Signature     string `json:"x-amz-signature"`
}

// buildSASLPayload builds the signed kafka-cluster:Connect payload (§4.E)
// for the given hostname and credential snapshot, at instant now.
func buildSASLPayload(hostname string, cred Credential, now time.Time) ([]byte, error) {
	ts := newTimestamp(now)
	scope := credentialScope(ts.ymd, cred.Region, kafkaClusterService)
	credentialParam := cred.AccessKeyID + "/" + scope

	query := connectQueryString(credentialParam, ts, cred.SessionToken)
	headers := []headerKV{{Name: "host", Value: hostname}}
	headersBlock := canonicalHeaders(headers)
	signedHeadersList := signedHeaderNames(headers)

	canonReq := canonicalRequest("GET", query, headersBlock, signedHeadersList, nil)
	strToSign := stringToSign(ts.amzDate(), scope, canonReq)
	signature := signatureForRequest(cred.SecretAccessKey, ts.ymd, cred.Region, kafkaClusterService, strToSign)

	payload := saslPayload{
		Version:       payloadVersion,
		Host:          hostname,
		UserAgent:     userAgent,
		Action:        connectAction,
		Algorithm:     algorithm,
		Credential:    credentialParam,
		Date:          ts.amzDate(),
		SecurityToken: cred.SessionToken,
		SignedHeaders: signedHeadersList,
		Expires:       signedExpirySeconds,
		Signature:     signature,
	}
	return json.Marshal(payload)
}

// connectQueryString builds the fixed-order canonical query string for the
// kafka-cluster:Connect GET request (§4.E). The security-token pair, when
// present, sorts immediately before X-Amz-SignedHeaders by coincidence of
// alphabetical order — it is NOT the product of a general sort (see
// SPEC_FULL.md §8.7).
func connectQueryString(credentialParam string, ts timestamp, sessionToken string) string {
	pairs := []string{
		"Action=" + uriEncode(connectAction),
		"X-Amz-Algorithm=" + algorithm,
		"X-Amz-Credential=" + uriEncode(credentialParam),
		"X-Amz-Date=" + uriEncode(ts.amzDate()),
		"X-Amz-Expires=" + signedExpirySeconds,
	}
	if sessionToken != "" {
		pairs = append(pairs, "X-Amz-Security-Token="+uriEncode(sessionToken))
	}
	pairs = append(pairs, "X-Amz-SignedHeaders=host")

	s := pairs[0]
	for _, p := range pairs[1:] {
		s += "&" + p
	}
	return s
}
