package aws_msk_iam

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	algorithm    = "AWS4-HMAC-SHA256"
	awsRequest   = "aws4_request"
	emptyPayload = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// sha256Hex returns the lowercase hex SHA-256 digest of data, the "payload
// hash" used in a canonical request.
func sha256Hex(data []byte) string {
	if len(data) == 0 {
		return emptyPayload
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hmacSHA256 is the base primitive for the nested key-derivation chain in
// §4.C. Both key and data are treated as opaque bytes, never as hex.
func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// uriEncode percent-encodes every byte of s outside the unreserved set
// A-Z a-z 0-9 - _ . ~, using uppercase hex digits, per the AWS SigV4 rules
// (which differ from url.QueryEscape: space must not become "+" and "~"
// must stay literal).
func uriEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigit(c >> 4))
		b.WriteByte(hexDigit(c & 0x0f))
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}

func hexDigit(b byte) byte {
	const digits = "0123456789ABCDEF"
	return digits[b&0x0f]
}

// credentialScope binds a derived signing key to a single (day, region,
// service): "{ymd}/{region}/{service}/aws4_request".
func credentialScope(ymd, region, service string) string {
	return ymd + "/" + region + "/" + service + "/" + awsRequest
}

// amzDate composes the YYYYMMDDTHHMMSSZ timestamp from its ymd/hms parts.
// Both must be derived from the same instant by the caller.
func amzDate(ymd, hms string) string {
	return ymd + "T" + hms + "Z"
}

// canonicalHeaders renders the newline-terminated "name:value\n" block, in
// the order the caller supplies (the caller is responsible for matching
// signedHeaders' order).
func canonicalHeaders(headers []headerKV) string {
	var b strings.Builder
	for _, h := range headers {
		b.WriteString(strings.ToLower(h.Name))
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(h.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// signedHeaderNames renders the ";"-joined lowercase header-name list in
// the same order as canonicalHeaders was built from.
func signedHeaderNames(headers []headerKV) string {
	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = strings.ToLower(h.Name)
	}
	return strings.Join(names, ";")
}

type headerKV struct {
	Name  string
	Value string
}

// canonicalRequest builds the canonical request per §4.B. The canonical URI
// is always "/"; canonicalQueryString and canonicalHeadersBlock must already
// be built in the producer-fixed order required by the use site (see sts.go
// and payload.go), never alphabetically re-sorted here.
func canonicalRequest(method, canonicalQueryString, canonicalHeadersBlock, signedHeadersList string, body []byte) string {
	return method + "\n" +
		"/" + "\n" +
		canonicalQueryString + "\n" +
		canonicalHeadersBlock + "\n" +
		signedHeadersList + "\n" +
		sha256Hex(body)
}

// stringToSign builds the final string signed by the derived key, per
// §4.B: algorithm, amz_date, credential scope, and the hashed canonical
// request.
func stringToSign(amzDateStr, scope, canonReq string) string {
	return algorithm + "\n" +
		amzDateStr + "\n" +
		scope + "\n" +
		sha256Hex([]byte(canonReq))
}
