package aws_msk_iam

import "encoding/hex"

// deriveSigningKey walks the date -> region -> service -> "aws4_request"
// nested HMAC chain from §4.C. secretAccessKey is concatenated with the
// literal "AWS4" as UTF-8 bytes, never hex-decoded.
func deriveSigningKey(secretAccessKey, ymd, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), []byte(ymd))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(awsRequest))
}

// sign produces the 64-character lowercase hex signature for strToSign,
// given the already-derived signing key.
func sign(signingKey []byte, strToSign string) string {
	sum := hmacSHA256(signingKey, []byte(strToSign))
	return hex.EncodeToString(sum)
}

// signatureForRequest is the component-C entry point: derive the key and
// sign strToSign in one call.
func signatureForRequest(secretAccessKey, ymd, region, service, strToSign string) string {
	key := deriveSigningKey(secretAccessKey, ymd, region, service)
	return sign(key, strToSign)
}

// authorizationHeader builds the Authorization header value per §4.C.
func authorizationHeader(accessKeyID, scope, signedHeadersList, signature string) string {
	return algorithm +
		" Credential=" + accessKeyID + "/" + scope +
		", SignedHeaders=" + signedHeadersList +
		", Signature=" + signature
}
