package aws_msk_iam

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	stsHost          = "sts.amazonaws.com"
	stsService       = "sts"
	stsContentType   = "application/x-www-form-urlencoded; charset=utf-8"
	stsVersion       = "2011-06-15"
	assumeRoleAction = "AssumeRole"
)

// assumeRoleParams are the inputs the STS client needs from configuration
// to build a signed AssumeRole request. The base credential used to sign
// the call is supplied separately, since it may come from a static
// Config or be re-fetched from a CredentialsProvider on every attempt.
type assumeRoleParams struct {
	Region          string
	RoleArn         string
	RoleSessionName string
	ExternalID      string // optional
	DurationSec     int
}

// buildAssumeRoleRequestParameters builds the POST body in the fixed order
// required by §4.D. RoleSessionName is deliberately NOT uri-encoded here,
// matching the original source's behavior byte for byte (SPEC_FULL.md §9).
func buildAssumeRoleRequestParameters(p assumeRoleParams) string {
	var b strings.Builder
	b.WriteString("Action=")
	b.WriteString(assumeRoleAction)
	b.WriteString("&DurationSeconds=")
	b.WriteString(strconv.Itoa(p.DurationSec))
	b.WriteString("&RoleArn=")
	b.WriteString(uriEncode(p.RoleArn))
	b.WriteString("&RoleSessionName=")
	b.WriteString(p.RoleSessionName)
	if p.ExternalID != "" {
		b.WriteString("&ExternalId=")
		b.WriteString(uriEncode(p.ExternalID))
	}
	b.WriteString("&Version=")
	b.WriteString(stsVersion)
	return b.String()
}

// buildAssumeRoleRequest composes the fully signed *http.Request for the
// STS AssumeRole call, per §4.D. base is the credential used to sign the
// request, which may itself carry a session token if the caller's base
// credential is already temporary (e.g. an instance-profile role).
func buildAssumeRoleRequest(base Credential, p assumeRoleParams, now time.Time) (*http.Request, error) {
	ts := newTimestamp(now)
	body := buildAssumeRoleRequestParameters(p)

	headers := []headerKV{
		{Name: "content-length", Value: strconv.Itoa(len(body))},
		{Name: "content-type", Value: stsContentType},
		{Name: "host", Value: stsHost},
		{Name: "x-amz-date", Value: ts.amzDate()},
	}
	if base.SessionToken != "" {
		headers = append(headers, headerKV{Name: "x-amz-security-token", Value: base.SessionToken})
	}
	headersBlock := canonicalHeaders(headers)
	signedHeadersList := signedHeaderNames(headers)

	canonReq := canonicalRequest("POST", "", headersBlock, signedHeadersList, []byte(body))
	scope := credentialScope(ts.ymd, p.Region, stsService)
	strToSign := stringToSign(ts.amzDate(), scope, canonReq)
	signature := signatureForRequest(base.SecretAccessKey, ts.ymd, p.Region, stsService, strToSign)
	authHeader := authorizationHeader(base.AccessKeyID, scope, signedHeadersList, signature)

	req, err := http.NewRequest(http.MethodPost, "https://"+stsHost+"/", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Host = stsHost
	req.Header.Set("Host", stsHost)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("Content-Type", stsContentType)
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("X-Amz-Date", ts.amzDate())
	if base.SessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", base.SessionToken)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	return req, nil
}

// assumeRoleErrorResponse is the XML shape STS returns on failure.
type assumeRoleErrorResponse struct {
	XMLName xml.Name `xml:"ErrorResponse"`
	Error   struct {
		Message string `xml:"Message"`
	} `xml:"Error"`
}

// assumeRoleSuccessResponse is the XML shape STS returns on success.
type assumeRoleSuccessResponse struct {
	XMLName xml.Name `xml:"AssumeRoleResponse"`
	Result  struct {
		Credentials struct {
			AccessKeyID     string `xml:"AccessKeyId"`
			SecretAccessKey string `xml:"SecretAccessKey"`
			SessionToken    string `xml:"SessionToken"`
			Expiration      string `xml:"Expiration"`
		} `xml:"Credentials"`
	} `xml:"AssumeRoleResult"`
}

// parseAssumeRoleResponse decodes an STS AssumeRole HTTP response body,
// per §4.D: an ErrorResponse root yields a StsProtocolError carrying
// Error.Message; otherwise the four Credentials fields are required, with
// Expiration parsed from ISO-8601 UTC into a Credential.
func parseAssumeRoleResponse(body []byte, region string) (Credential, error) {
	if isErrorResponse(body) {
		var errResp assumeRoleErrorResponse
		if err := xml.Unmarshal(body, &errResp); err != nil {
			return Credential{}, &StsProtocolError{Msg: "malformed ErrorResponse: " + err.Error()}
		}
		return Credential{}, &StsProtocolError{Msg: errResp.Error.Message}
	}

	var resp assumeRoleSuccessResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return Credential{}, &StsProtocolError{Msg: "malformed AssumeRoleResponse: " + err.Error()}
	}

	creds := resp.Result.Credentials
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" || creds.SessionToken == "" || creds.Expiration == "" {
		return Credential{}, &StsProtocolError{Msg: "AssumeRoleResponse missing required Credentials fields"}
	}

	expiresAtUnixMs, err := parseExpiration(creds.Expiration)
	if err != nil {
		return Credential{}, &StsProtocolError{Msg: "unparseable Expiration: " + err.Error()}
	}

	return Credential{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Region:          region,
		ExpiresAtUnixMs: expiresAtUnixMs,
	}, nil
}

func isErrorResponse(body []byte) bool {
	var name struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(body, &name); err != nil {
		return false
	}
	return name.XMLName.Local == "ErrorResponse"
}

func parseExpiration(s string) (int64, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05.999Z",
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return nowUnixMs(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp format %q", s)
}

// TLSConfig carries the client cert/key/CA material §6 allows configuring
// for the STS HTTPS call.
type TLSConfig struct {
	Cert *tls.Certificate
	// CAPool, if non-nil, is used as the RootCAs pool for the STS call
	// instead of the system pool.
	CAPool *x509.CertPool
}

// clientTLSConfig turns a TLSConfig into the *tls.Config the stsClient's
// transport needs, or nil if cfg is nil.
func clientTLSConfig(cfg *TLSConfig) *tls.Config {
	if cfg == nil {
		return nil
	}
	tlsCfg := &tls.Config{}
	if cfg.Cert != nil {
		tlsCfg.Certificates = []tls.Certificate{*cfg.Cert}
	}
	if cfg.CAPool != nil {
		tlsCfg.RootCAs = cfg.CAPool
	}
	return tlsCfg
}

// stsClient performs signed AssumeRole calls against STS. It holds no
// mutable state beyond the *http.Client, so a single instance is safe to
// share across the lifetime of a Mechanism.
type stsClient struct {
	httpClient *http.Client
}

func newSTSClient(cfg *TLSConfig) *stsClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg := clientTLSConfig(cfg); tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	return &stsClient{httpClient: &http.Client{Transport: transport, Timeout: 30 * time.Second}}
}

// AssumeRole performs the signed STS call and returns the resulting
// credential, or a *StsTransportError / *StsProtocolError.
func (c *stsClient) AssumeRole(ctx context.Context, base Credential, p assumeRoleParams, now time.Time) (Credential, error) {
	req, err := buildAssumeRoleRequest(base, p, now)
	if err != nil {
		return Credential{}, &StsTransportError{Err: err}
	}
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credential{}, &StsTransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, &StsTransportError{Err: err}
	}

	return parseAssumeRoleResponse(body, p.Region)
}
