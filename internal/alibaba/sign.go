package alibaba

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// RPC-style signature (SignatureVersion 1.0): sort parameters, percent-encode
// per the OpenAPI rules, HMAC-SHA1 over "METHOD&%2F&<encoded query>" with the
// secret suffixed by "&".

// percentEncode applies the OpenAPI variant of RFC 3986 encoding
func percentEncode(s string) string {
	enc := url.QueryEscape(s)
	enc = strings.ReplaceAll(enc, "+", "%20")
	enc = strings.ReplaceAll(enc, "*", "%2A")
	enc = strings.ReplaceAll(enc, "%7E", "~")
	return enc
}

// canonicalQuery builds the sorted, encoded query string used for signing
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncode(k))
		b.WriteByte('=')
		b.WriteString(percentEncode(params[k]))
	}
	return b.String()
}

// signRequest computes the base64 HMAC-SHA1 signature for the given method
// and parameters. The Signature parameter itself must not be in params.
func signRequest(method string, params map[string]string, accessKeySecret string) string {
	stringToSign := method + "&" + percentEncode("/") + "&" + percentEncode(canonicalQuery(params))

	mac := hmac.New(sha1.New, []byte(accessKeySecret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
