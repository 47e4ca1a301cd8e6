package alibaba

import "testing"

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"a*b", "a%2Ab"},
		{"a~b", "a~b"},
		{"a/b", "a%2Fb"},
		{"2025-12-01T00:00:00Z", "2025-12-01T00%3A00%3A00Z"},
	}

	for _, tt := range tests {
		if got := percentEncode(tt.in); got != tt.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalQuery_Sorted(t *testing.T) {
	params := map[string]string{
		"BillingCycle": "2025-12",
		"Action":       "DescribeInstanceBill",
		"MaxResults":   "300",
	}

	want := "Action=DescribeInstanceBill&BillingCycle=2025-12&MaxResults=300"
	if got := canonicalQuery(params); got != want {
		t.Errorf("canonicalQuery = %q, want %q", got, want)
	}
}

// Documented RPC signature example: known inputs must produce the published
// signature.
func TestSignRequest_KnownVector(t *testing.T) {
	params := map[string]string{
		"Action":           "DescribeRegions",
		"Version":          "2014-05-26",
		"AccessKeyId":      "testid",
		"Timestamp":        "2016-02-23T12:46:24Z",
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   "3ee8c1b8-83d3-44af-a94f-4e0ad82fd6cf",
		"Format":           "XML",
	}

	got := signRequest("GET", params, "testsecret")
	want := "OLeaidTdJGSgvSUfcqlEpVuRvzE="
	if got != want {
		t.Errorf("signRequest = %q, want %q", got, want)
	}
}

func TestSignRequest_Deterministic(t *testing.T) {
	params := map[string]string{
		"Action":       "DescribeInstanceBill",
		"BillingCycle": "2025-12",
	}

	first := signRequest("POST", params, "secret")
	second := signRequest("POST", params, "secret")
	if first != second {
		t.Errorf("signature not deterministic: %q vs %q", first, second)
	}

	if other := signRequest("POST", params, "different"); other == first {
		t.Error("different secrets produced identical signatures")
	}
}
