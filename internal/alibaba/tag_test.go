package alibaba

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTag_Valid(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"whitespace only", "   ", map[string]string{}},
		{"only separators", "; ; ;", map[string]string{}},
		{
			"standard format",
			"key:Environment value:PROD; key:Role value:App; key:Application value:LSZL|APP2|",
			map[string]string{"Environment": "PROD", "Role": "App", "Application": "LSZL|APP2|"},
		},
		{
			"trailing semicolon",
			"key:Environment value:Prod; key:Application_Owner value:Vanessa.WC.Jiang@carlsberg.asia;",
			map[string]string{"Environment": "Prod", "Application_Owner": "Vanessa.WC.Jiang@carlsberg.asia"},
		},
		{
			"single pair",
			"key:Environment value:Production",
			map[string]string{"Environment": "Production"},
		},
		{
			"no spaces around semicolon",
			"key:Env value:Prod;key:Role value:App",
			map[string]string{"Env": "Prod", "Role": "App"},
		},
		{
			"extra spaces around semicolon",
			"key:Env value:Prod  ;  key:Role value:App",
			map[string]string{"Env": "Prod", "Role": "App"},
		},
		{
			"values with colons",
			"key:URL value:https://example.com:8080; key:Time value:12:30:45",
			map[string]string{"URL": "https://example.com:8080", "Time": "12:30:45"},
		},
		{
			"empty value",
			"key:Environment value:; key:Role value:App",
			map[string]string{"Environment": "", "Role": "App"},
		},
		{
			"missing key prefix still works",
			"Environment value:PROD; key:Role value:App",
			map[string]string{"Environment": "PROD", "Role": "App"},
		},
		{
			"unicode",
			"key:环境 value:生产; key:Role value:应用",
			map[string]string{"环境": "生产", "Role": "应用"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTag(tt.tag)
			if err != nil {
				t.Fatalf("ParseTag(%q) error = %v", tt.tag, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTag(%q) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseTag_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantMsg string
	}{
		{"missing value keyword", "key:Environment PROD; key:Role value:App", "missing 'value:'"},
		{"empty key", "key: value:PROD; key:Role value:App", "empty key"},
		{"no separator at all", "keyEnvironment valuePROD", "missing 'value:'"},
		{"only key part", "key:Environment", "missing 'value:'"},
		{"mixed valid and invalid", "key:Environment value:PROD; invalid_pair; key:Role value:App", "invalid_pair"},
		{"wrong format", "key:A:1", "missing 'value:'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTag(tt.tag)
			if err == nil {
				t.Fatalf("ParseTag(%q) = nil error, want failure", tt.tag)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}
