package billing

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestFlexString_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexString
	}{
		{"string", `"1234567890"`, "1234567890"},
		{"integer", `1234567890`, "1234567890"},
		{"large integer stays exact", `9007199254740993`, "9007199254740993"},
		{"empty string", `""`, ""},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s FlexString
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

func TestFlexString_MarshalAlwaysString(t *testing.T) {
	var s FlexString
	if err := json.Unmarshal([]byte(`42`), &s); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"42"` {
		t.Errorf("Marshal = %s, want %q", out, `"42"`)
	}
}

func TestFlexString_FieldInStruct(t *testing.T) {
	type rec struct {
		BillAccountID FlexString `json:"BillAccountID"`
		BillOwnerID   FlexString `json:"BillOwnerID"`
	}

	var r rec
	err := json.Unmarshal([]byte(`{"BillAccountID":167112893,"BillOwnerID":"167112893"}`), &r)
	if err != nil {
		t.Fatal(err)
	}
	if r.BillAccountID != r.BillOwnerID {
		t.Errorf("number and string ingestion differ: %q vs %q", r.BillAccountID, r.BillOwnerID)
	}
}
