package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true}, // zero amounts are legal
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{200000, "2000.00"},
		{-150, "-1.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1950}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "19.50" {
		t.Fatalf("expected 19.50, got %s", data)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: %v != %v", back, m)
	}
	var fromString Money
	if err := fromString.UnmarshalJSON([]byte(`"19.50"`)); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if fromString != m {
		t.Fatalf("quoted form mismatch: %v != %v", fromString, m)
	}
}

// A net total goes negative whenever expenses exceed income, so the
// wire format must round-trip signed values even though record amounts
// are magnitudes.
func TestMoneyJSONRoundTripNegative(t *testing.T) {
	m := Money{Cents: -4250}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "-42.50" {
		t.Fatalf("expected -42.50, got %s", data)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: %v != %v", back, m)
	}
	var fromString Money
	if err := fromString.UnmarshalJSON([]byte(`"-42.50"`)); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if fromString != m {
		t.Fatalf("quoted form mismatch: %v != %v", fromString, m)
	}
}
