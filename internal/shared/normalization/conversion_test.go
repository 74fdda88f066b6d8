package normalization

import (
	"encoding/json"
	"testing"
)

func TestAsFloat64(t *testing.T) {
	cases := []struct {
		input    any
		expected float64
	}{
		{input: 42.5, expected: 42.5},
		{input: float32(1.5), expected: 1.5},
		{input: 7, expected: 7},
		{input: int64(-3), expected: -3},
		{input: json.Number("12.25"), expected: 12.25},
		{input: " -76.47 ", expected: -76.47},
		{input: "north", expected: 0},
		{input: nil, expected: 0},
	}

	for _, c := range cases {
		if got := AsFloat64(c.input); got != c.expected {
			t.Fatalf("AsFloat64(%#v) = %v, expected %v", c.input, got, c.expected)
		}
	}
}

func TestFloat64_ReportsPresence(t *testing.T) {
	present := map[string]any{"float": 0.0, "string": "0", "number": json.Number("-1")}
	for name, input := range present {
		if _, ok := Float64(input); !ok {
			t.Fatalf("%s: expected %#v to be a number", name, input)
		}
	}
	absent := map[string]any{"nil": nil, "blank": "  ", "text": "n/a", "bool": true}
	for name, input := range absent {
		if _, ok := Float64(input); ok {
			t.Fatalf("%s: expected %#v not to be a number", name, input)
		}
	}
}

func TestAsString(t *testing.T) {
	if got := AsString("  Grill "); got != "Grill" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	if got := AsString(12); got != "" {
		t.Fatalf("expected empty string for int, got %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" broker-1:9092, ,broker-2:9092 ")
	if len(got) != 2 || got[0] != "broker-1:9092" || got[1] != "broker-2:9092" {
		t.Fatalf("unexpected split: %v", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
