package openai

import "testing"

func TestRepairJSONMissingOpeningQuote(t *testing.T) {
	in := `{"entities": [{"name": "Paris", type": "location"}]}`
	want := `{"entities": [{"name": "Paris", "type": "location"}]}`
	if got := repairJSON(in); got != want {
		t.Fatalf("repairJSON = %q, want %q", got, want)
	}
}

func TestRepairJSONTrailingComma(t *testing.T) {
	in := `{"entities": [{"name": "Paris", "type": "location"},]}`
	want := `{"entities": [{"name": "Paris", "type": "location"}]}`
	if got := repairJSON(in); got != want {
		t.Fatalf("repairJSON = %q, want %q", got, want)
	}
}

func TestRepairJSONLeavesValidInputAlone(t *testing.T) {
	in := `{"entities": []}`
	if got := repairJSON(in); got != in {
		t.Fatalf("repairJSON modified valid JSON: %q", got)
	}
}
