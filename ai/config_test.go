package ai

import "testing"

func TestConfigNormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	cfg.Normalize()

	if cfg.EmbeddingHost != "http://localhost:11434/v1" {
		t.Fatalf("Expected /v1 suffix, got %s", cfg.EmbeddingHost)
	}
	if cfg.ExtractorHost != "http://localhost:11434/v1" {
		t.Fatalf("Expected /v1 suffix, got %s", cfg.ExtractorHost)
	}
}

func TestConfigNormalizeTrimsTrailingSlash(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434/"))
	cfg.Normalize()

	if cfg.EmbeddingHost != "http://localhost:11434/v1" {
		t.Fatalf("Expected trimmed host with /v1, got %s", cfg.EmbeddingHost)
	}
}

func TestConfigValidateRejectsMissingModel(t *testing.T) {
	cfg := NewConfig(WithEmbeddingModel(""))
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected validation error for empty embedding model")
	}
}

func TestConfigDefaultsValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
}

func TestNormalizeEntityTypeName(t *testing.T) {
	cases := map[string]string{
		"PERSON":  "person",
		"ORG":     "organization",
		"GPE":     "location",
		"LOC":     "location",
		"DATE":    "date",
		"PRODUCT": "other",
		"":        "other",
	}
	for label, want := range cases {
		if got := NormalizeEntityTypeName(label); got != want {
			t.Fatalf("NormalizeEntityTypeName(%q) = %q, want %q", label, got, want)
		}
	}
}
