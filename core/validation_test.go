package core

import (
	"errors"
	"testing"
)

func TestNormalizeEntityName(t *testing.T) {
	if got := NormalizeEntityName("  Albert   Einstein "); got != "albert einstein" {
		t.Fatalf("Expected 'albert einstein', got %q", got)
	}
	if got := NormalizeEntityName("GERMANY"); got != "germany" {
		t.Fatalf("Expected 'germany', got %q", got)
	}
}

func TestValidateEdgeRejectsWeightOutOfRange(t *testing.T) {
	edge := &Edge{SourceId: "a", TargetId: "b", Type: EdgeRelatedTo, Weight: 1.5}
	err := ValidateEdge(edge)
	if !errors.Is(err, ErrInvalidEdge) {
		t.Fatalf("Expected ErrInvalidEdge, got %v", err)
	}

	edge.Weight = -0.1
	if err := ValidateEdge(edge); !errors.Is(err, ErrInvalidEdge) {
		t.Fatalf("Expected ErrInvalidEdge for negative weight, got %v", err)
	}
}

func TestValidateEdgeRejectsUnknownType(t *testing.T) {
	edge := &Edge{SourceId: "a", TargetId: "b", Type: EdgeType("KNOWS"), Weight: 0.5}
	if err := ValidateEdge(edge); !errors.Is(err, ErrInvalidEdge) {
		t.Fatalf("Expected ErrInvalidEdge, got %v", err)
	}
}

func TestValidateEdgeAcceptsAllowedTypes(t *testing.T) {
	for _, typ := range EdgeTypes {
		edge := &Edge{SourceId: "a", TargetId: "b", Type: typ, Weight: 1.0}
		if err := ValidateEdge(edge); err != nil {
			t.Fatalf("Expected %s to validate, got %v", typ, err)
		}
	}
}

func TestValidateEntityType(t *testing.T) {
	if err := ValidateEntityType(EntityPerson); err != nil {
		t.Fatalf("Expected person to validate, got %v", err)
	}
	if err := ValidateEntityType(EntityType("alien")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateDocument(t *testing.T) {
	if err := ValidateDocument(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for nil, got %v", err)
	}
	doc := &Document{Id: NewDocumentID()}
	if err := ValidateDocument(doc); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for empty text, got %v", err)
	}
	doc.Text = "some text"
	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("Expected valid document, got %v", err)
	}
}
