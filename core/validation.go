package core

import (
	"fmt"
	"slices"
	"strings"
)

// NormalizeEntityName canonicalizes an entity name for identity purposes:
// lowercase, interior whitespace collapsed to single spaces, trimmed.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ValidateEntityType checks that an entity type is one of the fixed set.
func ValidateEntityType(t EntityType) error {
	if !slices.Contains(EntityTypes, t) {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, t)
	}
	return nil
}

// ValidateEdge validates an edge according to domain rules.
//
// Validation rules:
//   - Source and Target must be non-empty (their existence is checked by
//     the graph store, which knows what exists)
//   - Type must be in the allowed set
//   - Weight must be in [0,1]
func ValidateEdge(edge *Edge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidEdge)
	}
	if edge.SourceId == "" || edge.TargetId == "" {
		return fmt.Errorf("%w: missing endpoint id", ErrInvalidEdge)
	}
	if !slices.Contains(EdgeTypes, edge.Type) {
		return fmt.Errorf("%w: edge type %q not in allowed set", ErrInvalidEdge, edge.Type)
	}
	if edge.Weight < 0 || edge.Weight > 1 {
		return fmt.Errorf("%w: weight %v outside [0,1]", ErrInvalidEdge, edge.Weight)
	}
	return nil
}

// ValidateDocument validates a document record before it is written.
//
// NOT validated (assigned by the stores):
//   - VectorId (set when the vector entry is created)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}
	if doc.Id == "" {
		return fmt.Errorf("%w: document id is empty", ErrInvalidInput)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}
	return nil
}

// ValidateEntity validates an entity record before it is written.
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidInput)
	}
	if entity.Name == "" {
		return fmt.Errorf("%w: entity name is empty", ErrInvalidInput)
	}
	return ValidateEntityType(entity.Type)
}
