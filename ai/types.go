package ai

// EntityTypeNames defines the valid categories for extracted entities.
// Extractor implementations must map model-specific labels onto this set.
var EntityTypeNames = []string{
	"person",
	"organization",
	"location",
	"date",
	"other",
}

// NormalizeEntityTypeName maps common NER labels onto the fixed entity type
// set. Unknown labels map to "other" rather than being dropped, so an
// extractor with a richer label set still produces usable entities.
func NormalizeEntityTypeName(label string) string {
	switch label {
	case "person", "PERSON", "PER":
		return "person"
	case "organization", "ORG":
		return "organization"
	case "location", "GPE", "LOC", "place":
		return "location"
	case "date", "DATE", "TIME", "time":
		return "date"
	default:
		return "other"
	}
}
