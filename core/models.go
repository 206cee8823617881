package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for graph nodes.
// Document IDs are random UUIDs; entity IDs are content-based hashes.
type ID string

// NewDocumentID generates a random ID for a new document node.
func NewDocumentID() ID {
	return ID(uuid.NewString())
}

// IDFromEntity generates a deterministic ID from an entity's (name, type)
// tuple using BLAKE2b hashing. Identical tuples always produce identical IDs,
// which is what makes entity upserts idempotent.
func IDFromEntity(name string, entityType EntityType) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte("(" + string(entityType) + "," + name + ")"))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// EntityType categorizes an extracted entity.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
	EntityDate         EntityType = "date"
	EntityOther        EntityType = "other"
)

// EntityTypes lists the valid entity categories.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityLocation,
	EntityDate,
	EntityOther,
}

// EdgeType identifies the relationship an edge represents.
type EdgeType string

const (
	// EdgeRelatedTo links two documents. Created by similarity auto-linking
	// during ingestion and explicitly by callers.
	EdgeRelatedTo EdgeType = "RELATED_TO"
	// EdgeMentions links a document to an entity it mentions.
	// Created only by the ingestion pipeline.
	EdgeMentions EdgeType = "MENTIONS"
	// EdgeCites links a citing document to a cited one.
	EdgeCites EdgeType = "CITES"
	// EdgeRequires links a document to one it depends on.
	EdgeRequires EdgeType = "REQUIRES"
)

// EdgeTypes lists the allowed edge types. Anything else is rejected.
var EdgeTypes = []EdgeType{EdgeRelatedTo, EdgeMentions, EdgeCites, EdgeRequires}

// Document is a text record stored as a graph node, with exactly one
// associated entry in the vector index.
type Document struct {
	Id       ID
	Title    string
	Text     string
	Chunks   []string // Ordered chunk texts produced at ingestion
	VectorId int64    // Slot in the vector index; assigned atomically with the node
	Metadata map[string]string
}

// Entity is a named thing mentioned by documents. Identity is the
// (Name, Type) pair; Name is case/whitespace-normalized before hashing.
type Entity struct {
	Id   ID
	Name string
	Type EntityType
}

// Tuple returns the "(type,name)" form used for deterministic IDs.
func (e *Entity) Tuple() string {
	return "(" + string(e.Type) + "," + e.Name + ")"
}

// Edge is a typed, weighted, directed relationship between two nodes.
type Edge struct {
	SourceId ID
	TargetId ID
	Type     EdgeType
	Weight   float64 // In [0,1]
}

// Node is the union of the two node kinds, as returned by traversal.
// Exactly one of Document and Entity is set.
type Node struct {
	Id       ID
	Document *Document
	Entity   *Entity
	Depth    int // Hop distance from the traversal start
}

// TraversedEdge is an edge annotated with the hop distance of its nearer
// endpoint.
type TraversedEdge struct {
	Edge
	Depth int
}

// Subgraph is the result of a bounded-depth traversal: the induced set of
// nodes and edges reachable from a start node.
type Subgraph struct {
	Nodes []*Node
	Edges []*TraversedEdge
}

// Match is a single vector-index search hit.
type Match struct {
	DocumentId ID
	Score      float64 // Cosine similarity
}

// Explanation records how a hybrid result was scored, so the merge logic
// can be inspected and tested independently of the final ranking.
type Explanation struct {
	VectorScore float64 // Raw cosine similarity, 0 if absent from set A
	GraphScore  float64 // Pool-normalized connectivity, 0 if absent from set B
	FromVector  bool
	FromGraph   bool
}

// HybridResult is one entry of a hybrid search result set.
type HybridResult struct {
	DocumentId  ID
	Document    *Document
	FinalScore  float64
	Explanation Explanation
}
