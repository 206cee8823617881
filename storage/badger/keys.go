package badger

import (
	"fmt"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

// Key prefixes for different record types. Document ids are UUIDs and
// entity ids are hex digests, so '|' never appears inside an id and is
// safe as the component separator.
const (
	documentPrefix    = "docrec"
	entityPrefix      = "entrec"
	entityTuplePrefix = "enttup"
	edgeForwardPrefix = "edgef"
	edgeReversePrefix = "edger"
)

// makeDocumentKey generates a key for a document node by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s|%s", documentPrefix, id))
}

// makeEntityKey generates a key for an entity node by ID.
func makeEntityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s|%s", entityPrefix, id))
}

// makeEntityTupleKey generates a composite key for entity lookup by the
// normalized (type, name) tuple.
// Format: prefix|type|name
func makeEntityTupleKey(name string, entityType core.EntityType) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s", entityTuplePrefix, entityType, name))
}

// makeForwardEdgeKey generates the source-major key of a directed edge.
// Format: prefix|source|target|type
func makeForwardEdgeKey(source, target core.ID, edgeType core.EdgeType) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%s", edgeForwardPrefix, source, target, edgeType))
}

// makeReverseEdgeKey generates the target-major key of a directed edge,
// used for incoming-edge scans during traversal and cascade deletes.
// Format: prefix|target|source|type
func makeReverseEdgeKey(source, target core.ID, edgeType core.EdgeType) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%s", edgeReversePrefix, target, source, edgeType))
}

// makeEdgeScanPrefix generates the partial key matching all forward or
// reverse edge records of one node.
func makeEdgeScanPrefix(prefix string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s|%s|", prefix, id))
}
