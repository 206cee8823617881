package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// chainGraph builds doc-a -> doc-b -> doc-c -> doc-d linked by RELATED_TO.
func chainGraph(t *testing.T) storage.GraphStore {
	t.Helper()
	graph := newTestGraph(t)
	ctx := context.Background()

	ids := []core.ID{"doc-a", "doc-b", "doc-c", "doc-d"}
	for _, id := range ids {
		addDocument(t, graph, id, "text of "+string(id))
	}
	for i := 0; i < len(ids)-1; i++ {
		edge := &core.Edge{SourceId: ids[i], TargetId: ids[i+1], Type: core.EdgeRelatedTo, Weight: 0.9}
		if err := graph.CreateEdge(ctx, edge); err != nil {
			t.Fatalf("Failed to create edge: %v", err)
		}
	}
	return graph
}

func nodeDepths(sub *core.Subgraph) map[core.ID]int {
	depths := make(map[core.ID]int, len(sub.Nodes))
	for _, node := range sub.Nodes {
		depths[node.Id] = node.Depth
	}
	return depths
}

func TestTraverseBoundedDepth(t *testing.T) {
	graph := chainGraph(t)
	ctx := context.Background()

	sub, err := graph.Traverse(ctx, "doc-a", 2)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	depths := nodeDepths(sub)
	want := map[core.ID]int{"doc-a": 0, "doc-b": 1, "doc-c": 2}
	if len(depths) != len(want) {
		t.Fatalf("Expected nodes %v, got %v", want, depths)
	}
	for id, depth := range want {
		if depths[id] != depth {
			t.Fatalf("Node %s at depth %d, want %d", id, depths[id], depth)
		}
	}
	if len(sub.Edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(sub.Edges))
	}
}

func TestTraverseClampsDepth(t *testing.T) {
	graph := chainGraph(t)
	ctx := context.Background()

	// Requests above the cap reach at most 3 hops
	sub, err := graph.Traverse(ctx, "doc-a", 10)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(sub.Nodes) != 4 {
		t.Fatalf("Expected 4 nodes at clamped depth 3, got %d", len(sub.Nodes))
	}

	// Requests below the floor still make one hop
	sub, err = graph.Traverse(ctx, "doc-a", 0)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(sub.Nodes) != 2 {
		t.Fatalf("Expected 2 nodes at clamped depth 1, got %d", len(sub.Nodes))
	}
}

func TestTraverseIgnoresEdgeDirection(t *testing.T) {
	graph := chainGraph(t)
	ctx := context.Background()

	// doc-c has one incoming and one outgoing edge; both count as one hop
	sub, err := graph.Traverse(ctx, "doc-c", 1)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	depths := nodeDepths(sub)
	if depths["doc-b"] != 1 || depths["doc-d"] != 1 {
		t.Fatalf("Expected doc-b and doc-d at depth 1, got %v", depths)
	}
}

func TestTraverseFirstSeenDepthWins(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	// Diamond: a->b, a->c, b->d, c->d. d is reachable twice at depth 2.
	for _, id := range []core.ID{"doc-a", "doc-b", "doc-c", "doc-d"} {
		addDocument(t, graph, id, "text")
	}
	for _, pair := range [][2]core.ID{{"doc-a", "doc-b"}, {"doc-a", "doc-c"}, {"doc-b", "doc-d"}, {"doc-c", "doc-d"}} {
		edge := &core.Edge{SourceId: pair[0], TargetId: pair[1], Type: core.EdgeRelatedTo, Weight: 0.9}
		if err := graph.CreateEdge(ctx, edge); err != nil {
			t.Fatalf("Failed to create edge: %v", err)
		}
	}

	sub, err := graph.Traverse(ctx, "doc-a", 3)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	depths := nodeDepths(sub)
	if depths["doc-d"] != 2 {
		t.Fatalf("Expected doc-d at first-seen depth 2, got %d", depths["doc-d"])
	}
	if len(sub.Nodes) != 4 {
		t.Fatalf("Each node appears once, got %d nodes", len(sub.Nodes))
	}
	if len(sub.Edges) != 4 {
		t.Fatalf("Each edge appears once, got %d edges", len(sub.Edges))
	}
}

func TestTraverseMixedNodeKinds(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "Einstein worked at the patent office.")
	entity, err := graph.UpsertEntity(ctx, "albert einstein", core.EntityPerson)
	if err != nil {
		t.Fatalf("Failed to upsert entity: %v", err)
	}
	edge := &core.Edge{SourceId: "doc-a", TargetId: entity.Id, Type: core.EdgeMentions, Weight: 1.0}
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}

	sub, err := graph.Traverse(ctx, "doc-a", 1)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	var sawDoc, sawEntity bool
	for _, node := range sub.Nodes {
		switch {
		case node.Document != nil:
			sawDoc = true
		case node.Entity != nil:
			sawEntity = true
		}
	}
	if !sawDoc || !sawEntity {
		t.Fatalf("Expected both node kinds, got doc=%v entity=%v", sawDoc, sawEntity)
	}
}

func TestTraverseUnknownStart(t *testing.T) {
	graph := newTestGraph(t)

	_, err := graph.Traverse(context.Background(), "ghost", 2)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraverseIsolatedNode(t *testing.T) {
	graph := newTestGraph(t)
	addDocument(t, graph, "doc-solo", "alone")

	sub, err := graph.Traverse(context.Background(), "doc-solo", 3)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(sub.Nodes) != 1 || len(sub.Edges) != 0 {
		t.Fatalf("Expected single-node subgraph, got %d nodes %d edges", len(sub.Nodes), len(sub.Edges))
	}
}
