package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

func newTestGraph(t *testing.T) storage.GraphStore {
	t.Helper()
	graph, backend, err := NewMemoryGraphStore()
	if err != nil {
		t.Fatalf("Failed to create graph store: %v", err)
	}
	t.Cleanup(func() { graph.Close(); backend.Close() })
	return graph
}

func addDocument(t *testing.T, graph storage.GraphStore, id core.ID, text string) {
	t.Helper()
	err := graph.UpsertDocument(context.Background(), &core.Document{
		Id:    id,
		Title: string(id),
		Text:  text,
	})
	if err != nil {
		t.Fatalf("Failed to upsert document %s: %v", id, err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	doc := &core.Document{
		Id:       core.NewDocumentID(),
		Title:    "Radioactivity",
		Text:     "Marie Curie pioneered research on radioactivity.",
		Chunks:   []string{"Marie Curie pioneered research on radioactivity."},
		VectorId: 3,
		Metadata: map[string]string{"source": "test"},
	}
	if err := graph.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to upsert document: %v", err)
	}

	got, err := graph.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Title != doc.Title || got.Text != doc.Text || got.VectorId != doc.VectorId {
		t.Fatalf("Document fields lost in round trip: %+v", got)
	}

	// Upsert is idempotent and replaces
	doc.Title = "Radioactivity, revised"
	if err := graph.UpsertDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to re-upsert document: %v", err)
	}
	got, err = graph.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if got.Title != "Radioactivity, revised" {
		t.Fatalf("Expected replaced title, got %q", got.Title)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	graph := newTestGraph(t)

	_, err := graph.GetDocument(context.Background(), "ghost")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntityUpsertIsIdempotent(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	first, err := graph.UpsertEntity(ctx, "Marie  Curie", core.EntityPerson)
	if err != nil {
		t.Fatalf("Failed to upsert entity: %v", err)
	}
	if first.Name != "marie curie" {
		t.Fatalf("Expected normalized name, got %q", first.Name)
	}

	// Same identity through different surface forms
	second, err := graph.UpsertEntity(ctx, "MARIE CURIE", core.EntityPerson)
	if err != nil {
		t.Fatalf("Failed to upsert entity again: %v", err)
	}
	if first.Id != second.Id {
		t.Fatalf("Expected one node, got ids %s and %s", first.Id, second.Id)
	}

	// Same name, different type is a different entity
	other, err := graph.UpsertEntity(ctx, "marie curie", core.EntityOther)
	if err != nil {
		t.Fatalf("Failed to upsert entity: %v", err)
	}
	if other.Id == first.Id {
		t.Fatal("Expected distinct node for distinct type")
	}

	found, err := graph.FindEntity(ctx, " Marie Curie ", core.EntityPerson)
	if err != nil {
		t.Fatalf("Failed to find entity: %v", err)
	}
	if found.Id != first.Id {
		t.Fatalf("FindEntity returned %s, want %s", found.Id, first.Id)
	}

	_, err = graph.FindEntity(ctx, "nobody", core.EntityPerson)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateEdgeValidation(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")

	tests := []struct {
		name string
		edge *core.Edge
	}{
		{"unknown type", &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: "KNOWS", Weight: 0.5}},
		{"weight above range", &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeRelatedTo, Weight: 1.5}},
		{"weight below range", &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeRelatedTo, Weight: -0.1}},
		{"missing endpoint", &core.Edge{SourceId: "doc-a", TargetId: "ghost", Type: core.EdgeRelatedTo, Weight: 0.5}},
		{"self loop", &core.Edge{SourceId: "doc-a", TargetId: "doc-a", Type: core.EdgeRelatedTo, Weight: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := graph.CreateEdge(ctx, tt.edge); !errors.Is(err, core.ErrInvalidEdge) {
				t.Fatalf("Expected ErrInvalidEdge, got %v", err)
			}
		})
	}
}

func TestCreateEdgeUpdatesWeight(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")

	edge := &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeRelatedTo, Weight: 0.5}
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}

	edge.Weight = 0.9
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to update edge: %v", err)
	}

	edges, err := graph.EdgesFrom(ctx, "doc-a")
	if err != nil {
		t.Fatalf("Failed to list edges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	if edges[0].Weight != 0.9 {
		t.Fatalf("Expected updated weight 0.9, got %v", edges[0].Weight)
	}
}

func TestHasEdgeChecksBothDirections(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")

	edge := &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeRelatedTo, Weight: 0.9}
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}

	for _, pair := range [][2]core.ID{{"doc-a", "doc-b"}, {"doc-b", "doc-a"}} {
		found, err := graph.HasEdge(ctx, pair[0], pair[1], core.EdgeRelatedTo)
		if err != nil {
			t.Fatalf("HasEdge failed: %v", err)
		}
		if !found {
			t.Fatalf("Expected edge between %s and %s", pair[0], pair[1])
		}
	}

	found, err := graph.HasEdge(ctx, "doc-a", "doc-b", core.EdgeCites)
	if err != nil {
		t.Fatalf("HasEdge failed: %v", err)
	}
	if found {
		t.Fatal("Expected no CITES edge")
	}
}

func TestDeleteEdge(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")

	edge := &core.Edge{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeCites, Weight: 1.0}
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}

	if err := graph.DeleteEdge(ctx, "doc-a", "doc-b", core.EdgeCites); err != nil {
		t.Fatalf("Failed to delete edge: %v", err)
	}

	found, err := graph.HasEdge(ctx, "doc-a", "doc-b", core.EdgeCites)
	if err != nil {
		t.Fatalf("HasEdge failed: %v", err)
	}
	if found {
		t.Fatal("Edge survived deletion")
	}

	err = graph.DeleteEdge(ctx, "doc-a", "doc-b", core.EdgeCites)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDocumentCascades(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")
	entity, err := graph.UpsertEntity(ctx, "cern", core.EntityOrganization)
	if err != nil {
		t.Fatalf("Failed to upsert entity: %v", err)
	}

	edges := []*core.Edge{
		{SourceId: "doc-a", TargetId: entity.Id, Type: core.EdgeMentions, Weight: 1.0},
		{SourceId: "doc-a", TargetId: "doc-b", Type: core.EdgeRelatedTo, Weight: 0.9},
		{SourceId: "doc-b", TargetId: "doc-a", Type: core.EdgeCites, Weight: 1.0},
	}
	for _, edge := range edges {
		if err := graph.CreateEdge(ctx, edge); err != nil {
			t.Fatalf("Failed to create edge: %v", err)
		}
	}

	if err := graph.DeleteDocument(ctx, "doc-a"); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	if _, err := graph.GetDocument(ctx, "doc-a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for deleted document, got %v", err)
	}

	// Every edge touching doc-a is gone, incoming included
	remaining, err := graph.EdgesFrom(ctx, "doc-b")
	if err != nil {
		t.Fatalf("Failed to list edges: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected no edges from doc-b, got %d", len(remaining))
	}

	// The entity node itself survives
	if _, err := graph.GetEntity(ctx, entity.Id); err != nil {
		t.Fatalf("Entity should survive document deletion: %v", err)
	}

	err = graph.DeleteDocument(ctx, "doc-a")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestCounts(t *testing.T) {
	graph := newTestGraph(t)
	ctx := context.Background()

	addDocument(t, graph, "doc-a", "first")
	addDocument(t, graph, "doc-b", "second")
	entity, err := graph.UpsertEntity(ctx, "geneva", core.EntityLocation)
	if err != nil {
		t.Fatalf("Failed to upsert entity: %v", err)
	}
	edge := &core.Edge{SourceId: "doc-a", TargetId: entity.Id, Type: core.EdgeMentions, Weight: 1.0}
	if err := graph.CreateEdge(ctx, edge); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}

	docs, entities, edges, err := graph.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if docs != 2 || entities != 1 || edges != 1 {
		t.Fatalf("Expected counts (2,1,1), got (%d,%d,%d)", docs, entities, edges)
	}
}
