package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

const (
	// MinTraversalDepth and MaxTraversalDepth bound how far a traversal
	// may reach. Requests outside the range are clamped, not rejected.
	MinTraversalDepth = 1
	MaxTraversalDepth = 3
)

// Traverse returns the subgraph reachable from start within maxDepth hops.
// Depth counts edge traversals regardless of direction. Each node appears
// once, at the depth it was first reached; each edge appears once,
// annotated with the depth of its nearer endpoint. Pure read.
func (g *Graph) Traverse(ctx context.Context, start core.ID, maxDepth int) (*core.Subgraph, error) {
	if maxDepth < MinTraversalDepth {
		maxDepth = MinTraversalDepth
	}
	if maxDepth > MaxTraversalDepth {
		maxDepth = MaxTraversalDepth
	}

	result := &core.Subgraph{}
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		exists, err := nodeExists(tx, start)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: node %s", core.ErrNotFound, start)
		}

		visited := map[core.ID]int{start: 0}
		seenEdges := make(map[string]bool)
		frontier := []core.ID{start}
		order := []core.ID{start}

		for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
			var next []core.ID
			for _, id := range frontier {
				neighbors, err := adjacentEdges(tx, id)
				if err != nil {
					return err
				}
				for _, edge := range neighbors {
					edgeKey := string(makeForwardEdgeKey(edge.SourceId, edge.TargetId, edge.Type))
					if !seenEdges[edgeKey] {
						seenEdges[edgeKey] = true
						result.Edges = append(result.Edges, &core.TraversedEdge{
							Edge:  *edge,
							Depth: depth,
						})
					}

					other := edge.TargetId
					if other == id {
						other = edge.SourceId
					}
					if _, ok := visited[other]; ok {
						continue
					}
					visited[other] = depth + 1
					order = append(order, other)
					next = append(next, other)
				}
			}
			frontier = next
		}

		for _, id := range order {
			node, err := loadNode(tx, id, visited[id])
			if err != nil {
				return err
			}
			result.Nodes = append(result.Nodes, node)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// adjacentEdges returns a node's edges in both directions.
func adjacentEdges(tx *badger.Txn, id core.ID) ([]*core.Edge, error) {
	outgoing, err := scanEdges(tx, makeEdgeScanPrefix(edgeForwardPrefix, id))
	if err != nil {
		return nil, err
	}
	incoming, err := scanEdges(tx, makeEdgeScanPrefix(edgeReversePrefix, id))
	if err != nil {
		return nil, err
	}
	return append(outgoing, incoming...), nil
}

// loadNode reads whichever node kind the id names.
func loadNode(tx *badger.Txn, id core.ID, depth int) (*core.Node, error) {
	doc, err := readDocument(tx, makeDocumentKey(id))
	if err != nil {
		return nil, err
	}
	if doc != nil {
		return &core.Node{Id: id, Document: doc, Depth: depth}, nil
	}

	entity, err := readEntity(tx, makeEntityKey(id))
	if err != nil {
		return nil, err
	}
	if entity != nil {
		return &core.Node{Id: id, Entity: entity, Depth: depth}, nil
	}
	return nil, fmt.Errorf("%w: node %s vanished during traversal", core.ErrNotFound, id)
}
