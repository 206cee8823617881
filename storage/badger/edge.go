package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// CreateEdge stores a validated edge under both its forward and reverse
// keys. Both endpoints must exist as nodes. Creating an edge that already
// exists overwrites it, which updates the weight.
func (g *Graph) CreateEdge(ctx context.Context, edge *core.Edge) error {
	if err := core.ValidateEdge(edge); err != nil {
		return err
	}
	if edge.SourceId == edge.TargetId {
		return fmt.Errorf("%w: self-referential edge on %s", core.ErrInvalidEdge, edge.SourceId)
	}

	return g.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range []core.ID{edge.SourceId, edge.TargetId} {
			exists, err := nodeExists(tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: endpoint %s does not exist", core.ErrInvalidEdge, id)
			}
		}

		value := storage.MarshalEdge(edge)
		if err := tx.Set(makeForwardEdgeKey(edge.SourceId, edge.TargetId, edge.Type), value); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		if err := tx.Set(makeReverseEdgeKey(edge.SourceId, edge.TargetId, edge.Type), value); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		return tx.Commit()
	}, true)
}

// DeleteEdge removes one directed edge and its reverse twin.
func (g *Graph) DeleteEdge(ctx context.Context, source, target core.ID, edgeType core.EdgeType) error {
	return g.backend.WithTx(func(tx *badger.Txn) error {
		key := makeForwardEdgeKey(source, target, edgeType)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: edge %s -[%s]-> %s", core.ErrNotFound, source, edgeType, target)
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		if err := tx.Delete(makeReverseEdgeKey(source, target, edgeType)); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		return tx.Commit()
	}, true)
}

// HasEdge reports whether an edge of the given type exists between two
// nodes in either direction.
func (g *Graph) HasEdge(ctx context.Context, a, b core.ID, edgeType core.EdgeType) (bool, error) {
	var found bool
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range [][]byte{
			makeForwardEdgeKey(a, b, edgeType),
			makeForwardEdgeKey(b, a, edgeType),
		} {
			if _, err := tx.Get(key); err == nil {
				found = true
				return nil
			} else if err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	}, false)
	return found, err
}

// EdgesFrom returns all outgoing edges of a node.
func (g *Graph) EdgesFrom(ctx context.Context, id core.ID) ([]*core.Edge, error) {
	var edges []*core.Edge
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		edges, err = scanEdges(tx, makeEdgeScanPrefix(edgeForwardPrefix, id))
		return err
	}, false)
	return edges, err
}

// scanEdges collects the edge records under a forward or reverse prefix.
// Reverse records hold the same edge value as their forward twin, so
// either scan yields complete edges.
func scanEdges(tx *badger.Txn, prefix []byte) ([]*core.Edge, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var edges []*core.Edge
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var edge *core.Edge
		err := iter.Item().Value(func(val []byte) error {
			var err error
			edge, err = storage.UnmarshalEdge(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// deleteEdgePair removes both keys of one edge inside an open transaction.
func deleteEdgePair(tx *badger.Txn, edge *core.Edge) error {
	if err := tx.Delete(makeForwardEdgeKey(edge.SourceId, edge.TargetId, edge.Type)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}
	if err := tx.Delete(makeReverseEdgeKey(edge.SourceId, edge.TargetId, edge.Type)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}
	return nil
}
