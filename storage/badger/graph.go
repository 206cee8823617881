package badger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// Graph implements storage.GraphStore on a BadgerDB backend.
//
// Each document and entity is one node record. Edges are stored twice,
// under a source-major and a target-major key, so both outgoing and
// incoming edges of a node are single prefix scans.
type Graph struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.GraphStore = (*Graph)(nil)

// NewGraphStore creates a graph store on the given backend.
func NewGraphStore(backend *Backend) (storage.GraphStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", core.ErrInvalidInput)
	}
	return &Graph{
		backend: backend,
		logger:  slog.Default(),
	}, nil
}

// Close releases resources. The backend is owned by the caller.
func (g *Graph) Close() error {
	return nil
}

// UpsertDocument creates or replaces a document node.
func (g *Graph) UpsertDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	return g.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document node by ID.
func (g *Graph) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: document %s", core.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// AllDocuments returns every document node, in id order. Used by
// maintenance jobs that rebuild the vector index.
func (g *Graph) AllDocuments(ctx context.Context) ([]*core.Document, error) {
	var docs []*core.Document
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + "|")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document node and every edge touching it, in
// both directions, within one transaction.
func (g *Graph) DeleteDocument(ctx context.Context, id core.ID) error {
	return g.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("%w: document %s", core.ErrNotFound, id)
		}

		// Outgoing edges, plus their reverse twins
		outgoing, err := scanEdges(tx, makeEdgeScanPrefix(edgeForwardPrefix, id))
		if err != nil {
			return err
		}
		for _, edge := range outgoing {
			if err := deleteEdgePair(tx, edge); err != nil {
				return err
			}
		}

		// Incoming edges, found via the reverse index
		incoming, err := scanEdges(tx, makeEdgeScanPrefix(edgeReversePrefix, id))
		if err != nil {
			return err
		}
		for _, edge := range incoming {
			if err := deleteEdgePair(tx, edge); err != nil {
				return err
			}
		}

		if err := tx.Delete(key); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		return tx.Commit()
	}, true)
}

// UpsertEntity finds or creates the entity node for a (name, type) pair.
// The name is normalized first; the entity id is a content hash of the
// normalized tuple, so repeated upserts converge on one node.
func (g *Graph) UpsertEntity(ctx context.Context, name string, entityType core.EntityType) (*core.Entity, error) {
	normalized := core.NormalizeEntityName(name)
	entity := &core.Entity{
		Id:   core.IDFromEntity(normalized, entityType),
		Name: normalized,
		Type: entityType,
	}
	if err := core.ValidateEntity(entity); err != nil {
		return nil, err
	}

	err := g.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readEntity(tx, makeEntityKey(entity.Id))
		if err != nil {
			return err
		}
		if existing != nil {
			entity = existing
			return nil
		}
		if err := tx.Set(makeEntityKey(entity.Id), storage.MarshalEntity(entity)); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		tupleKey := makeEntityTupleKey(entity.Name, entity.Type)
		if err := tx.Set(tupleKey, storage.MarshalID(entity.Id)); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetEntity retrieves an entity node by ID.
func (g *Graph) GetEntity(ctx context.Context, id core.ID) (*core.Entity, error) {
	var result *core.Entity
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: entity %s", core.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// FindEntity looks an entity up by its normalized (name, type) tuple.
func (g *Graph) FindEntity(ctx context.Context, name string, entityType core.EntityType) (*core.Entity, error) {
	normalized := core.NormalizeEntityName(name)
	if err := core.ValidateEntityType(entityType); err != nil {
		return nil, err
	}

	var result *core.Entity
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntityTupleKey(normalized, entityType))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: entity (%s, %s)", core.ErrNotFound, normalized, entityType)
			}
			return err
		}

		var entityID core.ID
		err = item.Value(func(val []byte) error {
			entityID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readEntity(tx, makeEntityKey(entityID))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: entity %s", core.ErrNotFound, entityID)
		}
		return nil
	}, false)
	return result, err
}

// Counts returns the number of document nodes, entity nodes, and edges.
func (g *Graph) Counts(ctx context.Context) (documents, entities, edges int, err error) {
	err = g.backend.WithTx(func(tx *badger.Txn) error {
		var countErr error
		documents, countErr = countPrefix(tx, []byte(documentPrefix+"|"))
		if countErr != nil {
			return countErr
		}
		entities, countErr = countPrefix(tx, []byte(entityPrefix+"|"))
		if countErr != nil {
			return countErr
		}
		edges, countErr = countPrefix(tx, []byte(edgeForwardPrefix+"|"))
		return countErr
	}, false)
	return documents, entities, edges, err
}

// nodeExists reports whether an id names a live document or entity node.
func nodeExists(tx *badger.Txn, id core.ID) (bool, error) {
	if _, err := tx.Get(makeDocumentKey(id)); err == nil {
		return true, nil
	} else if err != badger.ErrKeyNotFound {
		return false, err
	}
	if _, err := tx.Get(makeEntityKey(id)); err == nil {
		return true, nil
	} else if err != badger.ErrKeyNotFound {
		return false, err
	}
	return false, nil
}

// readDocument reads a document from the transaction. Missing keys return
// nil, nil.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}

// readEntity reads an entity from the transaction. Missing keys return
// nil, nil.
func readEntity(tx *badger.Txn, key []byte) (*core.Entity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.Entity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}

// countPrefix counts keys under a prefix without fetching values.
func countPrefix(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}
