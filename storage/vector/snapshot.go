// Copyright 2025 Jash2606
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

const (
	indexFileName   = "index.mus"
	mappingFileName = "idmap.mus"
)

var float32SliceMUS mus.Serializer[[]float32] = ord.NewSliceSer[float32](raw.Float32)

// indexSnapshot is the on-disk form of the vector slots.
type indexSnapshot struct {
	Dim     int
	NextID  int64
	Entries []indexEntry
}

type indexEntry struct {
	VectorID int64
	Vector   []float32
}

// mappingEntry is one row of the on-disk id mapping.
type mappingEntry struct {
	VectorID   int64
	DocumentID core.ID
}

// Persist writes an all-or-nothing snapshot of the index and the id mapping.
// Both files are written to temp paths first and moved into place, so a
// crash mid-write leaves the previous snapshot intact. Fails with
// ErrStoreWrite if no snapshot directory is configured.
func (s *Store) Persist() error {
	if s.dir == "" {
		return fmt.Errorf("%w: no snapshot directory configured", core.ErrStoreWrite)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}

	s.mu.RLock()
	snap := indexSnapshot{
		Dim:    s.dim,
		NextID: int64(len(s.vectors)),
	}
	var mapping []mappingEntry
	for id, vec := range s.vectors {
		if vec == nil {
			continue
		}
		snap.Entries = append(snap.Entries, indexEntry{VectorID: int64(id), Vector: vec})
		mapping = append(mapping, mappingEntry{VectorID: int64(id), DocumentID: s.docIDs[int64(id)]})
	}
	s.mu.RUnlock()

	if err := writeAtomic(filepath.Join(s.dir, indexFileName), marshalIndexSnapshot(snap)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}
	if err := writeAtomic(filepath.Join(s.dir, mappingFileName), marshalMapping(mapping)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreWrite, err)
	}

	s.logger.Debug("persisted vector snapshot", "dir", s.dir, "vectors", len(snap.Entries))
	return nil
}

// Load replaces the in-memory state with the snapshot on disk. A missing
// snapshot loads an empty store. Fails with ErrCorruptState, leaving the
// current state untouched, if only one of the two files exists, either file
// fails to decode, or index and mapping disagree on the set of vector ids.
func (s *Store) Load() error {
	if s.dir == "" {
		return fmt.Errorf("%w: no snapshot directory configured", core.ErrStoreWrite)
	}

	indexData, indexErr := os.ReadFile(filepath.Join(s.dir, indexFileName))
	mappingData, mappingErr := os.ReadFile(filepath.Join(s.dir, mappingFileName))

	indexMissing := os.IsNotExist(indexErr)
	mappingMissing := os.IsNotExist(mappingErr)
	if indexMissing && mappingMissing {
		return nil
	}
	if indexMissing != mappingMissing {
		return fmt.Errorf("%w: index and mapping snapshot files disagree on existence", core.ErrCorruptState)
	}
	if indexErr != nil {
		return fmt.Errorf("%w: %v", core.ErrCorruptState, indexErr)
	}
	if mappingErr != nil {
		return fmt.Errorf("%w: %v", core.ErrCorruptState, mappingErr)
	}

	snap, err := unmarshalIndexSnapshot(indexData)
	if err != nil {
		return fmt.Errorf("%w: decoding index snapshot: %v", core.ErrCorruptState, err)
	}
	mapping, err := unmarshalMapping(mappingData)
	if err != nil {
		return fmt.Errorf("%w: decoding id mapping: %v", core.ErrCorruptState, err)
	}
	if len(snap.Entries) != len(mapping) {
		return fmt.Errorf("%w: index holds %d vectors but mapping holds %d entries",
			core.ErrCorruptState, len(snap.Entries), len(mapping))
	}

	vectors := make([][]float32, snap.NextID)
	for _, entry := range snap.Entries {
		if entry.VectorID < 0 || entry.VectorID >= snap.NextID {
			return fmt.Errorf("%w: vector id %d out of range", core.ErrCorruptState, entry.VectorID)
		}
		if snap.Dim != 0 && len(entry.Vector) != snap.Dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index dimension is %d",
				core.ErrCorruptState, entry.VectorID, len(entry.Vector), snap.Dim)
		}
		vectors[entry.VectorID] = entry.Vector
	}

	docIDs := make(map[int64]core.ID, len(mapping))
	slots := make(map[core.ID]int64, len(mapping))
	for _, entry := range mapping {
		if entry.VectorID < 0 || entry.VectorID >= snap.NextID || vectors[entry.VectorID] == nil {
			return fmt.Errorf("%w: mapping references missing vector %d", core.ErrCorruptState, entry.VectorID)
		}
		if _, dup := docIDs[entry.VectorID]; dup {
			return fmt.Errorf("%w: duplicate mapping for vector %d", core.ErrCorruptState, entry.VectorID)
		}
		docIDs[entry.VectorID] = entry.DocumentID
		slots[entry.DocumentID] = entry.VectorID
	}

	s.mu.Lock()
	s.dim = snap.Dim
	s.vectors = vectors
	s.docIDs = docIDs
	s.slots = slots
	s.live = len(mapping)
	s.mu.Unlock()

	s.logger.Debug("loaded vector snapshot", "dir", s.dir, "vectors", len(mapping))
	return nil
}

func marshalIndexSnapshot(snap indexSnapshot) []byte {
	size := varint.Int.Size(snap.Dim)
	size += varint.Int64.Size(snap.NextID)
	size += varint.Int.Size(len(snap.Entries))
	for _, entry := range snap.Entries {
		size += raw.Int64.Size(entry.VectorID)
		size += float32SliceMUS.Size(entry.Vector)
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(snap.Dim, buf)
	n += varint.Int64.Marshal(snap.NextID, buf[n:])
	n += varint.Int.Marshal(len(snap.Entries), buf[n:])
	for _, entry := range snap.Entries {
		n += raw.Int64.Marshal(entry.VectorID, buf[n:])
		n += float32SliceMUS.Marshal(entry.Vector, buf[n:])
	}
	return buf
}

func unmarshalIndexSnapshot(data []byte) (snap indexSnapshot, err error) {
	var n, n1 int
	snap.Dim, n, err = varint.Int.Unmarshal(data)
	if err != nil {
		return
	}
	snap.NextID, n1, err = varint.Int64.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		return snap, fmt.Errorf("negative entry count %d", count)
	}
	snap.Entries = make([]indexEntry, 0, count)
	for i := 0; i < count; i++ {
		var entry indexEntry
		entry.VectorID, n1, err = raw.Int64.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return
		}
		entry.Vector, n1, err = float32SliceMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

func marshalMapping(mapping []mappingEntry) []byte {
	size := varint.Int.Size(len(mapping))
	for _, entry := range mapping {
		size += raw.Int64.Size(entry.VectorID)
		size += ord.String.Size(string(entry.DocumentID))
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(len(mapping), buf)
	for _, entry := range mapping {
		n += raw.Int64.Marshal(entry.VectorID, buf[n:])
		n += ord.String.Marshal(string(entry.DocumentID), buf[n:])
	}
	return buf
}

func unmarshalMapping(data []byte) (mapping []mappingEntry, err error) {
	var n, n1 int
	var count int
	count, n, err = varint.Int.Unmarshal(data)
	if err != nil {
		return
	}
	if count < 0 {
		return nil, fmt.Errorf("negative entry count %d", count)
	}
	mapping = make([]mappingEntry, 0, count)
	for i := 0; i < count; i++ {
		var entry mappingEntry
		entry.VectorID, n1, err = raw.Int64.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		var docID string
		docID, n1, err = ord.String.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, err
		}
		entry.DocumentID = core.ID(docID)
		mapping = append(mapping, entry)
	}
	return mapping, nil
}

// writeAtomic writes data to a temp file in the target directory and moves
// it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
