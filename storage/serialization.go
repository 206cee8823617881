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

package storage

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

// Hand-written MUS serializers for the domain records stored in BadgerDB.
// The format is length-prefixed field-by-field encoding; field order is the
// wire contract and must not change between releases.

var (
	stringSliceMUS mus.Serializer[[]string]          = ord.NewSliceSer[string](ord.String)
	stringMapMUS   mus.Serializer[map[string]string] = ord.NewMapSer[string, string](ord.String, ord.String)
)

// idMUS serializes core.ID as a plain string.
type idMUS struct{}

// IDMUS is the serializer for node ids.
var IDMUS = idMUS{}

func (idMUS) Marshal(id core.ID, bs []byte) (n int) {
	return ord.String.Marshal(string(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id core.ID, n int, err error) {
	s, n, err := ord.String.Unmarshal(bs)
	return core.ID(s), n, err
}

func (idMUS) Size(id core.ID) (size int) {
	return ord.String.Size(string(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

// documentMUS serializes core.Document.
type documentMUS struct{}

// DocumentMUS is the serializer for document node records.
var DocumentMUS = documentMUS{}

func (documentMUS) Marshal(d core.Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Text, bs[n:])
	n += stringSliceMUS.Marshal(d.Chunks, bs[n:])
	n += raw.Int64.Marshal(d.VectorId, bs[n:])
	n += stringMapMUS.Marshal(d.Metadata, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d core.Document, n int, err error) {
	var n1 int
	d.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Chunks, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.VectorId, n1, err = raw.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Metadata, n1, err = stringMapMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (documentMUS) Size(d core.Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Text)
	size += stringSliceMUS.Size(d.Chunks)
	size += raw.Int64.Size(d.VectorId)
	size += stringMapMUS.Size(d.Metadata)
	return size
}

func (documentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = stringSliceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = stringMapMUS.Skip(bs[n:])
	n += n1
	return
}

// entityMUS serializes core.Entity.
type entityMUS struct{}

// EntityMUS is the serializer for entity node records.
var EntityMUS = entityMUS{}

func (entityMUS) Marshal(e core.Entity, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Name, bs[n:])
	n += ord.String.Marshal(string(e.Type), bs[n:])
	return n
}

func (entityMUS) Unmarshal(bs []byte) (e core.Entity, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	e.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var typ string
	typ, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	e.Type = core.EntityType(typ)
	return
}

func (entityMUS) Size(e core.Entity) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Name)
	size += ord.String.Size(string(e.Type))
	return size
}

func (entityMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// edgeMUS serializes core.Edge.
type edgeMUS struct{}

// EdgeMUS is the serializer for edge records.
var EdgeMUS = edgeMUS{}

func (edgeMUS) Marshal(e core.Edge, bs []byte) (n int) {
	n = IDMUS.Marshal(e.SourceId, bs)
	n += IDMUS.Marshal(e.TargetId, bs[n:])
	n += ord.String.Marshal(string(e.Type), bs[n:])
	n += raw.Float64.Marshal(e.Weight, bs[n:])
	return n
}

func (edgeMUS) Unmarshal(bs []byte) (e core.Edge, n int, err error) {
	var n1 int
	e.SourceId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	e.TargetId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var typ string
	typ, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Type = core.EdgeType(typ)
	e.Weight, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (edgeMUS) Size(e core.Edge) (size int) {
	size = IDMUS.Size(e.SourceId)
	size += IDMUS.Size(e.TargetId)
	size += ord.String.Size(string(e.Type))
	size += raw.Float64.Size(e.Weight)
	return size
}

func (edgeMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = raw.Float64.Skip(bs[n:])
	n += n1
	return
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalEntity serializes an Entity to bytes.
func MarshalEntity(entity *core.Entity) []byte {
	buf := make([]byte, EntityMUS.Size(*entity))
	EntityMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntity deserializes an Entity from bytes.
func UnmarshalEntity(data []byte) (*core.Entity, error) {
	entity, _, err := EntityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// MarshalEdge serializes an Edge to bytes.
func MarshalEdge(edge *core.Edge) []byte {
	buf := make([]byte, EdgeMUS.Size(*edge))
	EdgeMUS.Marshal(*edge, buf)
	return buf
}

// UnmarshalEdge deserializes an Edge from bytes.
func UnmarshalEdge(data []byte) (*core.Edge, error) {
	edge, _, err := EdgeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}
