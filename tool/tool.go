// Package tool implements the capability binding subsystem: immutable tool
// descriptors referencing remote resources (vector stores) bundled into a
// Toolset that is passed by value at agent creation time. Descriptors are
// pure construction; no remote calls happen here and no validation beyond
// what the remote API performs at agent creation.
package tool

import "encoding/json"

// TypeFileSearch identifies the hosted file-search capability. The remote
// agent uses it to retrieve document passages from the referenced vector
// stores during a run.
const TypeFileSearch = "file_search"

// Descriptor is an immutable capability reference. It names a capability
// kind and the remote vector stores the capability may search.
type Descriptor struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids,omitempty"`
}

// NewFileSearch builds a file-search descriptor over the given vector store
// ids. The id slice is copied so later caller mutation cannot leak in.
func NewFileSearch(storeIDs ...string) Descriptor {
	ids := make([]string, len(storeIDs))
	copy(ids, storeIDs)
	return Descriptor{Type: TypeFileSearch, VectorStoreIDs: ids}
}

// Toolset is an immutable bundle of descriptors bound to an agent at
// creation. There is deliberately no mutation protocol: build the complete
// set once and pass it by value.
type Toolset struct {
	descriptors []Descriptor
}

// NewToolset bundles the given descriptors. The input slice is copied.
func NewToolset(descriptors ...Descriptor) Toolset {
	ds := make([]Descriptor, len(descriptors))
	copy(ds, descriptors)
	return Toolset{descriptors: ds}
}

// Descriptors returns a defensive copy of the bundled descriptors.
func (t Toolset) Descriptors() []Descriptor {
	ds := make([]Descriptor, len(t.descriptors))
	copy(ds, t.descriptors)
	return ds
}

// MarshalJSON renders the toolset as its descriptor array so embedding
// structs serialize the bound capabilities rather than an empty object.
func (t Toolset) MarshalJSON() ([]byte, error) {
	if t.descriptors == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.descriptors)
}

// Len reports the number of bundled descriptors.
func (t Toolset) Len() int { return len(t.descriptors) }

// VectorStoreIDs returns the union of store ids referenced by all
// descriptors, preserving first-seen order.
func (t Toolset) VectorStoreIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, d := range t.descriptors {
		for _, id := range d.VectorStoreIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
