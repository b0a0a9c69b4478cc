// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package zarr

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkKey formats the store key for a chunk from its grid indices.
// For a two-dimensional array with the default separator this looks
// like "3.0".  Scalar (zero-dimensional) arrays store their single
// chunk under the key "0".
func ChunkKey(indices []int, separator string) string {
	if len(indices) == 0 {
		return "0"
	}
	if len(indices) == 1 {
		return strconv.Itoa(indices[0])
	}
	var sb strings.Builder
	for i, idx := range indices {
		if i > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

// ParseChunkKey is the inverse of ChunkKey.  It rejects keys whose
// dimensionality does not match ndim, or whose indices are negative.
func ParseChunkKey(key, separator string, ndim int) ([]int, error) {
	if ndim == 0 {
		if key != "0" {
			return nil, fmt.Errorf("invalid scalar chunk key %q", key)
		}
		return []int{}, nil
	}
	parts := strings.Split(key, separator)
	if len(parts) != ndim {
		return nil, fmt.Errorf("chunk key %q has %v indices, want %v",
			key, len(parts), ndim)
	}
	indices := make([]int, ndim)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid chunk index %q in key %q", part, key)
		}
		indices[i] = n
	}
	return indices, nil
}

// GridShape returns the number of chunks along each dimension.  An
// array dimension of length zero still occupies zero chunks.
func (m *ArrayMeta) GridShape() []int {
	grid := make([]int, len(m.Shape))
	for dim := range m.Shape {
		grid[dim] = (m.Shape[dim] + m.Chunks[dim] - 1) / m.Chunks[dim]
	}
	return grid
}

// ChunkCount returns the total number of chunk objects the array can
// occupy.
func (m *ArrayMeta) ChunkCount() int {
	count := 1
	for _, n := range m.GridShape() {
		count *= n
	}
	return count
}

// ChunkShapeAt returns the logical shape of the chunk at the given grid
// indices.  Chunks are stored full-size, but chunks that overhang the
// edge of the array contain fewer valid elements along the overhanging
// dimensions.
func (m *ArrayMeta) ChunkShapeAt(indices []int) []int {
	shape := make([]int, len(indices))
	for dim, idx := range indices {
		start := idx * m.Chunks[dim]
		length := m.Chunks[dim]
		if start+length > m.Shape[dim] {
			length = m.Shape[dim] - start
		}
		shape[dim] = length
	}
	return shape
}

// ChunkElements returns the number of elements stored in one chunk
// object (the full chunk shape, not the edge-truncated one).
func (m *ArrayMeta) ChunkElements() int {
	count := 1
	for _, n := range m.Chunks {
		count *= n
	}
	return count
}

// Elements returns the number of elements in the whole array.
func (m *ArrayMeta) Elements() int {
	count := 1
	for _, n := range m.Shape {
		count *= n
	}
	return count
}

// ValidChunk reports whether grid indices fall inside the chunk grid.
func (m *ArrayMeta) ValidChunk(indices []int) bool {
	if len(indices) != len(m.Shape) {
		return false
	}
	for dim, n := range m.GridShape() {
		if indices[dim] < 0 || indices[dim] >= n {
			return false
		}
	}
	return true
}
