// Package suggest finds identifiers spelled like a given one.
//
// Names are embedded as hashed character unigram and bigram counts and kept
// in an HNSW graph, so lookups stay cheap as the environment grows.
package suggest

import (
	"hash/fnv"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"
)

const (
	// Dimensions is the length of a name vector.
	Dimensions = 128
	// MaxDistance is the largest cosine distance reported as a match.
	MaxDistance = 0.5
)

// Index is a similarity index over identifier names. It is safe for
// concurrent use.
type Index struct {
	mu    sync.Mutex
	graph *hnsw.Graph[string]
	names map[string]bool
}

// New builds an index over names.
func New(names ...string) *Index {
	ix := &Index{
		graph: hnsw.NewGraph[string](),
		names: make(map[string]bool),
	}
	for _, n := range names {
		ix.add(n)
	}
	return ix
}

// Add inserts name if it is not already indexed.
func (ix *Index) Add(name string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.add(name)
}

func (ix *Index) add(name string) {
	if name == "" || ix.names[name] {
		return
	}
	ix.names[name] = true
	ix.graph.Add(hnsw.MakeNode(name, Vector(name)))
}

// Len returns the number of indexed names.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.names)
}

// Nearest returns up to k indexed names within MaxDistance of name, nearest
// first. name itself is never returned.
func (ix *Index) Nearest(name string, k int) []string {
	if k <= 0 || name == "" {
		return nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(ix.names) == 0 {
		return nil
	}

	query := Vector(name)
	nodes := ix.graph.Search(query, k+1)

	type match struct {
		name string
		dist float32
	}
	var matches []match
	for _, n := range nodes {
		if n.Key == name {
			continue
		}
		d := hnsw.CosineDistance(query, n.Value)
		if d > MaxDistance {
			continue
		}
		matches = append(matches, match{n.Key, d})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// Vector embeds name as L2-normalised hashed counts of its characters and
// of its character pairs, with the start and end of the name marked.
func Vector(name string) []float32 {
	vec := make([]float32, Dimensions)
	runes := []rune("^" + name + "$")
	for i, r := range runes {
		if r != '^' && r != '$' {
			vec[bucket(string(r))]++
		}
		if i > 0 {
			vec[bucket(string(runes[i-1:i+1]))]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func bucket(feature string) int {
	h := fnv.New32a()
	h.Write([]byte(feature))
	return int(h.Sum32() % Dimensions)
}
