// Package store provides the graph store backing the stage graph and the
// drawer.
package store

import (
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// CustomStore is a graph.Store whose vertex properties can be changed after
// insertion.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
}

type vertex[T any] struct {
	value T
	props *graph.VertexProperties
}

// OrderedStore is an in-memory store listing vertices in insertion order and
// edges by source then target, so the stage graph reads in declaration order.
type OrderedStore[K comparable, T any] struct {
	lock     sync.RWMutex
	order    []K
	vertices map[K]vertex[T]

	out map[K]map[K]graph.Edge[K] // source -> target
	in  map[K]map[K]graph.Edge[K] // target -> source
}

func NewOrderedStore[K comparable, T any]() *OrderedStore[K, T] {
	return &OrderedStore[K, T]{
		vertices: make(map[K]vertex[T]),
		out:      make(map[K]map[K]graph.Edge[K]),
		in:       make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *OrderedStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}
	s.vertices[k] = vertex[T]{value: t, props: &p}
	s.order = append(s.order, k)

	return nil
}

func (s *OrderedStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]K(nil), s.order...), nil
}

func (s *OrderedStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.order), nil
}

func (s *OrderedStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		var zero T
		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v.value, *v.props, nil
}

// UpdateVertex applies options to the properties of vertex k.
func (s *OrderedStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.vertices[k]
	if !ok {
		return graph.ErrVertexNotFound
	}
	if v.props.Attributes == nil {
		v.props.Attributes = make(map[string]string)
	}
	for _, opt := range options {
		opt(v.props)
	}

	return nil
}

func (s *OrderedStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}
	if len(s.in[k]) > 0 || len(s.out[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.in, k)
	delete(s.out, k)
	delete(s.vertices, k)
	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *OrderedStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	link(s.out, sourceHash, targetHash, edge)
	link(s.in, targetHash, sourceHash, edge)

	return nil
}

func (s *OrderedStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.out[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}
	s.out[sourceHash][targetHash] = edge
	s.in[targetHash][sourceHash] = edge

	return nil
}

func (s *OrderedStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.in[targetHash], sourceHash)
	delete(s.out[sourceHash], targetHash)

	return nil
}

func (s *OrderedStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.out[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *OrderedStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)
	for _, source := range s.order {
		targets := s.out[source]
		if len(targets) == 0 {
			continue
		}
		for _, target := range s.order {
			if edge, ok := targets[target]; ok {
				res = append(res, edge)
			}
		}
	}

	return res, nil
}

// CreatesCycle reports whether an edge source -> target would close a cycle,
// that is whether target is already an ancestor of source.
func (s *OrderedStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, k := range []K{source, target} {
		if _, ok := s.vertices[k]; !ok {
			return false, errors.Wrapf(graph.ErrVertexNotFound, "vertex %v", k)
		}
	}
	if source == target {
		return true, nil
	}

	stack := []K{source}
	visited := make(map[K]struct{})
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == target {
			return true, nil
		}
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		for parent := range s.in[current] {
			stack = append(stack, parent)
		}
	}

	return false, nil
}

func link[K comparable](edges map[K]map[K]graph.Edge[K], from, to K, edge graph.Edge[K]) {
	if edges[from] == nil {
		edges[from] = make(map[K]graph.Edge[K])
	}
	edges[from][to] = edge
}

var _ CustomStore[string, string] = (*OrderedStore[string, string])(nil)
