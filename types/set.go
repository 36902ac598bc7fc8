package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Set is an insertion ordered set
type Set[T comparable] struct {
	index map[T]int
	items []T
}

func NewSet[T comparable](values ...T) *Set[T] {
	set := &Set[T]{
		index: make(map[T]int),
		items: []T{},
	}
	set.Insert(values...)

	return set
}

func (s *Set[T]) init() {
	if s.index == nil {
		s.index = make(map[T]int)
	}
}

func (s *Set[T]) Insert(values ...T) {
	s.init()
	for _, value := range values {
		if _, found := s.index[value]; found {
			continue
		}
		s.index[value] = len(s.items)
		s.items = append(s.items, value)
	}
}

func (s *Set[T]) Exists(value T) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, found := s.index[value]
	return found
}

func (s *Set[T]) Remove(value T) {
	idx, found := s.index[value]
	if !found {
		return
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.index, value)
	for i := idx; i < len(s.items); i++ {
		s.index[s.items[i]] = i
	}
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Array returns a copy of the items in insertion order
func (s *Set[T]) Array() []T {
	if s == nil {
		return []T{}
	}
	return append([]T{}, s.items...)
}

// Difference returns the items of s not present in other
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	diff := NewSet[T]()
	for _, item := range s.Array() {
		if !other.Exists(item) {
			diff.Insert(item)
		}
	}

	return diff
}

// ProperSubsetOf reports whether other holds every item of s and is larger than s
func (s *Set[T]) ProperSubsetOf(other *Set[T]) bool {
	return s.Difference(other).Len() == 0 && s.Len() < other.Len()
}

func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.Array())
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Array())
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	*s = Set[T]{}
	s.Insert(items...)
	return nil
}
