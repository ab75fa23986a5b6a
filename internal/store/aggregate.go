package store

import "sort"

// grouper сводит строки вида (родитель, потомок) к наборам потомков по ключу родителя.
// Родители и потомки хранятся в порядке первого появления, повторы потомков отбрасываются.
type grouper[K comparable, C comparable] struct {
	keys     []K
	children map[K][]C
	seen     map[K]map[C]struct{}
}

func newGrouper[K comparable, C comparable]() *grouper[K, C] {
	return &grouper[K, C]{
		children: make(map[K][]C),
		seen:     make(map[K]map[C]struct{}),
	}
}

// touch регистрирует родителя. Возвращает true, если ключ встретился впервые.
func (g *grouper[K, C]) touch(key K) bool {
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = make(map[C]struct{})
	g.keys = append(g.keys, key)
	return true
}

// add добавляет потомка к родителю, регистрируя родителя при необходимости.
func (g *grouper[K, C]) add(key K, child C) {
	g.touch(key)
	if _, dup := g.seen[key][child]; dup {
		return
	}
	g.seen[key][child] = struct{}{}
	g.children[key] = append(g.children[key], child)
}

// get возвращает потомков родителя; для неизвестного ключа пустой (не nil) срез.
func (g *grouper[K, C]) get(key K) []C {
	out := g.children[key]
	if out == nil {
		return []C{}
	}
	return append([]C(nil), out...)
}

func (g *grouper[K, C]) parents() []K {
	return append([]K(nil), g.keys...)
}

// uniqueSorted возвращает отсортированную копию ID без повторов.
func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func setToSorted(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
