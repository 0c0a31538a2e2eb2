package xmap

import (
	"cmp"
	"slices"
)

func Keys[M ~map[K]V, K comparable, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func Values[M ~map[K]V, K comparable, V any](m M) []V {
	vals := make([]V, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	return vals
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	keys := Keys(m)
	slices.Sort(keys)
	return keys
}

// ValuesSortedFunc returns the values of m ordered by cmpFn.
func ValuesSortedFunc[M ~map[K]V, K comparable, V any](m M, cmpFn func(a, b V) int) []V {
	vals := Values(m)
	slices.SortFunc(vals, cmpFn)
	return vals
}
