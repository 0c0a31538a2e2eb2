// Package xstring converts between strings and byte slices without copying.
package xstring

import "unsafe"

// ToBytes shares the memory of s. The result must not be modified.
func ToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// FromBytes shares the memory of b, which must not change afterwards.
func FromBytes(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
