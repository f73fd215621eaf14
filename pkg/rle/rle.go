// Package rle run-length encodes binary masks.
//
// A mask is a row-major bitmap of 0/1 bytes. The encoding is a list of run lengths that
// alternate between 0 and 1, always starting with a run of zeros (which may be empty).
package rle

import (
	"errors"
)

var ErrSizeMismatch = errors.New("Run lengths do not add up to the mask size")

// Compress encodes a mask. Any non-zero byte counts as 1.
func Compress(mask []byte) []uint32 {
	if len(mask) == 0 {
		return nil
	}
	counts := []uint32{}
	var current byte
	run := uint32(0)
	for _, b := range mask {
		if b != 0 {
			b = 1
		}
		if b != current {
			counts = append(counts, run)
			run = 0
			current = b
		}
		run++
	}
	counts = append(counts, run)
	return counts
}

// Decompress writes the decoded mask into 'mask', which must be exactly the decoded size.
func Decompress(counts []uint32, mask []byte) error {
	pos := 0
	var v byte
	for _, c := range counts {
		if pos+int(c) > len(mask) {
			return ErrSizeMismatch
		}
		for i := 0; i < int(c); i++ {
			mask[pos+i] = v
		}
		pos += int(c)
		v ^= 1
	}
	if pos != len(mask) {
		return ErrSizeMismatch
	}
	return nil
}

// Area returns the number of set pixels described by 'counts'
func Area(counts []uint32) int {
	area := 0
	for i := 1; i < len(counts); i += 2 {
		area += int(counts[i])
	}
	return area
}
