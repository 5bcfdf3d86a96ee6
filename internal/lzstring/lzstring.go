// Package lzstring implements the LZString scheme in its base64 transport
// encoding. pixelzone.io wraps binary chunk payloads in it before they cross
// the socket, so the decoder is the first stage of that decode pipeline. The
// encoder is the exact inverse and exists for fixture construction and
// round-trip verification.
//
// The scheme is an LZ78-style dictionary coder over UTF-16 code units with a
// variable-width bit stream, serialized six bits per base64 character. There
// is no external dictionary; both directions are pure functions.
package lzstring

import (
	"errors"
	"unicode/utf16"
)

const keyStrBase64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

var (
	// ErrInvalidChar reports a character outside the base64 alphabet.
	ErrInvalidChar = errors.New("lzstring: invalid base64 alphabet character")
	// ErrTruncated reports a bit stream that ended mid-sequence.
	ErrTruncated = errors.New("lzstring: truncated bit stream")
	// ErrCorrupt reports a dictionary reference that was never defined.
	ErrCorrupt = errors.New("lzstring: corrupt dictionary reference")
)

var base64Rev = func() [256]int16 {
	var rev [256]int16
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(keyStrBase64); i++ {
		rev[keyStrBase64[i]] = int16(i)
	}
	return rev
}()

// bitReader pulls bits most-significant-first out of the 6-bit values the
// base64 characters decode to, in the order the reference implementation
// defines.
type bitReader struct {
	data     string
	index    int
	val      int
	position int
	reset    int
}

func newBitReader(data string, reset int) (*bitReader, error) {
	v := base64Rev[data[0]]
	if v < 0 {
		return nil, ErrInvalidChar
	}
	return &bitReader{data: data, index: 1, val: int(v), position: reset, reset: reset}, nil
}

// read returns the next n bits as an integer, least significant bit first.
func (r *bitReader) read(n int) (int, error) {
	bits := 0
	for power := 1; n > 0; n-- {
		resb := r.val & r.position
		r.position >>= 1
		if r.position == 0 {
			if r.index >= len(r.data) {
				return 0, ErrTruncated
			}
			v := base64Rev[r.data[r.index]]
			if v < 0 {
				return 0, ErrInvalidChar
			}
			r.val = int(v)
			r.index++
			r.position = r.reset
		}
		if resb > 0 {
			bits |= power
		}
		power <<= 1
	}
	return bits, nil
}

// DecompressFromBase64 recovers the original string from its compressed
// base64 form. Malformed input fails; it is never silently truncated.
func DecompressFromBase64(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	rd, err := newBitReader(input, 32)
	if err != nil {
		return "", err
	}

	first, err := rd.read(2)
	if err != nil {
		return "", err
	}
	var width int
	switch first {
	case 0:
		width = 8
	case 1:
		width = 16
	case 2:
		return "", nil
	}
	c, err := rd.read(width)
	if err != nil {
		return "", err
	}

	// Entries 0-2 are the control codes, never referenced as strings.
	dictionary := make([][]uint16, 3, 64)
	w := []uint16{uint16(c)}
	dictionary = append(dictionary, w)
	result := append([]uint16(nil), w...)
	enlargeIn := 4
	dictSize := 4
	numBits := 3

	for {
		if rd.index > len(rd.data) {
			return "", ErrTruncated
		}
		code, err := rd.read(numBits)
		if err != nil {
			return "", err
		}
		switch code {
		case 0, 1:
			ch, err := rd.read(8 * (code + 1))
			if err != nil {
				return "", err
			}
			dictionary = append(dictionary, []uint16{uint16(ch)})
			code = dictSize
			dictSize++
			enlargeIn--
		case 2:
			return string(utf16.Decode(result)), nil
		}
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dictionary):
			entry = dictionary[code]
		case code == dictSize:
			entry = append(append([]uint16(nil), w...), w[0])
		default:
			return "", ErrCorrupt
		}
		result = append(result, entry...)
		dictionary = append(dictionary, append(append([]uint16(nil), w...), entry[0]))
		dictSize++
		enlargeIn--
		w = entry
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}

// CompressToBase64 is the inverse of DecompressFromBase64.
func CompressToBase64(input string) string {
	out := compress(input, 6)
	switch len(out) % 4 {
	case 1:
		return out + "==="
	case 2:
		return out + "=="
	case 3:
		return out + "="
	}
	return out
}

func compress(input string, bitsPerChar int) string {
	units := utf16.Encode([]rune(input))

	dictionary := make(map[string]int)
	toCreate := make(map[string]bool)
	var w []uint16
	enlargeIn := 2
	dictSize := 3
	numBits := 2
	var data []byte
	val, position := 0, 0

	emitBit := func(bit int) {
		val = val<<1 | bit
		if position == bitsPerChar-1 {
			position = 0
			data = append(data, keyStrBase64[val])
			val = 0
		} else {
			position++
		}
	}
	emitValue := func(value, n int) {
		for i := 0; i < n; i++ {
			emitBit(value & 1)
			value >>= 1
		}
	}
	key := func(u []uint16) string {
		r := make([]rune, len(u))
		for i, c := range u {
			r[i] = rune(c)
		}
		return string(r)
	}
	// outputW emits the code for w: either a literal character definition
	// (the first time the character is seen) or its dictionary index.
	outputW := func() {
		wk := key(w)
		if toCreate[wk] {
			if w[0] < 256 {
				emitValue(0, numBits)
				emitValue(int(w[0]), 8)
			} else {
				emitValue(1, numBits)
				emitValue(int(w[0]), 16)
			}
			enlargeIn--
			if enlargeIn == 0 {
				enlargeIn = 1 << numBits
				numBits++
			}
			delete(toCreate, wk)
		} else {
			emitValue(dictionary[wk], numBits)
		}
	}

	for _, c := range units {
		ck := key([]uint16{c})
		if _, ok := dictionary[ck]; !ok {
			dictionary[ck] = dictSize
			dictSize++
			toCreate[ck] = true
		}
		wc := append(append([]uint16(nil), w...), c)
		wck := key(wc)
		if _, ok := dictionary[wck]; ok {
			w = wc
			continue
		}
		outputW()
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
		dictionary[wck] = dictSize
		dictSize++
		w = []uint16{c}
	}

	if len(w) != 0 {
		outputW()
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	emitValue(2, numBits)

	for {
		val <<= 1
		if position == bitsPerChar-1 {
			data = append(data, keyStrBase64[val])
			break
		}
		position++
	}
	return string(data)
}
