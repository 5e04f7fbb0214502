// Package leb128 encodes and decodes LEB128 variable-length integers, the
// varint encoding used throughout the QuickJS bytecode wire format.
package leb128

import "errors"

// ErrTruncated is returned when fewer bytes remain than a varint needs.
var ErrTruncated = errors.New("leb128: truncated varint")

// ErrOverflow is returned when an encoded value does not fit the target
// integer width.
var ErrOverflow = errors.New("leb128: value overflows target width")

// maxUint32VarintBytes bounds how many continuation bytes LoadUint32 will walk
// before declaring the encoding malformed; five 7-bit groups cover 35 bits,
// comfortably more than a uint32 needs.
const maxUint32VarintBytes = 5

// maxUint64VarintBytes covers 70 bits, comfortably more than a uint64 needs.
const maxUint64VarintBytes = 10

// LoadUint32 decodes an unsigned LEB128 value from the front of data,
// returning the value, the number of bytes consumed, and an error if data
// is truncated or the encoded value does not fit in 32 bits.
func LoadUint32(data []byte) (uint32, uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxUint32VarintBytes; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if result > 0xffffffff {
				return 0, 0, ErrOverflow
			}
			return uint32(result), uint64(i + 1), nil
		}
		shift += 7
	}
	return 0, 0, ErrOverflow
}

// LoadUint64 decodes an unsigned LEB128 value from the front of data.
func LoadUint64(data []byte) (uint64, uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxUint64VarintBytes; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		if i == maxUint64VarintBytes-1 && b&0xfe != 0 {
			return 0, 0, ErrOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, uint64(i + 1), nil
		}
		shift += 7
	}
	return 0, 0, ErrOverflow
}

// LoadInt32 decodes a signed LEB128 value from the front of data.
func LoadInt32(data []byte) (int32, uint64, error) {
	v, n, err := loadSigned(data, 32)
	if err != nil {
		return 0, 0, err
	}
	return int32(v), n, nil
}

// LoadInt64 decodes a signed LEB128 value from the front of data.
func LoadInt64(data []byte) (int64, uint64, error) {
	return loadSigned(data, 64)
}

func loadSigned(data []byte, width uint) (int64, uint64, error) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b = data[i]
		result |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
	}
	if shift < width && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, uint64(i), nil
}

// EncodeUint32 returns the unsigned LEB128 encoding of v.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 returns the unsigned LEB128 encoding of v.
func EncodeUint64(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

// EncodeInt32 returns the signed LEB128 encoding of v.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 returns the signed LEB128 encoding of v.
func EncodeInt64(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
