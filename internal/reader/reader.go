// Package reader implements the cursor over a QuickJS bytecode buffer:
// fixed-width little-endian reads, LEB128 varints, atom and string-bytes
// decoding, and bounded sub-reader windowing.
package reader

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/saulecabrera/jac/internal/errs"
	"github.com/saulecabrera/jac/internal/leb128"
)

// Reader is an immutable byte slice paired with a mutable cursor. All
// reads are bounds-checked against the slice, never against anything
// beyond it — a Reader carved as a sub-window (see Window) cannot see
// past its own bounds even though it shares the parent's backing array.
type Reader struct {
	data []byte
	pos  int
}

// New wraps data in a Reader positioned at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Done reports whether the cursor has reached the end of the buffer.
func (r *Reader) Done() bool { return r.pos >= len(r.data) }

// Remaining returns a borrowed view of the unread bytes.
func (r *Reader) Remaining() []byte { return r.data[r.pos:] }

func (r *Reader) ensure(n int) error {
	if r.Len() < n {
		return errs.AtOffset(errs.Truncated, r.pos, "need %d bytes, have %d", n, r.Len())
	}
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (byte, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadI8 reads one byte as a signed 8-bit integer.
func (r *Reader) ReadI8() (int8, error) {
	b, err := r.ReadU8()
	return int8(b), err
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.ensure(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadF64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadF64() (float64, error) {
	bits, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (r *Reader) classifyLEBErr(err error) error {
	switch {
	case errors.Is(err, leb128.ErrTruncated):
		return errs.AtOffset(errs.Truncated, r.pos, "truncated LEB128 varint")
	case errors.Is(err, leb128.ErrOverflow):
		return errs.AtOffset(errs.Overflow, r.pos, "LEB128 value overflows target width")
	default:
		return err
	}
}

// ReadULEB reads an unsigned LEB128 varint as a u32.
func (r *Reader) ReadULEB() (uint32, error) {
	v, n, err := leb128.LoadUint32(r.Remaining())
	if err != nil {
		return 0, r.classifyLEBErr(err)
	}
	r.pos += int(n)
	return v, nil
}

// ReadSLEB reads a signed LEB128 varint as an i32.
func (r *Reader) ReadSLEB() (int32, error) {
	v, n, err := leb128.LoadInt32(r.Remaining())
	if err != nil {
		return 0, r.classifyLEBErr(err)
	}
	r.pos += int(n)
	return v, nil
}

// ReadAtom reads an unsigned LEB128 and discards the low bit: QuickJS
// multiplexes a tag bit into the same varint used for atom indices.
func (r *Reader) ReadAtom() (uint32, error) {
	v, err := r.ReadULEB()
	if err != nil {
		return 0, err
	}
	return v >> 1, nil
}

// ReadStrBytes reads an LEB128 length whose low bit flags a wide
// (16-bit-per-char) string, then returns a borrowed slice of exactly the
// effective byte length: (length >> 1) << wideFlag. wide reports whether
// the low bit was set, which callers need to interpret the bytes as
// narrow (1 byte/char) or wide (2 bytes/char, little-endian) text.
func (r *Reader) ReadStrBytes() (data []byte, wide bool, err error) {
	lenAndFlag, err := r.ReadULEB()
	if err != nil {
		return nil, false, err
	}
	wide = lenAndFlag&1 != 0
	size := int(lenAndFlag >> 1)
	if wide {
		size <<= 1
	}
	if err := r.ensure(size); err != nil {
		return nil, false, err
	}
	b := r.data[r.pos : r.pos+size]
	r.pos += size
	return b, wide, nil
}

// ReadBytes reads and returns a borrowed slice of exactly n unparsed
// bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.ensure(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Window carves a sub-reader covering exactly the next n bytes and
// advances the parent past them. The sub-reader's own cursor re-bases to
// 0 and it cannot read past its own window, even though the two readers
// share the same backing array.
func (r *Reader) Window(n int) (*Reader, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	sub := &Reader{data: r.data[r.pos : r.pos+n]}
	r.pos += n
	return sub, nil
}
