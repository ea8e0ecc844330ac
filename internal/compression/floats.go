package compression

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// floatsMagic starts every encoded float block.
const floatsMagic byte = 0x67

// maxBlockValues bounds the value count accepted by DecodeFloats.
const maxBlockValues = 1 << 26

// ErrCorrupt is returned for blocks that cannot be decoded.
var ErrCorrupt = errors.New("corrupt float block")

// EncodeFloats packs values with XOR delta encoding: consecutive values
// that share sign, exponent and high mantissa bits cost only their
// differing bits. Sample paths and quantile curves compress well.
//
// Layout: magic, uvarint count, first value (8 bytes LE), bit stream.
func EncodeFloats(values []float64) []byte {
	buf := make([]byte, 0, 16+len(values)*2)
	buf = append(buf, floatsMagic)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	if len(values) == 0 {
		return buf
	}

	prev := math.Float64bits(values[0])
	buf = binary.LittleEndian.AppendUint64(buf, prev)

	w := newBitWriter(buf)
	prevLeading, prevTrailing := uint8(64), uint8(0)
	for _, v := range values[1:] {
		cur := math.Float64bits(v)
		xor := prev ^ cur
		prev = cur

		if xor == 0 {
			w.writeBit(false)
			continue
		}
		w.writeBit(true)

		leading, trailing := leadingZeros(xor), trailingZeros(xor)
		if leading > 63 {
			leading = 63
		}
		if prevLeading < 64 && leading >= prevLeading && trailing >= prevTrailing {
			// reuse the previous window
			w.writeBit(false)
			w.writeBits(xor>>prevTrailing, 64-prevLeading-prevTrailing)
			continue
		}

		significant := 64 - leading - trailing
		w.writeBit(true)
		w.writeBits(uint64(leading), 6)
		w.writeBits(uint64(significant-1), 6)
		w.writeBits(xor>>trailing, significant)
		prevLeading, prevTrailing = leading, trailing
	}
	return w.bytes()
}

// DecodeFloats reverses EncodeFloats.
func DecodeFloats(data []byte) ([]float64, error) {
	if len(data) == 0 || data[0] != floatsMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	count, n := binary.Uvarint(data[1:])
	if n <= 0 || count > maxBlockValues {
		return nil, fmt.Errorf("%w: bad count", ErrCorrupt)
	}
	off := 1 + n
	if count == 0 {
		return []float64{}, nil
	}
	if off+8 > len(data) {
		return nil, fmt.Errorf("%w: missing first value", ErrCorrupt)
	}

	prev := binary.LittleEndian.Uint64(data[off:])
	values := make([]float64, count)
	values[0] = math.Float64frombits(prev)

	r := newBitReader(data[off+8:])
	var leading, trailing uint8
	for i := 1; i < len(values); i++ {
		changed, ok := r.readBit()
		if !ok {
			return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
		}
		if changed {
			newWindow, ok := r.readBit()
			if !ok {
				return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
			}
			if newWindow {
				l, ok1 := r.readBits(6)
				s, ok2 := r.readBits(6)
				if !ok1 || !ok2 {
					return nil, fmt.Errorf("%w: truncated window at value %d", ErrCorrupt, i)
				}
				leading = uint8(l)
				trailing = 64 - leading - uint8(s) - 1
			}
			bits, ok := r.readBits(64 - leading - trailing)
			if !ok {
				return nil, fmt.Errorf("%w: truncated at value %d", ErrCorrupt, i)
			}
			prev ^= bits << trailing
		}
		values[i] = math.Float64frombits(prev)
	}
	return values, nil
}

// WriteBlock writes values as a length-prefixed encoded block.
func WriteBlock(w io.Writer, values []float64) error {
	block := EncodeFloats(values)
	header := binary.AppendUvarint(nil, uint64(len(block)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(block)
	return err
}

// BlockReader reads blocks written by WriteBlock.
type BlockReader struct {
	r *bufio.Reader
}

// NewBlockReader wraps r.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: bufio.NewReader(r)}
}

// Next returns the next block, or io.EOF after the last one.
func (b *BlockReader) Next() ([]float64, error) {
	size, err := binary.ReadUvarint(b.r)
	if err != nil {
		return nil, err
	}
	if size > maxBlockValues*10 {
		return nil, fmt.Errorf("%w: block of %d bytes", ErrCorrupt, size)
	}
	block := make([]byte, size)
	if _, err := io.ReadFull(b.r, block); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return DecodeFloats(block)
}
