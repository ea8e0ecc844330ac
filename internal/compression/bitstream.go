package compression

import "math/bits"

// bitWriter appends bits MSB first to a byte buffer.
type bitWriter struct {
	buf     []byte
	current byte
	bitPos  uint8 // bits used in current (0-7)
}

func newBitWriter(buf []byte) *bitWriter {
	return &bitWriter{buf: buf}
}

func (w *bitWriter) writeBit(bit bool) {
	if bit {
		w.current |= 1 << (7 - w.bitPos)
	}
	w.bitPos++
	if w.bitPos == 8 {
		w.buf = append(w.buf, w.current)
		w.current = 0
		w.bitPos = 0
	}
}

// writeBits writes the lowest n bits of val, n <= 64.
func (w *bitWriter) writeBits(val uint64, n uint8) {
	for n > 0 {
		avail := 8 - w.bitPos
		if n >= avail {
			shift := n - avail
			w.current |= byte(val >> shift)
			if shift < 64 {
				val &= (1 << shift) - 1
			}
			n -= avail
			w.buf = append(w.buf, w.current)
			w.current = 0
			w.bitPos = 0
			continue
		}
		w.current |= byte(val << (avail - n))
		w.bitPos += n
		n = 0
	}
}

// bytes flushes the partial byte, zero padded.
func (w *bitWriter) bytes() []byte {
	if w.bitPos > 0 {
		return append(w.buf, w.current)
	}
	return w.buf
}

// bitReader reads bits MSB first.
type bitReader struct {
	data    []byte
	byteOff int
	bitOff  uint8
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) readBit() (bool, bool) {
	if r.byteOff >= len(r.data) {
		return false, false
	}
	bit := (r.data[r.byteOff]>>(7-r.bitOff))&1 == 1
	r.bitOff++
	if r.bitOff == 8 {
		r.bitOff = 0
		r.byteOff++
	}
	return bit, true
}

// readBits returns n bits right-aligned, n <= 64.
func (r *bitReader) readBits(n uint8) (uint64, bool) {
	var val uint64
	for n > 0 {
		if r.byteOff >= len(r.data) {
			return 0, false
		}
		avail := 8 - r.bitOff
		if n >= avail {
			val = val<<avail | uint64(r.data[r.byteOff]&byte(1<<avail-1))
			n -= avail
			r.bitOff = 0
			r.byteOff++
			continue
		}
		shift := avail - n
		val = val<<n | uint64(r.data[r.byteOff]>>shift&byte(1<<n-1))
		r.bitOff += n
		n = 0
	}
	return val, true
}

func leadingZeros(x uint64) uint8  { return uint8(bits.LeadingZeros64(x)) }
func trailingZeros(x uint64) uint8 { return uint8(bits.TrailingZeros64(x)) }
