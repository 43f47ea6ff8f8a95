package midi

import "github.com/zurustar/infrared/pkg/diag"

// maxVarint is the largest value the MIDI variable-length quantity
// format can represent in four bytes (7 bits per byte).
const maxVarint = 0x0FFFFFFF

// encodeVarint encodes v (0..maxVarint) as a MIDI variable-length
// quantity: 7 data bits per byte, big-endian, with the continuation bit
// (0x80) set on every byte but the last.
func encodeVarint(v int64) ([]byte, error) {
	if v < 0 || v > maxVarint {
		return nil, diag.Newf(diag.Overflow, "varint value %d out of range [0,%d]", v, maxVarint)
	}
	var buf [4]byte
	n := 0
	if v >= 0x00200000 {
		buf[n] = byte((v>>21)&0x7f) | 0x80
		n++
	}
	if v >= 0x00004000 {
		buf[n] = byte((v>>14)&0x7f) | 0x80
		n++
	}
	if v >= 0x00000080 {
		buf[n] = byte((v>>7)&0x7f) | 0x80
		n++
	}
	buf[n] = byte(v & 0x7f)
	n++
	return buf[:n], nil
}

// decodeVarint reads a MIDI variable-length quantity from the front of
// buf, returning the decoded value and the number of bytes consumed
// (1..4).
func decodeVarint(buf []byte) (int64, int, error) {
	if len(buf) < 1 {
		return 0, 0, diag.New(diag.Overflow, "varint: empty buffer")
	}
	var result int64
	n := 0
	for buf[n]&0x80 != 0 {
		result = (result << 7) | int64(buf[n]&0x7f)
		n++
		if n >= len(buf) || n >= 4 {
			return 0, 0, diag.New(diag.Overflow, "varint: malformed or truncated")
		}
	}
	result = (result << 7) | int64(buf[n])
	n++
	return result, n, nil
}
