package codec

import (
	"encoding/binary"
	"fmt"
)

// thresholds for the compact-size length prefix bands.
const (
	prefix16 = 253
	prefix32 = 254
	prefix64 = 255

	max16 = 0xFFFF
	max32 = 0xFFFFFFFF
)

// EncodeFrame returns the compact-size prefix for b's length followed by b
// itself.
func EncodeFrame(b []byte) []byte {
	n := len(b)
	var prefix []byte
	switch {
	case n < prefix16:
		prefix = []byte{byte(n)}
	case n <= max16:
		prefix = make([]byte, 3)
		prefix[0] = prefix16
		binary.BigEndian.PutUint16(prefix[1:], uint16(n))
	case n <= max32:
		prefix = make([]byte, 5)
		prefix[0] = prefix32
		binary.BigEndian.PutUint32(prefix[1:], uint32(n))
	default:
		prefix = make([]byte, 9)
		prefix[0] = prefix64
		binary.BigEndian.PutUint64(prefix[1:], uint64(n))
	}
	return append(prefix, b...)
}

// EncodeFrames concatenates EncodeFrame(b) for every b in items, in order.
func EncodeFrames(items ...[]byte) []byte {
	var out []byte
	for _, item := range items {
		out = append(out, EncodeFrame(item)...)
	}
	return out
}

// DecodeFrames walks buf repeatedly reading a compact-size prefix then its
// payload, returning the ordered list of frame payloads. It fails if a
// prefix or payload runs past the end of buf.
func DecodeFrames(buf []byte) ([][]byte, error) {
	var frames [][]byte
	for len(buf) > 0 {
		n, headerLen, err := readLength(buf)
		if err != nil {
			return nil, err
		}
		buf = buf[headerLen:]
		if uint64(len(buf)) < n {
			return nil, fmt.Errorf("codec: frame length %d exceeds remaining %d bytes", n, len(buf))
		}
		frames = append(frames, buf[:n])
		buf = buf[n:]
	}
	return frames, nil
}

// DecodeFramesN decodes exactly count frames from the start of buf and
// returns them plus the number of bytes consumed. It fails if fewer than
// count frames are present.
func DecodeFramesN(buf []byte, count int) ([][]byte, int, error) {
	frames := make([][]byte, 0, count)
	consumed := 0
	remaining := buf
	for i := 0; i < count; i++ {
		if len(remaining) == 0 {
			return nil, 0, fmt.Errorf("codec: expected %d frames, found %d", count, len(frames))
		}
		n, headerLen, err := readLength(remaining)
		if err != nil {
			return nil, 0, err
		}
		remaining = remaining[headerLen:]
		consumed += headerLen
		if uint64(len(remaining)) < n {
			return nil, 0, fmt.Errorf("codec: frame length %d exceeds remaining %d bytes", n, len(remaining))
		}
		frames = append(frames, remaining[:n])
		remaining = remaining[n:]
		consumed += int(n)
	}
	return frames, consumed, nil
}

func readLength(buf []byte) (length uint64, headerLen int, err error) {
	if len(buf) == 0 {
		return 0, 0, fmt.Errorf("codec: truncated compact-size prefix")
	}
	switch buf[0] {
	case prefix16:
		if len(buf) < 3 {
			return 0, 0, fmt.Errorf("codec: truncated 2-byte length prefix")
		}
		return uint64(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case prefix32:
		if len(buf) < 5 {
			return 0, 0, fmt.Errorf("codec: truncated 4-byte length prefix")
		}
		return uint64(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	case prefix64:
		if len(buf) < 9 {
			return 0, 0, fmt.Errorf("codec: truncated 8-byte length prefix")
		}
		return binary.BigEndian.Uint64(buf[1:9]), 9, nil
	default:
		return uint64(buf[0]), 1, nil
	}
}
