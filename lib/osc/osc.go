// Package osc implements the subset of Open Sound Control 1.0 the bridge
// speaks to the console: message encoding and decoding, and a
// connectionless UDP client.
package osc

import (
	"encoding/binary"
	"fmt"
	"math"
)

func pad(n int) int {
	return (4 - n%4) % 4
}

func appendPadded(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for range pad(len(s) + 1) {
		buf = append(buf, 0)
	}
	return buf
}

// Build encodes an OSC message. Supported argument types are int32,
// float32, string, []byte, int64, float64 and bool; anything else is
// silently skipped.
func Build(addr string, args ...any) []byte {
	typetag := ","
	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			typetag += "i"
		case float32:
			typetag += "f"
		case string:
			typetag += "s"
		case []byte:
			typetag += "b"
		case int64:
			typetag += "h"
		case float64:
			typetag += "d"
		case bool:
			if v {
				typetag += "T"
			} else {
				typetag += "F"
			}
		}
	}

	buf := appendPadded(nil, addr)
	buf = appendPadded(buf, typetag)

	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			buf = binary.BigEndian.AppendUint32(buf, uint32(v))
		case float32:
			buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
		case string:
			buf = appendPadded(buf, v)
		case []byte:
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
			buf = append(buf, v...)
			for range pad(len(v)) {
				buf = append(buf, 0)
			}
		case int64:
			buf = binary.BigEndian.AppendUint64(buf, uint64(v))
		case float64:
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}

	return buf
}

// Parse decodes a single OSC message. A message without a type tag
// string yields the address and no arguments.
func Parse(data []byte) (addr string, args []any, err error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("osc: message too short")
	}

	end := 0
	for end < len(data) && data[end] != 0 {
		end++
	}
	addr = string(data[:end])
	pos := end + 1 + pad(end+1)

	if pos >= len(data) || data[pos] != ',' {
		return addr, nil, nil
	}

	ttEnd := pos
	for ttEnd < len(data) && data[ttEnd] != 0 {
		ttEnd++
	}
	typetag := string(data[pos+1 : ttEnd])
	pos = ttEnd + 1 + pad(ttEnd-pos+1)

	for _, t := range typetag {
		switch t {
		case 'i', 'f':
			if pos+4 > len(data) {
				return addr, args, fmt.Errorf("osc: truncated %c argument", t)
			}
			u := binary.BigEndian.Uint32(data[pos:])
			if t == 'i' {
				args = append(args, int32(u))
			} else {
				args = append(args, math.Float32frombits(u))
			}
			pos += 4
		case 'h', 'd':
			if pos+8 > len(data) {
				return addr, args, fmt.Errorf("osc: truncated %c argument", t)
			}
			u := binary.BigEndian.Uint64(data[pos:])
			if t == 'h' {
				args = append(args, int64(u))
			} else {
				args = append(args, math.Float64frombits(u))
			}
			pos += 8
		case 's':
			end := pos
			for end < len(data) && data[end] != 0 {
				end++
			}
			if end == len(data) {
				return addr, args, fmt.Errorf("osc: unterminated string")
			}
			args = append(args, string(data[pos:end]))
			pos = end + 1 + pad(end-pos+1)
		case 'b':
			if pos+4 > len(data) {
				return addr, args, fmt.Errorf("osc: truncated blob size")
			}
			size := int(binary.BigEndian.Uint32(data[pos:]))
			pos += 4
			if pos+size > len(data) {
				return addr, args, fmt.Errorf("osc: truncated blob")
			}
			b := make([]byte, size)
			copy(b, data[pos:pos+size])
			args = append(args, b)
			pos += size + pad(size)
		case 'T':
			args = append(args, true)
		case 'F':
			args = append(args, false)
		case 'N':
			args = append(args, nil)
		default:
			return addr, args, fmt.Errorf("osc: unsupported type tag %q", t)
		}
	}

	return addr, args, nil
}
