package compression

import (
	"bytes"
	"fmt"
	"io"
)

// maxRunLength is the longest run a single RLE8 group can describe: the two
// marker bytes plus up to 255 repetitions.
const maxRunLength = 257

// EncodeRLE8 run-length encodes `data`.
func EncodeRLE8(data []byte) []byte {
	output := make([]byte, 0, len(data)/2)

	for i := 0; i < len(data); {
		value := data[i]
		runLength := 1
		for i+runLength < len(data) && data[i+runLength] == value {
			runLength++
		}
		i += runLength

		for runLength >= 2 {
			groupLength := runLength
			if groupLength > maxRunLength {
				groupLength = maxRunLength
			}
			output = append(output, value, value, byte(groupLength-2))
			runLength -= groupLength
		}

		if runLength == 1 {
			output = append(output, value)
		}
	}
	return output
}

// DecodeRLE8 reverses [EncodeRLE8].
func DecodeRLE8(data []byte) ([]byte, error) {
	var output bytes.Buffer
	lastByte := -1

	for i := 0; i < len(data); i++ {
		value := data[i]
		if int(value) != lastByte {
			output.WriteByte(value)
			lastByte = int(value)
			continue
		}

		// Second byte of a pair; the next byte is the repeat count.
		if i+1 >= len(data) {
			return nil, fmt.Errorf(
				"%w: missing repeat count after two %#02x bytes at offset %d",
				io.ErrUnexpectedEOF,
				value,
				i,
			)
		}
		i++

		// We already wrote the first byte of the pair on the previous iteration,
		// hence +1 and not +2.
		output.Write(bytes.Repeat([]byte{value}, int(data[i])+1))

		// Reset so that a run of 258+ bytes doesn't treat the byte after the
		// count as the second half of another pair.
		lastByte = -1
	}
	return output.Bytes(), nil
}
