package imageio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// WithParameters returns the PNG with a tEXt chunk carrying the generation
// metadata under the "parameters" key, inserted right after IHDR. This is the
// same chunk the WebUI writes, so downstream tools read both the same way.
// An empty text returns the input unchanged.
func WithParameters(data []byte, text string) ([]byte, error) {
	if text == "" {
		return data, nil
	}
	if len(data) < len(pngSignature)+25 || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, fmt.Errorf("not a PNG")
	}

	// IHDR is mandatory and always first: length(4) + "IHDR"(4) + 13 + crc(4).
	ihdrEnd := len(pngSignature) + 8 + 13 + 4
	ihdrLen := binary.BigEndian.Uint32(data[len(pngSignature):])
	if ihdrLen != 13 || string(data[len(pngSignature)+4:len(pngSignature)+8]) != "IHDR" {
		return nil, fmt.Errorf("malformed PNG: missing IHDR")
	}

	chunk := textChunk("parameters", text)
	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, data[ihdrEnd:]...)
	return out, nil
}

// textChunk assembles one tEXt chunk: keyword, NUL, Latin-1 text.
func textChunk(keyword, text string) []byte {
	payload := make([]byte, 0, len(keyword)+1+len(text))
	payload = append(payload, keyword...)
	payload = append(payload, 0)
	payload = append(payload, text...)

	var buf bytes.Buffer
	var lenB [4]byte
	binary.BigEndian.PutUint32(lenB[:], uint32(len(payload)))
	buf.Write(lenB[:])
	buf.WriteString("tEXt")
	buf.Write(payload)

	crc := crc32.NewIEEE()
	crc.Write([]byte("tEXt"))
	crc.Write(payload)
	var crcB [4]byte
	binary.BigEndian.PutUint32(crcB[:], crc.Sum32())
	buf.Write(crcB[:])
	return buf.Bytes()
}
