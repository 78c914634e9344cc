package imageio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func encodeSmallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWithParametersInsertsTextChunkAfterIHDR(t *testing.T) {
	src := encodeSmallPNG(t)
	out, err := WithParameters(src, "Steps: 20, Sampler: Euler a")
	if err != nil {
		t.Fatal(err)
	}

	// The result must still decode as a PNG.
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output no longer decodes: %v", err)
	}

	// The chunk sits immediately after IHDR.
	ihdrEnd := 8 + 8 + 13 + 4
	length := binary.BigEndian.Uint32(out[ihdrEnd:])
	typ := string(out[ihdrEnd+4 : ihdrEnd+8])
	if typ != "tEXt" {
		t.Fatalf("chunk after IHDR is %q, want tEXt", typ)
	}
	payload := out[ihdrEnd+8 : ihdrEnd+8+int(length)]
	wantPayload := "parameters\x00Steps: 20, Sampler: Euler a"
	if string(payload) != wantPayload {
		t.Fatalf("payload %q, want %q", payload, wantPayload)
	}

	crc := crc32.NewIEEE()
	crc.Write([]byte("tEXt"))
	crc.Write(payload)
	got := binary.BigEndian.Uint32(out[ihdrEnd+8+int(length):])
	if got != crc.Sum32() {
		t.Fatalf("chunk CRC %08x, want %08x", got, crc.Sum32())
	}
}

func TestWithParametersEmptyTextIsNoop(t *testing.T) {
	src := encodeSmallPNG(t)
	out, err := WithParameters(src, "")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, src) {
		t.Fatal("empty text should leave the PNG unchanged")
	}
}

func TestWithParametersRejectsNonPNG(t *testing.T) {
	if _, err := WithParameters([]byte("definitely not a png"), "x"); err == nil {
		t.Fatal("expected error for non-PNG input")
	}
}

func TestStoreSaveWritesDatedPath(t *testing.T) {
	base := t.TempDir()
	s := NewStore(base)
	s.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	b64 := base64.StdEncoding.EncodeToString(encodeSmallPNG(t))
	path, n, err := s.Save(b64, "Seed: 100", 2)
	if err != nil {
		t.Fatal(err)
	}

	wantDir := filepath.Join(base, "2025-03-14")
	if filepath.Dir(path) != wantDir {
		t.Fatalf("saved into %s, want %s", filepath.Dir(path), wantDir)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "gen_") || !strings.HasSuffix(name, "_2.png") {
		t.Fatalf("unexpected file name %q", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(data)) != n {
		t.Fatalf("reported %d bytes, file has %d", n, len(data))
	}
	if !bytes.Contains(data, []byte("parameters\x00Seed: 100")) {
		t.Fatal("metadata chunk missing from saved file")
	}
}

func TestStoreSaveRejectsBadBase64(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, _, err := s.Save("!!not base64!!", "", 0); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
