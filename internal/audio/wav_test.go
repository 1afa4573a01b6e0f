package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// wavBuilder assembles RIFF/WAVE byte streams for the reader tests.
type wavBuilder struct {
	chunks bytes.Buffer
}

func (w *wavBuilder) addChunk(id string, body []byte) {
	w.chunks.WriteString(id)
	binary.Write(&w.chunks, binary.LittleEndian, uint32(len(body)))
	w.chunks.Write(body)
	if len(body)%2 == 1 {
		w.chunks.WriteByte(0) // pad to word boundary
	}
}

func (w *wavBuilder) addFmt(format uint16, channels, rate, bitDepth int) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, format)
	binary.Write(&body, binary.LittleEndian, uint16(channels))
	binary.Write(&body, binary.LittleEndian, uint32(rate))
	byteRate := rate * channels * bitDepth / 8
	binary.Write(&body, binary.LittleEndian, uint32(byteRate))
	binary.Write(&body, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&body, binary.LittleEndian, uint16(bitDepth))
	w.addChunk("fmt ", body.Bytes())
}

// addFmtExtensible writes a WAVE_FORMAT_EXTENSIBLE fmt chunk wrapping the
// given real format code.
func (w *wavBuilder) addFmtExtensible(realFormat uint16, channels, rate, bitDepth int) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint16(0xFFFE))
	binary.Write(&body, binary.LittleEndian, uint16(channels))
	binary.Write(&body, binary.LittleEndian, uint32(rate))
	binary.Write(&body, binary.LittleEndian, uint32(rate*channels*bitDepth/8))
	binary.Write(&body, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&body, binary.LittleEndian, uint16(bitDepth))
	binary.Write(&body, binary.LittleEndian, uint16(22)) // extension size
	binary.Write(&body, binary.LittleEndian, uint16(bitDepth))
	binary.Write(&body, binary.LittleEndian, uint32(0)) // channel mask
	binary.Write(&body, binary.LittleEndian, realFormat)
	body.Write(make([]byte, 14)) // remainder of the sub-format GUID
	w.addChunk("fmt ", body.Bytes())
}

func (w *wavBuilder) bytes() []byte {
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+w.chunks.Len()))
	out.WriteString("WAVE")
	out.Write(w.chunks.Bytes())
	return out.Bytes()
}

func TestReadWAVPCM16Stereo(t *testing.T) {
	// Two frames: (16384, -16384), (32767, -32768).
	var data bytes.Buffer
	for _, v := range []int16{16384, -16384, 32767, -32768} {
		binary.Write(&data, binary.LittleEndian, v)
	}

	var b wavBuilder
	b.addFmt(wavFormatPCM, 2, 44100, 16)
	b.addChunk("data", data.Bytes())

	rec, err := ReadWAV(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}

	if rec.NumChannels() != 2 {
		t.Fatalf("channels = %d, want 2", rec.NumChannels())
	}
	if rec.SampleRate != 44100 {
		t.Errorf("rate = %d, want 44100", rec.SampleRate)
	}
	if rec.NumSamples() != 2 {
		t.Fatalf("samples = %d, want 2", rec.NumSamples())
	}

	wantLeft := []float32{0.5, 32767.0 / 32768.0}
	wantRight := []float32{-0.5, -1.0}
	for i := range wantLeft {
		if rec.Channels[0][i] != wantLeft[i] {
			t.Errorf("left[%d] = %v, want %v", i, rec.Channels[0][i], wantLeft[i])
		}
		if rec.Channels[1][i] != wantRight[i] {
			t.Errorf("right[%d] = %v, want %v", i, rec.Channels[1][i], wantRight[i])
		}
	}
}

func TestReadWAVFloat32(t *testing.T) {
	var data bytes.Buffer
	want := []float32{0.25, -0.75, 1.0}
	for _, v := range want {
		binary.Write(&data, binary.LittleEndian, math.Float32bits(v))
	}

	var b wavBuilder
	b.addFmt(wavFormatFloat, 1, 48000, 32)
	b.addChunk("data", data.Bytes())

	rec, err := ReadWAV(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	for i, v := range want {
		if rec.Channels[0][i] != v {
			t.Errorf("sample %d = %v, want %v", i, rec.Channels[0][i], v)
		}
	}
}

func TestReadWAVPCM24(t *testing.T) {
	// Full-scale negative, zero, and near-full-scale positive.
	data := []byte{
		0x00, 0x00, 0x80, // -8388608
		0x00, 0x00, 0x00, // 0
		0xFF, 0xFF, 0x7F, // 8388607
	}

	var b wavBuilder
	b.addFmt(wavFormatPCM, 1, 44100, 24)
	b.addChunk("data", data)

	rec, err := ReadWAV(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}

	want := []float32{-1.0, 0.0, float32(8388607.0 / 8388608.0)}
	for i, v := range want {
		if rec.Channels[0][i] != v {
			t.Errorf("sample %d = %v, want %v", i, rec.Channels[0][i], v)
		}
	}
}

func TestReadWAVExtensibleFormat(t *testing.T) {
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, int16(16384))

	var b wavBuilder
	b.addFmtExtensible(wavFormatPCM, 1, 44100, 16)
	b.addChunk("data", data.Bytes())

	rec, err := ReadWAV(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if rec.Channels[0][0] != 0.5 {
		t.Errorf("sample = %v, want 0.5", rec.Channels[0][0])
	}
}

func TestReadWAVSkipsUnknownChunks(t *testing.T) {
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, int16(16384))

	var b wavBuilder
	b.addFmt(wavFormatPCM, 1, 44100, 16)
	b.addChunk("LIST", []byte{1, 2, 3, 4, 5}) // odd size exercises padding
	b.addChunk("fact", []byte{0, 0, 0, 0})
	b.addChunk("data", data.Bytes())

	rec, err := ReadWAV(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if rec.NumSamples() != 1 {
		t.Errorf("samples = %d, want 1", rec.NumSamples())
	}
}

func TestReadWAVErrors(t *testing.T) {
	dataBeforeFmt := func() []byte {
		var b wavBuilder
		b.addChunk("data", []byte{0, 0})
		return b.bytes()
	}
	noData := func() []byte {
		var b wavBuilder
		b.addFmt(wavFormatPCM, 1, 44100, 16)
		return b.bytes()
	}
	badFormat := func() []byte {
		var b wavBuilder
		b.addFmt(85, 1, 44100, 16) // MP3 inside WAV
		b.addChunk("data", []byte{0, 0})
		return b.bytes()
	}
	tooManyChannels := func() []byte {
		var b wavBuilder
		b.addFmt(wavFormatPCM, 8, 44100, 16)
		b.addChunk("data", make([]byte, 16))
		return b.bytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"not riff", []byte("ID3\x03rubbish-that-is-long-enough")},
		{"data before fmt", dataBeforeFmt()},
		{"no data chunk", noData()},
		{"unsupported format", badFormat()},
		{"too many channels", tooManyChannels()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadWAV(bytes.NewReader(tt.data)); err == nil {
				t.Error("ReadWAV accepted malformed input")
			}
		})
	}
}
