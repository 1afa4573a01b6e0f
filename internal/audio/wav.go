package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WAV format codes we accept. Compressed formats are out of scope: the
// analysis engine is fed decoded PCM only.
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// Normalisation divisors for integer PCM.
const (
	scale16 = 32768.0
	scale24 = 8388608.0
	scale32 = 2147483648.0
)

// ReadWAVFile reads a RIFF/WAVE file holding 16/24/32-bit integer or 32-bit
// float PCM and returns it de-interleaved as a Recording.
func ReadWAVFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	rec, err := ReadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rec, nil
}

// ReadWAV parses WAV data from r. The reader is consumed to the end of the
// data chunk.
func ReadWAV(r io.Reader) (*Recording, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("reading RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		haveFmt    bool
	)

	// Walk chunks until the data chunk. fmt must precede data.
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("no data chunk found")
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		chunkID := string(hdr[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(hdr[4:8]))

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			// WAVE_FORMAT_EXTENSIBLE carries the real format in the
			// first two bytes of the extension GUID.
			if format == wavFormatExtensible && chunkSize >= 26 {
				format = binary.LittleEndian.Uint16(body[24:26])
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			return readSamples(r, format, channels, sampleRate, bitDepth, chunkSize)

		default:
			// Skip unrelated chunks (LIST, fact, cue, ...). Chunks are
			// word-aligned with a pad byte on odd sizes.
			skip := int64(chunkSize)
			if chunkSize%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skipping %s chunk: %w", chunkID, err)
			}
		}
	}
}

// readSamples decodes and de-interleaves the data chunk payload.
func readSamples(r io.Reader, format uint16, channels, sampleRate, bitDepth, dataSize int) (*Recording, error) {
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	bytesPerSample := bitDepth / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("invalid bit depth: %d", bitDepth)
	}
	frameSize := bytesPerSample * channels
	numFrames := dataSize / frameSize

	decode, err := sampleDecoder(format, bitDepth)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, dataSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading sample data: %w", err)
	}

	rec := &Recording{
		Channels:   make([][]float32, channels),
		SampleRate: sampleRate,
	}
	for ch := range rec.Channels {
		rec.Channels[ch] = make([]float32, numFrames)
	}

	for frame := 0; frame < numFrames; frame++ {
		base := frame * frameSize
		for ch := 0; ch < channels; ch++ {
			off := base + ch*bytesPerSample
			rec.Channels[ch][frame] = decode(raw[off : off+bytesPerSample])
		}
	}

	return rec, nil
}

// sampleDecoder returns a function converting one little-endian sample to a
// normalised float32.
func sampleDecoder(format uint16, bitDepth int) (func([]byte) float32, error) {
	switch {
	case format == wavFormatPCM && bitDepth == 16:
		return func(b []byte) float32 {
			return float32(int16(binary.LittleEndian.Uint16(b))) / scale16
		}, nil

	case format == wavFormatPCM && bitDepth == 24:
		return func(b []byte) float32 {
			// Sign-extend the 24-bit value through the top of an int32.
			v := int32(uint32(b[0])|uint32(b[1])<<8|uint32(b[2])<<16) << 8 >> 8
			return float32(float64(v) / scale24)
		}, nil

	case format == wavFormatPCM && bitDepth == 32:
		return func(b []byte) float32 {
			return float32(float64(int32(binary.LittleEndian.Uint32(b))) / scale32)
		}, nil

	case format == wavFormatFloat && bitDepth == 32:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}, nil
	}
	return nil, fmt.Errorf("unsupported WAV format %d with %d-bit samples", format, bitDepth)
}
