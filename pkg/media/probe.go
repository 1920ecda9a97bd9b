package media

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"
)

// Metadata holds the optional attributes extracted from an uploaded asset.
// Fields are nil when extraction was not possible.
type Metadata struct {
	Dimensions      *string
	DurationSeconds *float64
}

// Probe inspects the asset and extracts type-specific metadata. Extraction is
// best-effort: callers treat an error as "metadata absent", never as a failed
// upload.
func Probe(r io.ReadSeeker, contentType string, size int64) (*Metadata, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind asset: %w", err)
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return probeImage(r)
	case contentType == "audio/wav" || contentType == "audio/x-wav" || contentType == "audio/wave":
		return probeWAV(r)
	case contentType == "audio/mpeg" || contentType == "audio/mp3":
		return probeMP3(r, size)
	default:
		return nil, fmt.Errorf("no prober for %s", contentType)
	}
}

func probeImage(r io.Reader) (*Metadata, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	dims := fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	return &Metadata{Dimensions: &dims}, nil
}

// probeWAV walks the RIFF chunk list for the fmt and data chunks and derives
// duration as data length over byte rate.
func probeWAV(r io.Reader) (*Metadata, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a wav file")
	}

	var byteRate uint32
	var dataLen uint32
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			break
		}
		id := string(chunk[0:4])
		length := binary.LittleEndian.Uint32(chunk[4:8])
		switch id {
		case "fmt ":
			if length < 16 {
				return nil, fmt.Errorf("short fmt chunk")
			}
			var fmtBody [16]byte
			if _, err := io.ReadFull(r, fmtBody[:]); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			byteRate = binary.LittleEndian.Uint32(fmtBody[8:12])
			if skip := int64(length) - 16; skip > 0 {
				if _, err := io.CopyN(io.Discard, r, skip); err != nil {
					break
				}
			}
		case "data":
			dataLen = length
		default:
			if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
				break
			}
		}
		if byteRate > 0 && dataLen > 0 {
			break
		}
	}

	if byteRate == 0 || dataLen == 0 {
		return nil, fmt.Errorf("wav chunks incomplete")
	}
	duration := float64(dataLen) / float64(byteRate)
	return &Metadata{DurationSeconds: &duration}, nil
}

var mp3Bitrates = [...]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}

// probeMP3 locates the first MPEG-1 Layer III frame header and estimates
// duration from the frame bitrate, assuming constant bitrate. VBR files get an
// inaccurate estimate, which is acceptable for a best-effort probe.
func probeMP3(r io.Reader, size int64) (*Metadata, error) {
	buf := make([]byte, 16*1024)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read mp3 head: %w", err)
	}
	buf = buf[:n]

	offset := 0
	// Skip a leading ID3v2 tag when present.
	if len(buf) >= 10 && string(buf[0:3]) == "ID3" {
		tagLen := int(buf[6]&0x7f)<<21 | int(buf[7]&0x7f)<<14 | int(buf[8]&0x7f)<<7 | int(buf[9]&0x7f)
		offset = 10 + tagLen
	}

	for i := offset; i+4 <= len(buf); i++ {
		if buf[i] != 0xff || buf[i+1]&0xe0 != 0xe0 {
			continue
		}
		// MPEG-1 Layer III only.
		if buf[i+1]&0x1e != 0x1a {
			continue
		}
		bitrateIdx := int(buf[i+2] >> 4)
		if bitrateIdx == 0 || bitrateIdx >= len(mp3Bitrates) {
			continue
		}
		bitrate := mp3Bitrates[bitrateIdx] * 1000
		audioBytes := size - int64(i)
		duration := float64(audioBytes*8) / float64(bitrate)
		return &Metadata{DurationSeconds: &duration}, nil
	}

	return nil, fmt.Errorf("no mp3 frame header found")
}
