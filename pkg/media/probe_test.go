package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeImageDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	meta, err := Probe(bytes.NewReader(buf.Bytes()), "image/png", int64(buf.Len()))
	require.NoError(t, err)
	require.NotNil(t, meta.Dimensions)
	assert.Equal(t, "120x80", *meta.Dimensions)
	assert.Nil(t, meta.DurationSeconds)
}

func buildWAV(byteRate, dataLen uint32) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen)) //nolint:errcheck
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) //nolint:errcheck
	fmtBody := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtBody[0:2], 1)  // PCM
	binary.LittleEndian.PutUint16(fmtBody[2:4], 2)  // stereo
	binary.LittleEndian.PutUint32(fmtBody[4:8], 44100)
	binary.LittleEndian.PutUint32(fmtBody[8:12], byteRate)
	buf.Write(fmtBody)
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataLen) //nolint:errcheck
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestProbeWAVDuration(t *testing.T) {
	// 176400 bytes/s, 352800 bytes of samples -> 2 seconds.
	raw := buildWAV(176400, 352800)
	meta, err := Probe(bytes.NewReader(raw), "audio/wav", int64(len(raw)))
	require.NoError(t, err)
	require.NotNil(t, meta.DurationSeconds)
	assert.InDelta(t, 2.0, *meta.DurationSeconds, 0.01)
}

func TestProbeMP3Duration(t *testing.T) {
	// MPEG-1 Layer III header, 128 kbps, 44.1 kHz: ff fb 90 00.
	frame := []byte{0xff, 0xfb, 0x90, 0x00}
	payload := append(frame, make([]byte, 1024)...)
	// 16000 bytes at 128 kbps -> 1 second.
	meta, err := Probe(bytes.NewReader(payload), "audio/mpeg", 16000)
	require.NoError(t, err)
	require.NotNil(t, meta.DurationSeconds)
	assert.InDelta(t, 1.0, *meta.DurationSeconds, 0.01)
}

func TestProbeCorruptAssetFails(t *testing.T) {
	_, err := Probe(bytes.NewReader([]byte("not an image")), "image/png", 12)
	assert.Error(t, err)

	_, err = Probe(bytes.NewReader([]byte("junk")), "audio/wav", 4)
	assert.Error(t, err)
}
