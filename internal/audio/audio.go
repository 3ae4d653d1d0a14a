// Package audio decodes the generative API's inline speech payloads into
// playable audio. Payloads are base64-encoded signed 16-bit little-endian
// PCM at a fixed sample rate.
package audio

import (
	"encoding/base64"
	"encoding/binary"

	apperrors "github.com/replyhq/reply/pkg/errors"
)

// SampleRate is the fixed rate of the API's speech payloads.
const SampleRate = 24000

// NumChannels is the channel count of the API's speech payloads.
const NumChannels = 1

// DecodeBase64PCM decodes a base64 payload into raw PCM bytes.
func DecodeBase64PCM(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.BadResponse("audio payload is not valid base64", err)
	}
	return data, nil
}

// Samples converts raw 16-bit little-endian PCM into normalized float32
// samples in [-1, 1). A trailing odd byte is rejected.
func Samples(pcm []byte) ([]float32, error) {
	if len(pcm)%2 != 0 {
		return nil, apperrors.BadResponse("PCM payload has odd length", nil)
	}
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// WAV wraps raw PCM bytes in a RIFF/WAVE container so the client can play
// them directly.
func WAV(pcm []byte, sampleRate, numChannels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(numChannels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}
