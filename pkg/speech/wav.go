package speech

import (
	"bytes"
	"encoding/binary"
)

// StripWAVHeader returns the payload of the "data" chunk when audio is a
// RIFF/WAVE file and audio unchanged otherwise.
func StripWAVHeader(audio []byte) []byte {
	if len(audio) < 12 || !bytes.Equal(audio[0:4], []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return audio
	}
	pos := 12
	for pos+8 <= len(audio) {
		id := audio[pos : pos+4]
		size := int(binary.LittleEndian.Uint32(audio[pos+4 : pos+8]))
		body := pos + 8
		if bytes.Equal(id, []byte("data")) {
			end := body + size
			if end > len(audio) || size == 0 {
				end = len(audio)
			}
			return audio[body:end]
		}
		// chunks are word aligned
		pos = body + size + size%2
	}
	return audio[len(audio):]
}
