package speech

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulawKnownValues(t *testing.T) {
	assert.Equal(t, byte(0xFF), LinearToMulaw(0))
	assert.Equal(t, int16(0), MulawToLinear(0xFF))
	assert.Equal(t, byte(0x80), LinearToMulaw(32767))
	assert.Equal(t, int16(32124), MulawToLinear(0x80))
	assert.Equal(t, int16(-32124), MulawToLinear(0x00))
}

func TestMulawRoundTrip(t *testing.T) {
	for x := -32000; x <= 32000; x += 37 {
		got := int(MulawToLinear(LinearToMulaw(int16(x))))
		abs := x
		if abs < 0 {
			abs = -abs
		}
		tolerance := (abs+mulawBias)/16 + 1
		diff := got - x
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			t.Fatalf("sample %d decoded as %d (diff %d > %d)", x, got, diff, tolerance)
		}
	}
}

func TestPCMConversions(t *testing.T) {
	pcm := make([]byte, 6)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(0))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(32767))
	v := int16(-32767)
	binary.LittleEndian.PutUint16(pcm[4:], uint16(v))

	mulaw := PCM16ToMulaw(append(pcm, 0x01))
	assert.Equal(t, []byte{0xFF, 0x80, 0x00}, mulaw)

	back := MulawToPCM16(mulaw)
	assert.Len(t, back, 6)
	assert.Equal(t, int16(32124), int16(binary.LittleEndian.Uint16(back[2:])))
}
