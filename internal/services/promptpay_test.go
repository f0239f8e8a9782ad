package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refCRC16 recomputes CRC-16/CCITT-FALSE bitwise so the test does not share
// the implementation under test.
func refCRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range []byte(data) {
		for bit := 0; bit < 8; bit++ {
			msb := crc&0x8000 != 0
			if b&(0x80>>bit) != 0 {
				msb = !msb
			}
			crc <<= 1
			if msb {
				crc ^= 0x1021
			}
		}
	}
	return crc
}

func TestPromptPayEncodeStructure(t *testing.T) {
	payload := PromptPayPayload{PromptPayID: "0812345678", Amount: 400}.Encode()

	assert.True(t, strings.HasPrefix(payload, "000201010211"), "payload = %s", payload)
	assert.Contains(t, payload, "29370016A000000677010111")
	assert.Contains(t, payload, "01130000812345678")
	assert.Contains(t, payload, "5802TH")
	assert.Contains(t, payload, "5303764")
	assert.Contains(t, payload, "5406000400")

	crcIdx := strings.LastIndex(payload, "6304")
	require.NotEqual(t, -1, crcIdx)
	require.Len(t, payload[crcIdx+4:], 4)
}

func TestPromptPayChecksum(t *testing.T) {
	payload := PromptPayPayload{PromptPayID: "0899999999", Amount: 1290}.Encode()

	body := payload[:len(payload)-4]
	got := payload[len(payload)-4:]

	want := strings.ToUpper(crcHex(refCRC16(body)))
	assert.Equal(t, want, got)
	assert.Equal(t, strings.ToUpper(got), got, "checksum must be uppercase hex")
}

func crcHex(v uint16) string {
	const digits = "0123456789abcdef"
	return string([]byte{
		digits[v>>12&0xF], digits[v>>8&0xF], digits[v>>4&0xF], digits[v&0xF],
	})
}

func TestPadPromptPayID(t *testing.T) {
	assert.Equal(t, "0000812345678", padPromptPayID("0812345678"))
	assert.Equal(t, "1234567890123", padPromptPayID("1234567890123"))
	// Longer ids pass through untouched.
	assert.Equal(t, "12345678901234", padPromptPayID("12345678901234"))
}

func TestPromptPayAmountWholeUnits(t *testing.T) {
	assert.Equal(t, "000400", promptPayAmount(400))
	assert.Equal(t, "000400", promptPayAmount(400.49))
	assert.Equal(t, "000401", promptPayAmount(400.51))
	assert.Equal(t, "001290", promptPayAmount(1290))
	assert.Equal(t, "000000", promptPayAmount(0))

	// Half-unit ties round to even, keeping stored checksums stable.
	assert.Equal(t, "000400", promptPayAmount(400.50))
	assert.Equal(t, "000402", promptPayAmount(401.50))
}
