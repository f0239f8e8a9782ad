package services

import (
	"fmt"
	"math"
	"strings"
)

// PromptPayPayload encodes a Thai PromptPay QR payload for a payee and amount.
// MerchantName is carried for display purposes but is not part of the wire
// payload.
type PromptPayPayload struct {
	PromptPayID  string
	Amount       float64
	MerchantName string
}

// Encode builds the tag-length-value payload string. The trailing four hex
// characters are the CRC-16/CCITT-FALSE checksum of everything before them,
// including the 6304 trailer tag.
func (p PromptPayPayload) Encode() string {
	payload := "000201010211" + // header + static QR
		"29370016A000000677010111" + // PromptPay AID
		"0113" + padPromptPayID(p.PromptPayID) +
		"5802TH" +
		"5303764" + // currency THB
		"5406" + promptPayAmount(p.Amount)
	crc := crc16(payload + "6304")
	return payload + "6304" + strings.ToUpper(crc)
}

// padPromptPayID right-justifies the payee id to 13 characters with leading
// zeros. Malformed ids are passed through unvalidated.
func padPromptPayID(id string) string {
	if len(id) >= 13 {
		return id
	}
	return strings.Repeat("0", 13-len(id)) + id
}

// promptPayAmount formats the amount as six zero-padded digits of whole
// currency units. Fractional satang round half to even; callers depend on the
// exact checksum this produces, so ties like 400.50 must stay at 400.
func promptPayAmount(amount float64) string {
	return fmt.Sprintf("%06d", int64(math.RoundToEven(amount)))
}

// crc16 computes CRC-16/CCITT-FALSE: polynomial 0x1021, initial value 0xFFFF,
// no final XOR.
func crc16(data string) string {
	crc := uint16(0xFFFF)
	const poly = uint16(0x1021)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04x", crc)
}
