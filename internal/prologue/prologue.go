// Package prologue recovers a function's own frame size from its machine
// code when the compiler emitted no stack-usage record for it. Only the
// frame setup at the top of the function is inspected.
package prologue

import (
	"encoding/binary"

	"golang.org/x/arch/arm64/arm64asm"
)

// maxScan bounds how many instructions of the prologue are examined.
const maxScan = 16

// isSubSPImm detects SUB SP, SP, #imm (64-bit immediate form).
// Encoding: sf=1|op=1|S=0|100010|sh|imm12|Rn=11111|Rd=11111
// Mask: 0xFF8003FF, Value: 0xD10003FF
func isSubSPImm(raw uint32) (bytes int, ok bool) {
	if raw&0xFF8003FF != 0xD10003FF {
		return 0, false
	}
	imm := int((raw >> 10) & 0xFFF)
	if raw&(1<<22) != 0 {
		imm <<= 12
	}
	return imm, true
}

// isSTPPreIndexSP detects STP Xt1, Xt2, [SP, #-n]! (64-bit pre-index with
// writeback to SP).
// Encoding: opc=10|101|V=0|011|L=0|imm7|Rt2|Rn=11111|Rt
// Mask: 0xFFC003E0, Value: 0xA98003E0
func isSTPPreIndexSP(raw uint32) (bytes int, ok bool) {
	if raw&0xFFC003E0 != 0xA98003E0 {
		return 0, false
	}
	imm7 := int32(raw>>15) & 0x7F
	// Sign extend from 7 bits; the offset is scaled by 8.
	if imm7&(1<<6) != 0 {
		imm7 |= ^int32(0x7F)
	}
	if imm7 >= 0 {
		return 0, false
	}
	return int(-imm7) * 8, true
}

// isFlowChange detects instructions that end the prologue: RET, B, BL, BLR.
func isFlowChange(raw uint32) bool {
	if raw&0xFFFFFC1F == 0xD65F0000 { // RET
		return true
	}
	if raw&0x7C000000 == 0x14000000 { // B / BL
		return true
	}
	if raw&0xFFFFFC1F == 0xD63F0000 { // BLR
		return true
	}
	return false
}

// FrameSize scans the start of a function's code for stack reservations
// (SUB SP, SP, #imm and pre-indexed STP to SP) and returns their sum. The
// scan stops at the first control-flow change, the first undecodable word,
// or after maxScan instructions. ok is false when no reservation was seen.
func FrameSize(code []byte) (bytes int, ok bool) {
	n := len(code) / 4
	if n > maxScan {
		n = maxScan
	}
	total := 0
	for i := 0; i < n; i++ {
		raw := binary.LittleEndian.Uint32(code[i*4 : i*4+4])
		if _, err := arm64asm.Decode(code[i*4 : i*4+4]); err != nil {
			break
		}
		if isFlowChange(raw) {
			break
		}
		if b, ok := isSubSPImm(raw); ok {
			total += b
			continue
		}
		if b, ok := isSTPPreIndexSP(raw); ok {
			total += b
		}
	}
	return total, total > 0
}
