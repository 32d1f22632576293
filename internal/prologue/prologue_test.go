package prologue

import (
	"encoding/binary"
	"testing"
)

func words(ws ...uint32) []byte {
	buf := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

const (
	stpPre16 = 0xA9BF7BFD // STP X29, X30, [SP, #-16]!
	subSP32  = 0xD10083FF // SUB SP, SP, #32
	movX0    = 0xD2800000 // MOV X0, #0
	ret      = 0xD65F03C0 // RET
	bl       = 0x94000001 // BL .+4
)

func TestIsSubSPImm(t *testing.T) {
	b, ok := isSubSPImm(subSP32)
	if !ok || b != 32 {
		t.Errorf("isSubSPImm = %d, %v; want 32, true", b, ok)
	}
	// SUB X1, X1, #32 is not a stack reservation.
	if _, ok := isSubSPImm(0xD1008021); ok {
		t.Error("isSubSPImm matched a non-SP SUB")
	}
}

func TestIsSTPPreIndexSP(t *testing.T) {
	b, ok := isSTPPreIndexSP(stpPre16)
	if !ok || b != 16 {
		t.Errorf("isSTPPreIndexSP = %d, %v; want 16, true", b, ok)
	}
	if _, ok := isSTPPreIndexSP(ret); ok {
		t.Error("isSTPPreIndexSP matched RET")
	}
}

func TestFrameSize(t *testing.T) {
	code := words(stpPre16, subSP32, movX0, ret)
	b, ok := FrameSize(code)
	if !ok || b != 48 {
		t.Errorf("FrameSize = %d, %v; want 48, true", b, ok)
	}
}

func TestFrameSizeStopsAtCall(t *testing.T) {
	// A reservation after the first call belongs to another context.
	code := words(subSP32, bl, subSP32)
	b, ok := FrameSize(code)
	if !ok || b != 32 {
		t.Errorf("FrameSize = %d, %v; want 32, true", b, ok)
	}
}

func TestFrameSizeNone(t *testing.T) {
	code := words(movX0, ret)
	if b, ok := FrameSize(code); ok {
		t.Errorf("FrameSize = %d, %v; want ok=false", b, ok)
	}
}
