package a52

import (
	"math/big"
	"testing"

	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/regs"
)

// The known-answer vector's key/frame counter were only exercised
// against a 120-bit, right-zero-padded rendering of the 114-bit
// keystream halves (padding to a whole number of bytes) — which is
// exactly what bitvec.Bits.Bytes produces, so SetBytes applies directly
// with no extra shifting.
func TestKnownAnswer(t *testing.T) {
	const key = 0xfffffffffffffc00
	const frameCounter = 0x21

	c, err := New(key, frameCounter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	send, receive := c.KeyStream()

	wantSend, _ := new(big.Int).SetString("f4512cac13593764460b722dadd500", 16)
	wantReceive, _ := new(big.Int).SetString("4800d4328e16a14dcd7b9722265100", 16)

	if got := new(big.Int).SetBytes(send.Bytes()); got.Cmp(wantSend) != 0 {
		t.Fatalf("send key = %x, want %x", got, wantSend)
	}
	if got := new(big.Int).SetBytes(receive.Bytes()); got.Cmp(wantReceive) != 0 {
		t.Fatalf("receive key = %x, want %x", got, wantReceive)
	}
}

func TestFrameCounterOutOfRange(t *testing.T) {
	if _, err := New(0, 1<<regs.FrameCounterSize); err == nil {
		t.Fatal("expected a DomainError for an out-of-range frame counter")
	}
}

func TestSendOnlyOracleMatchesFullRun(t *testing.T) {
	const key = 0x0123456789abcdef
	const frameCounter = 7

	full, err := New(key, frameCounter)
	if err != nil {
		t.Fatal(err)
	}
	fullSend, _ := full.KeyStream()

	// Rebuild the same run from scratch, but stop at send-only via the
	// register-preloaded oracle entry point: since NewFromRegisters
	// skips key-mix/frame-mix/force-bits, replay them here on a fresh
	// cipher, run it up to (but not through) the warm-up, and hand its
	// registers to NewFromRegisters.
	pre := newCipher()
	pre.clockVector(bitvec.FromUint64(regs.KeySize, key))
	pre.clockVector(bitvec.FromUint64(regs.FrameCounterSize, frameCounter))
	pre.forceBits()
	r1, r2, r3, r4 := pre.Registers()

	oracle := NewFromRegisters(r1, r2, r3, r4, true)
	oracleSend, oracleReceive := oracle.KeyStream()

	if !oracleSend.Equal(fullSend) {
		t.Fatalf("oracle send keystream = %v, want %v", oracleSend, fullSend)
	}
	if oracleReceive.Len() != 0 {
		t.Fatalf("sendOnly oracle returned a non-empty receive keystream (len %d)", oracleReceive.Len())
	}
}

// TestForceBitInvariant: after key-mix, frame-mix and the force-to-1
// step, R1[15], R2[16], R3[18] and R4[10] must all read 1, regardless
// of key/frame counter.
func TestForceBitInvariant(t *testing.T) {
	const key = 0x5555555555555555
	const frameCounter = 0x2aaaaa

	c := newCipher()
	c.clockVector(bitvec.FromUint64(regs.KeySize, key))
	c.clockVector(bitvec.FromUint64(regs.FrameCounterSize, frameCounter))
	c.forceBits()

	if got := c.r1.GetBit(regs.ForceR1Bit); got != 1 {
		t.Fatalf("R1[%d] = %d, want 1", regs.ForceR1Bit, got)
	}
	if got := c.r2.GetBit(regs.ForceR2Bit); got != 1 {
		t.Fatalf("R2[%d] = %d, want 1", regs.ForceR2Bit, got)
	}
	if got := c.r3.GetBit(regs.ForceR3Bit); got != 1 {
		t.Fatalf("R3[%d] = %d, want 1", regs.ForceR3Bit, got)
	}
	if got := c.r4.GetBit(regs.ForceR4Bit); got != 1 {
		t.Fatalf("R4[%d] = %d, want 1", regs.ForceR4Bit, got)
	}
}
