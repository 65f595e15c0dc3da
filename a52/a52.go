// Package a52 implements the A5/2 stream cipher: three majority-output
// LFSRs (R1, R2, R3) clocked under the control of a fourth register
// (R4) produce a 228-bit keystream from a 64-bit session key and a
// 22-bit frame counter. A5/2 is deliberately weaker than A5/1 — R4's
// own clocking is unconditional and its three clocking-control bits are
// exactly the majority function GWW exploits — but the construction is
// otherwise the same shape as a51.Cipher.
package a52

import (
	"github.com/go-a5/a5gww/a5"
	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/lfsr"
	"github.com/go-a5/a5gww/regs"
)

// Cipher holds one A5/2 session's state.
type Cipher struct {
	r1, r2, r3, r4 *lfsr.LFSR

	// initial holds the four registers' state immediately after the
	// force-to-1 step and before the 99-cycle warm-up. R4's entry is
	// the "R4 guess" the GWW attack in package gww enumerates:
	// capturing it here lets a caller that already knows R4 (e.g. the
	// attack's own test fixtures) skip the 2^17-candidate search.
	initial [4]bitvec.Bits

	send    bitvec.Bits
	receive bitvec.Bits
}

// New constructs an A5/2 cipher for the given 64-bit session key and
// 22-bit frame counter: key-mix, frame-mix, the four forced-to-1 bits,
// the 99-cycle majority warm-up and the 228-cycle keystream generation
// all run before New returns.
func New(key uint64, frameCounter uint32) (*Cipher, error) {
	if err := a5.CheckRange("frame_counter", uint64(frameCounter), regs.FrameCounterSize); err != nil {
		return nil, err
	}

	c := newCipher()
	c.clockVector(bitvec.FromUint64(regs.KeySize, key))
	c.clockVector(bitvec.FromUint64(regs.FrameCounterSize, uint64(frameCounter)))
	c.forceBits()
	c.snapshot()

	c.send, c.receive = c.runFromWarmup(false)
	return c, nil
}

// snapshot records the current register state into c.initial.
func (c *Cipher) snapshot() {
	c.initial = [4]bitvec.Bits{c.r1.Bits(), c.r2.Bits(), c.r3.Bits(), c.r4.Bits()}
}

// InitialRegisters returns the four registers' state as captured
// immediately after the force-to-1 step, before the 99-cycle
// warm-up. Only meaningful on a
// Cipher built by New; NewFromRegisters has no key/frame mix to
// snapshot and returns the zero value for all four.
func (c *Cipher) InitialRegisters() (r1, r2, r3, r4 bitvec.Bits) {
	return c.initial[0], c.initial[1], c.initial[2], c.initial[3]
}

// NewFromRegisters constructs an A5/2 cipher whose four registers start
// already loaded — skipping the key-mix, frame-mix and forced-bit steps
// entirely — and runs only the 99-cycle warm-up plus keystream
// generation. This is the oracle the GWW attack in package gww calls to
// verify a session-key guess against known keystream: the attack
// recovers register states directly and has no session key to mix in
// until after verification succeeds.
//
// If sendOnly is true, only the 114-bit send keystream is computed (the
// receive half is left zero-length); this matches what the attack
// needs and avoids computing 114 bits nothing will check.
func NewFromRegisters(r1, r2, r3, r4 bitvec.Bits, sendOnly bool) *Cipher {
	c := &Cipher{
		r1: lfsr.NewFromBits(regs.A52R1(), r1),
		r2: lfsr.NewFromBits(regs.A52R2(), r2),
		r3: lfsr.NewFromBits(regs.A52R3(), r3),
		r4: lfsr.NewFromBits(regs.A52R4(), r4),
	}
	c.send, c.receive = c.runFromWarmup(sendOnly)
	return c
}

func newCipher() *Cipher {
	return &Cipher{
		r1: lfsr.New(regs.A52R1()),
		r2: lfsr.New(regs.A52R2()),
		r3: lfsr.New(regs.A52R3()),
		r4: lfsr.New(regs.A52R4()),
	}
}

func (c *Cipher) clockVector(v bitvec.Bits) {
	for i := v.Len() - 1; i >= 0; i-- {
		bit := v.Get(i)
		c.r1.Clock(bit)
		c.r2.Clock(bit)
		c.r3.Clock(bit)
		c.r4.Clock(bit)
	}
}

func (c *Cipher) forceBits() {
	c.r1.SetBit(regs.ForceR1Bit, 1)
	c.r2.SetBit(regs.ForceR2Bit, 1)
	c.r3.SetBit(regs.ForceR3Bit, 1)
	c.r4.SetBit(regs.ForceR4Bit, 1)
}

func (c *Cipher) runFromWarmup(sendOnly bool) (send, receive bitvec.Bits) {
	c.clockMajority(regs.MajorityCyclesA52, false)
	send = c.clockMajority(regs.StreamKeySize, true)
	if sendOnly {
		return send, bitvec.Bits{}
	}
	receive = c.clockMajority(regs.StreamKeySize, true)
	return send, receive
}

// clockMajority runs limit cycles of R4-controlled clocking: R4 clocks
// every cycle; R1, R2 and R3 each clock only when their corresponding
// R4 clocking-control bit agrees with the majority of all three. If
// collect is true, each cycle's output bit (the XOR of R1/R2/R3's
// Output and GetMajority values) is recorded and returned.
func (c *Cipher) clockMajority(limit int, collect bool) bitvec.Bits {
	var out bitvec.Bits
	if collect {
		out = bitvec.New(limit)
	}
	for i := 0; i < limit; i++ {
		bits := c.r4.GetClockBits()
		m := lfsr.Majority(bits[0], bits[1], bits[2])
		if bits[0] == m {
			c.r1.Clock(0)
		}
		if bits[1] == m {
			c.r2.Clock(0)
		}
		if bits[2] == m {
			c.r3.Clock(0)
		}
		c.r4.Clock(0)
		if collect {
			bit := c.r1.Output() ^ c.r2.Output() ^ c.r3.Output()
			bit ^= c.r1.GetMajority() ^ c.r2.GetMajority() ^ c.r3.GetMajority()
			out.Set(i, bit)
		}
	}
	return out
}

// KeyStream returns the send and receive keystreams. Receive is
// zero-length if this Cipher was built with NewFromRegisters(sendOnly:
// true).
func (c *Cipher) KeyStream() (send, receive bitvec.Bits) {
	return c.send.Clone(), c.receive.Clone()
}

// VerifyOracle runs only the 99-cycle warm-up and the 114-bit send
// generation from four already-loaded registers, returning just the
// send keystream. This is the GWW attack's verification step: a
// candidate solution's three output registers plus the guessed R4 are
// checked against the target keystream without ever reconstructing a
// session key.
func VerifyOracle(r1, r2, r3, r4 bitvec.Bits) bitvec.Bits {
	send, _ := NewFromRegisters(r1, r2, r3, r4, true).KeyStream()
	return send
}

// Registers returns independent copies of the four registers' current
// state; on a Cipher returned by New or NewFromRegisters that is the
// state after keystream generation.
func (c *Cipher) Registers() (r1, r2, r3, r4 bitvec.Bits) {
	return c.r1.Bits(), c.r2.Bits(), c.r3.Bits(), c.r4.Bits()
}
