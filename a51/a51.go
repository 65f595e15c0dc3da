// Package a51 implements the A5/1 stream cipher: three majority-clocked
// LFSRs produce a 228-bit keystream (114 bits each for the uplink and
// downlink directions) from a 64-bit session key and a 22-bit frame
// counter.
package a51

import (
	"github.com/go-a5/a5gww/a5"
	"github.com/go-a5/a5gww/internal/bitvec"
	"github.com/go-a5/a5gww/lfsr"
	"github.com/go-a5/a5gww/regs"
)

// Cipher holds one A5/1 session's state: the three registers, the
// loaded key and frame counter, and the two 114-bit keystream halves
// New generates.
type Cipher struct {
	r1, r2, r3 *lfsr.LFSR

	key          uint64
	frameCounter uint32

	send    bitvec.Bits
	receive bitvec.Bits
}

// New constructs an A5/1 cipher for the given 64-bit session key and
// 22-bit frame counter, then runs the key-mix, frame-mix and majority
// warm-up and generates the send/receive keystreams. It returns a
// *a5.DomainError if frameCounter does not fit in 22 bits.
func New(key uint64, frameCounter uint32) (*Cipher, error) {
	if err := a5.CheckRange("frame_counter", uint64(frameCounter), regs.FrameCounterSize); err != nil {
		return nil, err
	}

	c := &Cipher{
		r1:           lfsr.New(regs.A51R1()),
		r2:           lfsr.New(regs.A51R2()),
		r3:           lfsr.New(regs.A51R3()),
		key:          key,
		frameCounter: frameCounter,
	}

	c.clockVector(bitvec.FromUint64(regs.KeySize, key))
	c.clockVector(bitvec.FromUint64(regs.FrameCounterSize, uint64(frameCounter)))
	c.clockMajority(regs.MajorityCyclesA51, false)

	c.send = c.clockMajority(regs.StreamKeySize, true)
	c.receive = c.clockMajority(regs.StreamKeySize, true)
	return c, nil
}

// clockVector clocks all three registers once per bit of v, bit
// Length()-1 down to 0 (least-significant-first), XORing the bit into
// each register's feedback.
func (c *Cipher) clockVector(v bitvec.Bits) {
	for i := v.Len() - 1; i >= 0; i-- {
		bit := v.Get(i)
		c.r1.Clock(bit)
		c.r2.Clock(bit)
		c.r3.Clock(bit)
	}
}

// clockMajority runs limit majority-clocked cycles: each register
// advances only when its clocking bit agrees with the majority of the
// three clocking bits. If collect is true, the XOR of the three
// registers' output bits is recorded at each cycle and returned;
// otherwise the cycles are a warm-up with no observable output.
func (c *Cipher) clockMajority(limit int, collect bool) bitvec.Bits {
	var out bitvec.Bits
	if collect {
		out = bitvec.New(limit)
	}
	for i := 0; i < limit; i++ {
		b1 := c.r1.GetClockBits()[0]
		b2 := c.r2.GetClockBits()[0]
		b3 := c.r3.GetClockBits()[0]
		m := lfsr.Majority(b1, b2, b3)
		if b1 == m {
			c.r1.Clock(0)
		}
		if b2 == m {
			c.r2.Clock(0)
		}
		if b3 == m {
			c.r3.Clock(0)
		}
		if collect {
			out.Set(i, c.r1.Output()^c.r2.Output()^c.r3.Output())
		}
	}
	return out
}

// KeyStream returns the send and receive keystreams, each 114 bits.
func (c *Cipher) KeyStream() (send, receive bitvec.Bits) {
	return c.send.Clone(), c.receive.Clone()
}
