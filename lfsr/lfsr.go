// Package lfsr implements the clock-controlled linear feedback shift
// register shared by A5/1 and A5/2.
//
// There is exactly one register type here, not a hierarchy: Go
// interfaces would be the wrong tool for two structurally-identical
// registers that differ only in which optional fields are populated.
// A5/1 registers configure ClockBits (a single position whose value
// feeds the external majority vote); A5/2 output registers configure
// MajorityBits instead (a nonlinear output contribution); A5/2's R4
// configures three ClockBits (it drives R1/R2/R3's clocking, not its
// own).
package lfsr

import "github.com/go-a5/a5gww/internal/bitvec"

// Config is the fixed, register-specific wiring: tap positions,
// optional clocking-bit positions and optional majority-function
// wiring. All positions are logical (position 0 names the bit most
// recently shifted in; see phys).
type Config struct {
	Length int
	Taps   []int

	// ClockBits are read by GetClockBits; A5/1 registers configure a
	// single position, A5/2's R4 configures three (one per controlled
	// register).
	ClockBits []int

	// MajorityBits and NegatedBit configure GetMajority for A5/2's
	// output registers (R1, R2, R3). Left empty/zero-value for R4 and
	// for A5/1 registers, neither of which has a majority function.
	MajorityBits [2]int
	NegatedBit   int
	HasMajority  bool
}

// LFSR is a clock-controlled linear feedback shift register of fixed
// length. The zero value is not meaningful; construct with New.
type LFSR struct {
	cfg Config
	reg bitvec.Bits
}

// New constructs an LFSR with all bits initially zero.
func New(cfg Config) *LFSR {
	return &LFSR{cfg: cfg, reg: bitvec.New(cfg.Length)}
}

// NewFromUint64 constructs an LFSR whose initial state is the low
// cfg.Length bits of v.
func NewFromUint64(cfg Config, v uint64) *LFSR {
	return &LFSR{cfg: cfg, reg: bitvec.FromUint64(cfg.Length, v)}
}

// NewFromBits constructs an LFSR whose initial state is a copy of init.
func NewFromBits(cfg Config, init bitvec.Bits) *LFSR {
	if init.Len() != cfg.Length {
		panic("lfsr: NewFromBits: length mismatch")
	}
	return &LFSR{cfg: cfg, reg: init.Clone()}
}

// Clone returns an independent copy of r.
func (r *LFSR) Clone() *LFSR {
	return &LFSR{cfg: r.cfg, reg: r.reg.Clone()}
}

// Length returns the register's bit length.
func (r *LFSR) Length() int { return r.cfg.Length }

// Bits returns the register's current state. The returned value shares
// no storage with r; mutating it does not affect r.
func (r *LFSR) Bits() bitvec.Bits { return r.reg.Clone() }

// phys converts a logical tap/clock/majority position (0 = the newest,
// just-shifted-in bit) to the underlying bit vector's physical index
// (0 = most significant / leftmost): logical position p lives at
// physical index Length-1-p. All of Config's positions (Taps,
// ClockBits, MajorityBits, NegatedBit) and every exported accessor's p
// argument are in this logical convention; only this function,
// physTaps, XorTaps and Output (which reads physical index 0) see the
// physical index.
func (r *LFSR) phys(p int) int { return r.cfg.Length - 1 - p }

func (r *LFSR) physTaps(logical []int) []int {
	out := make([]int, len(logical))
	for i, p := range logical {
		out[i] = r.phys(p)
	}
	return out
}

// Clock advances the register by one cycle: the feedback bit is the XOR
// of the tapped bits (read before the shift) optionally XORed with an
// externally supplied keyBit (used to clock a session key or frame
// counter bit into the register), then the register shifts left and
// the feedback becomes the new rightmost (physical index Length-1) bit.
func (r *LFSR) Clock(keyBit int) {
	feedback := keyBit & 1
	feedback ^= r.reg.XorTaps(r.physTaps(r.cfg.Taps))
	r.reg.ShiftLeftIn(feedback)
}

// GetClockBits returns the bits at the configured clocking positions,
// in the order they were configured.
func (r *LFSR) GetClockBits() []int {
	out := make([]int, len(r.cfg.ClockBits))
	for i, p := range r.cfg.ClockBits {
		out[i] = r.reg.Get(r.phys(p))
	}
	return out
}

// GetBit returns the bit at logical position p.
func (r *LFSR) GetBit(p int) int { return r.reg.Get(r.phys(p)) }

// SetBit sets the bit at logical position p to v (0 or 1).
func (r *LFSR) SetBit(p int, v int) { r.reg.Set(r.phys(p), v) }

// Output returns the register's current output contribution: the bit at
// logical position Length-1, i.e. physical index 0 — the bit about to
// be discarded on the next Clock. A5/1's keystream bit is the XOR of
// the three registers' Output values.
func (r *LFSR) Output() int { return r.reg.Get(0) }

// GetMajority evaluates the register's nonlinear output contribution:
// with a = NOT bit(NegatedBit), b = bit(MajorityBits[0]),
// c = bit(MajorityBits[1]), returns maj(a,b,c) = ab ⊕ ac ⊕ bc.
func (r *LFSR) GetMajority() int {
	if !r.cfg.HasMajority {
		panic("lfsr: GetMajority: register has no majority function")
	}
	a := r.reg.Get(r.phys(r.cfg.NegatedBit)) ^ 1
	b := r.reg.Get(r.phys(r.cfg.MajorityBits[0]))
	c := r.reg.Get(r.phys(r.cfg.MajorityBits[1]))
	return Majority(a, b, c)
}

// Majority returns the most common bit among a, b and c: ab ⊕ ac ⊕ bc.
func Majority(a, b, c int) int {
	return (a & b) ^ (a & c) ^ (b & c)
}

// ReverseClock inverts a single forward Clock step: given the register
// state produced by clocking some predecessor state with keyBit, and
// the tap set rewritten for the shifted state (see ReverseTaps),
// recovers that predecessor state in place. The inversion is exact for
// any state: every tap the forward step read is still in the window
// after the shift, except the discarded bit, which is what is solved
// for.
func (r *LFSR) ReverseClock(keyBit int, reverseTaps []int) {
	last := keyBit & 1
	last ^= r.reg.XorTaps(r.physTaps(reverseTaps))
	r.reg.ShiftRightIn(last)
}

// ReverseTaps returns the tap set ReverseClock needs: each tap
// position advanced by one, modulo the register length. The forward
// feedback equation reads its taps before the shift; after the shift
// every one of those bits sits one logical position higher, and a tap
// at Length-1 — the bit being recovered — wraps to logical position 0,
// where the feedback bit itself now lives.
func ReverseTaps(cfg Config) []int {
	out := make([]int, len(cfg.Taps))
	for i, t := range cfg.Taps {
		out[i] = (t + 1) % cfg.Length
	}
	return out
}
