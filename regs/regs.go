// Package regs holds the concrete register geometry shared by a51, a52
// and gww: register lengths, tap positions, clocking-bit and majority-
// bit positions, and the handful of named sizes (key, frame counter,
// keystream) that appear throughout the cipher definitions. Centralizing
// them here means a51, a52 and gww all clock the same registers the
// same way rather than each hard-coding their own copy of the table.
package regs

import "github.com/go-a5/a5gww/lfsr"

// Fixed sizes.
const (
	KeySize          = 64  // session key, bits
	FrameCounterSize = 22  // frame counter, bits
	StreamKeySize    = 114 // one keystream half (send or receive), bits
	KeyStreamSize    = 2 * StreamKeySize

	// FrameCounterDifference is the attack precondition: f1 XOR f2 must
	// equal this value (bit 11 is the one bit GWW requires to differ).
	FrameCounterDifference = 1 << 11

	MajorityCyclesA51 = 100 // warm-up cycles before A5/1 output begins
	MajorityCyclesA52 = 99  // warm-up cycles before A5/2 output begins

	R1Size = 19
	R2Size = 22
	R3Size = 23
	R4Size = 17
)

// Logical tap positions.
var (
	R1Taps = []int{13, 16, 17, 18}
	R2Taps = []int{20, 21}
	R3Taps = []int{7, 20, 21, 22}
	R4Taps = []int{11, 16}
)

// A5/1 clocking-bit positions (one per register).
const (
	R1ClockBitA51 = 8
	R2ClockBitA51 = 10
	R3ClockBitA51 = 10
)

// A5/2 majority-bit positions: NegatedBit is negated, the other two
// are not.
const (
	R1NegatedBit = 14
	R1Majority0  = 12
	R1Majority1  = 15

	R2NegatedBit = 16
	R2Majority0  = 9
	R2Majority1  = 13

	R3NegatedBit = 13
	R3Majority0  = 16
	R3Majority1  = 18
)

// Force-to-1 bit positions applied after key+frame loading in A5/2.
const (
	ForceR1Bit = 15
	ForceR2Bit = 16
	ForceR3Bit = 18
	ForceR4Bit = 10
)

// R4's clocking-control bit positions: bit 10 controls R1, bit 3
// controls R2 and bit 7 controls R3. The majority vote each cycle is
// taken over the same three bits, so GetClockBits reads them in this
// (R1, R2, R3) order.
const (
	R4ClockBitForR1 = 10
	R4ClockBitForR2 = 3
	R4ClockBitForR3 = 7
)

var r4ClockBits = []int{R4ClockBitForR1, R4ClockBitForR2, R4ClockBitForR3}

// A51R1, A51R2, A51R3 are the A5/1 register configurations: tapped,
// clock-bit driven, no majority function.
func A51R1() lfsr.Config {
	return lfsr.Config{Length: R1Size, Taps: R1Taps, ClockBits: []int{R1ClockBitA51}}
}

func A51R2() lfsr.Config {
	return lfsr.Config{Length: R2Size, Taps: R2Taps, ClockBits: []int{R2ClockBitA51}}
}

func A51R3() lfsr.Config {
	return lfsr.Config{Length: R3Size, Taps: R3Taps, ClockBits: []int{R3ClockBitA51}}
}

// A52R1, A52R2, A52R3 are the A5/2 output register configurations:
// tapped, majority-function driven; clocking is externally controlled
// by R4 so no ClockBits of their own.
func A52R1() lfsr.Config {
	return lfsr.Config{
		Length: R1Size, Taps: R1Taps,
		HasMajority: true, NegatedBit: R1NegatedBit,
		MajorityBits: [2]int{R1Majority0, R1Majority1},
	}
}

func A52R2() lfsr.Config {
	return lfsr.Config{
		Length: R2Size, Taps: R2Taps,
		HasMajority: true, NegatedBit: R2NegatedBit,
		MajorityBits: [2]int{R2Majority0, R2Majority1},
	}
}

func A52R3() lfsr.Config {
	return lfsr.Config{
		Length: R3Size, Taps: R3Taps,
		HasMajority: true, NegatedBit: R3NegatedBit,
		MajorityBits: [2]int{R3Majority0, R3Majority1},
	}
}

// A52R4 is R4: tapped, no majority function, drives R1/R2/R3's clocking
// via three clock-bit positions of its own.
func A52R4() lfsr.Config {
	return lfsr.Config{Length: R4Size, Taps: R4Taps, ClockBits: r4ClockBits}
}
