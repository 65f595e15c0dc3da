package lfsr

import (
	"math/rand"
	"testing"
)

func TestClockFeedback(t *testing.T) {
	// Logical tap position 0 maps to physical index Length-1 (the
	// rightmost bit, the one most recently shifted in).
	cfg := Config{Length: 4, Taps: []int{0}}
	r := NewFromUint64(cfg, 0b0001)
	r.Clock(0)
	// feedback = physical bit 3 (== 1) XOR keyBit 0 = 1; shifting left
	// discards physical index 0 and inserts feedback at physical index 3.
	if got, want := r.Bits().Uint64(), uint64(0b0011); got != want {
		t.Fatalf("got %04b, want %04b", got, want)
	}
}

func TestClockWithKeyBit(t *testing.T) {
	cfg := Config{Length: 4, Taps: []int{0}}
	r := NewFromUint64(cfg, 0b0000)
	r.Clock(1)
	if got, want := r.Bits().Uint64(), uint64(0b0001); got != want {
		t.Fatalf("got %04b, want %04b", got, want)
	}
}

func a51R1Like() Config {
	return Config{Length: 19, Taps: []int{13, 16, 17, 18}, ClockBits: []int{8}}
}

func TestGetSetBit(t *testing.T) {
	r := New(a51R1Like())
	r.SetBit(5, 1)
	if got := r.GetBit(5); got != 1 {
		t.Fatalf("GetBit(5) = %d, want 1", got)
	}
	if got := r.GetBit(4); got != 0 {
		t.Fatalf("GetBit(4) = %d, want 0", got)
	}
}

func TestGetClockBits(t *testing.T) {
	r := New(a51R1Like())
	r.SetBit(8, 1)
	got := r.GetClockBits()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("GetClockBits() = %v, want [1]", got)
	}
}

func TestOutput(t *testing.T) {
	cfg := Config{Length: 4, Taps: []int{0}}
	r := New(cfg)
	r.SetBit(3, 1) // logical 3 == Length-1 == physical index 0
	if got := r.Output(); got != 1 {
		t.Fatalf("Output() = %d, want 1", got)
	}
}

func TestMajority(t *testing.T) {
	cases := []struct{ a, b, c, want int }{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 0, 1},
		{1, 1, 1, 1},
		{0, 1, 1, 1},
	}
	for _, c := range cases {
		if got := Majority(c.a, c.b, c.c); got != c.want {
			t.Fatalf("Majority(%d,%d,%d) = %d, want %d", c.a, c.b, c.c, got, c.want)
		}
	}
}

func TestGetMajority(t *testing.T) {
	cfg := Config{
		Length: 5, Taps: []int{0},
		HasMajority: true, NegatedBit: 0, MajorityBits: [2]int{1, 2},
	}
	r := New(cfg)
	r.SetBit(0, 0) // a = NOT 0 = 1
	r.SetBit(1, 1) // b = 1
	r.SetBit(2, 0) // c = 0
	if got, want := r.GetMajority(), Majority(1, 1, 0); got != want {
		t.Fatalf("GetMajority() = %d, want %d", got, want)
	}
}

func TestReverseClockInvertsClock(t *testing.T) {
	cfgs := []Config{
		{Length: 19, Taps: []int{13, 16, 17, 18}},
		{Length: 22, Taps: []int{20, 21}},
		{Length: 23, Taps: []int{7, 20, 21, 22}},
		{Length: 17, Taps: []int{11, 16}},
	}
	rng := rand.New(rand.NewSource(7))

	for _, cfg := range cfgs {
		reverseTaps := ReverseTaps(cfg)
		for trial := 0; trial < 200; trial++ {
			v := rng.Uint64() & ((uint64(1) << uint(cfg.Length)) - 1)
			r := NewFromUint64(cfg, v)
			before := r.Bits()

			keyBit := rng.Intn(2)
			r.Clock(keyBit)
			r.ReverseClock(keyBit, reverseTaps)

			if !r.Bits().Equal(before) {
				t.Fatalf("length %d: ReverseClock did not invert Clock for state %#x keyBit %d", cfg.Length, v, keyBit)
			}
		}
	}
}

func TestReverseTapsShiftAndWrap(t *testing.T) {
	cfg := Config{Length: 19, Taps: []int{13, 16, 17, 18}}
	got := ReverseTaps(cfg)
	want := []int{14, 17, 18, 0}
	if len(got) != len(want) {
		t.Fatalf("ReverseTaps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReverseTaps = %v, want %v", got, want)
		}
	}
}
