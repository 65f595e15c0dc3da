package bitvec

import (
	"math/rand"
	"testing"
	"testing/quick"
)

func TestFromUint64RoundTrip(t *testing.T) {
	f := func(n uint8, v uint64) bool {
		bits := int(n%64) + 1
		if bits < 64 {
			v &= (uint64(1) << uint(bits)) - 1
		}
		b := FromUint64(bits, v)
		return b.Uint64() == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestGetSet(t *testing.T) {
	b := New(19)
	for i := 0; i < 19; i++ {
		b.Set(i, (i*7)%2)
	}
	for i := 0; i < 19; i++ {
		if got, want := b.Get(i), (i*7)%2; got != want {
			t.Fatalf("bit %d: got %d, want %d", i, got, want)
		}
	}
}

func TestShiftLeftIn(t *testing.T) {
	b := FromUint64(8, 0b10110001)
	b.ShiftLeftIn(1)
	if got, want := b.Uint64(), uint64(0b01100011); got != want {
		t.Fatalf("got %08b, want %08b", got, want)
	}
}

func TestShiftRightIn(t *testing.T) {
	b := FromUint64(8, 0b10110001)
	b.ShiftRightIn(1)
	if got, want := b.Uint64(), uint64(0b11011000); got != want {
		t.Fatalf("got %08b, want %08b", got, want)
	}
}

func TestShiftLeftRightInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		n := rng.Intn(60) + 4
		v := rng.Uint64() & ((uint64(1) << uint(n)) - 1)
		b := FromUint64(n, v)
		orig := b.Clone()

		// Capture the bit that will be discarded on the left so we can
		// feed it back in on the right to invert the shift exactly.
		discarded := b.Get(0)
		fed := 1
		b.ShiftLeftIn(fed)
		b.ShiftRightIn(discarded)
		if !b.Equal(orig) {
			t.Fatalf("shift pair not inverse for n=%d v=%x", n, v)
		}
	}
}

func TestXor(t *testing.T) {
	a := FromUint64(8, 0b11001100)
	c := FromUint64(8, 0b10101010)
	got := a.Xor(c)
	if want := uint64(0b01100110); got.Uint64() != want {
		t.Fatalf("got %08b, want %08b", got.Uint64(), want)
	}
}

func TestBytesPadding(t *testing.T) {
	b := FromUint64(4, 0b1010)
	got := b.Bytes()
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0] != 0b10100000 {
		t.Fatalf("got %08b, want %08b", got[0], 0b10100000)
	}
}

func TestAndParity(t *testing.T) {
	cases := []struct {
		a, c uint64
		want int
	}{
		{0b111, 0b111, 1},
		{0b110, 0b001, 0},
		{0b101, 0b101, 0},
		{0, 0xffffffffffffffff, 0},
	}
	for _, c := range cases {
		if got := AndParity(c.a, c.c); got != c.want {
			t.Fatalf("AndParity(%b,%b) = %d, want %d", c.a, c.c, got, c.want)
		}
	}
}
