package ids

import (
	"strings"
	"testing"
)

func TestNew_LengthAndAlphabet(t *testing.T) {
	gen := MustNew()

	for i := 0; i < 1000; i++ {
		id := gen()
		if len(id) != Length {
			t.Fatalf("id %q: expected length %d, got %d", id, Length, len(id))
		}
		for _, c := range id {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("id %q contains %q outside the alphabet", id, c)
			}
		}
	}
}

func TestNew_NoCollisionsInSmallSample(t *testing.T) {
	gen := MustNew()

	seen := make(map[string]struct{}, 100000)
	for i := 0; i < 100000; i++ {
		id := gen()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = struct{}{}
	}
}
