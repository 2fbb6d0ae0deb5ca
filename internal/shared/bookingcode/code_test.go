package bookingcode

import (
	"errors"
	"regexp"
	"testing"
)

func TestGenerator_Next(t *testing.T) {
	t.Parallel()

	never := func(string) (bool, error) { return false, nil }

	t.Run("matches format", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 5)
		re := regexp.MustCompile(`^FLX-[A-Z0-9]{6}$`)

		for i := 0; i < 200; i++ {
			code, err := g.Next(never)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !re.MatchString(code) {
				t.Fatalf("code %q does not match FLX-[A-Z0-9]{6}", code)
			}
		}
	})

	t.Run("no duplicates across many draws", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 5)
		seen := map[string]bool{}
		exists := func(code string) (bool, error) { return seen[code], nil }

		for i := 0; i < 5000; i++ {
			code, err := g.Next(exists)
			if err != nil {
				t.Fatalf("draw %d: %v", i, err)
			}
			if seen[code] {
				t.Fatalf("duplicate code %q", code)
			}
			seen[code] = true
		}
	})

	t.Run("retries past collisions", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 5)
		collisions := 3
		exists := func(string) (bool, error) {
			if collisions > 0 {
				collisions--
				return true, nil
			}
			return false, nil
		}

		code, err := g.Next(exists)
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if code == "" {
			t.Fatal("expected a code")
		}
		if collisions != 0 {
			t.Fatalf("expected all forced collisions consumed, %d left", collisions)
		}
	})

	t.Run("falls back to longer code when space exhausted", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 4)
		exists := func(code string) (bool, error) {
			// everything in the 6-char space is taken
			return len(code) == len("FLX-")+6, nil
		}

		code, err := g.Next(exists)
		if err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}
		if len(code) != len("FLX-")+8 {
			t.Fatalf("expected 8-char fallback code, got %q", code)
		}
	})

	t.Run("exhaustion in both spaces fails", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 3)
		always := func(string) (bool, error) { return true, nil }

		_, err := g.Next(always)
		if !errors.Is(err, ErrExhausted) {
			t.Fatalf("expected ErrExhausted, got %v", err)
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		g := NewGenerator("FLX-", 6, 5)
		boom := errors.New("store down")

		_, err := g.Next(func(string) (bool, error) { return false, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected store error, got %v", err)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"flx-abc123":    "FLX-ABC123",
		"  FLX-ABC123 ": "FLX-ABC123",
		"\tFlx-Ab12C3":  "FLX-AB12C3",
		"FLX-ABC123":    "FLX-ABC123",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
