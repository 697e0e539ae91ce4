// ABOUTME: Tests for the placeholder encryption and scoring capabilities.
// ABOUTME: Checks ciphertext shape, reversibility, and score range.
package fhe

import (
	"context"
	"strings"
	"testing"

	"github.com/harperreed/rehab/internal/models"
)

func TestPlaceholderEncrypt(t *testing.T) {
	p := Placeholder{}
	in := Metrics{Metrics: "rom 90deg", Intensity: models.IntensityLow, Duration: 15}

	ct, err := p.Encrypt(context.Background(), in)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !strings.HasPrefix(ct, PlaceholderPrefix) {
		t.Errorf("ciphertext %q lacks %q prefix", ct, PlaceholderPrefix)
	}
	if strings.Contains(ct, "rom 90deg") {
		t.Error("ciphertext must not contain plaintext verbatim")
	}

	out, err := p.Reveal(ct)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if out != in {
		t.Errorf("Reveal = %+v, want %+v", out, in)
	}
}

func TestPlaceholderRevealRejectsForeign(t *testing.T) {
	p := Placeholder{}
	for _, ct := range []string{"", "abc", "FHE-!!!", "FHE-bm90IGpzb24="} {
		if _, err := p.Reveal(ct); err == nil {
			t.Errorf("Reveal(%q) expected error", ct)
		}
	}
}

func TestPlaceholderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Placeholder{}).Encrypt(ctx, Metrics{}); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestRandomScorerRange(t *testing.T) {
	s := RandomScorer{}
	for i := 0; i < 500; i++ {
		score, err := s.Score(context.Background(), models.Session{})
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if score < 0 || score > models.MaxProgressScore {
			t.Fatalf("Score = %d, out of range", score)
		}
	}
}

func TestFixedScorer(t *testing.T) {
	score, _ := FixedScorer(55).Score(context.Background(), models.Session{})
	if score != 55 {
		t.Errorf("Score = %d, want 55", score)
	}
}
