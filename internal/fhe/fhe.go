// ABOUTME: Encryption and scoring capabilities for session metrics.
// ABOUTME: Ships a reversible placeholder until a real FHE service is wired in.
package fhe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/harperreed/rehab/internal/models"
)

// PlaceholderPrefix marks ciphertext produced by Placeholder.
const PlaceholderPrefix = "FHE-"

// ErrNotPlaceholder is returned when revealing ciphertext Placeholder did not produce.
var ErrNotPlaceholder = errors.New("not placeholder ciphertext")

// Metrics is the plaintext handed to the encryption step.
type Metrics struct {
	Metrics   string           `json:"metrics"`
	Intensity models.Intensity `json:"intensity"`
	Duration  int              `json:"duration"`
}

// Encryptor turns plaintext metrics into an opaque ciphertext string.
type Encryptor interface {
	Encrypt(ctx context.Context, m Metrics) (string, error)
}

// Scorer computes a progress score in [0, 100] for a session.
type Scorer interface {
	Score(ctx context.Context, s models.Session) (int, error)
}

// Placeholder is NOT encryption. It base64-encodes the metrics JSON so the
// rest of the program can be exercised end to end.
type Placeholder struct{}

func (Placeholder) Encrypt(ctx context.Context, m Metrics) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}
	return PlaceholderPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// Reveal decodes ciphertext produced by Placeholder.Encrypt.
func (Placeholder) Reveal(ciphertext string) (Metrics, error) {
	raw, ok := strings.CutPrefix(ciphertext, PlaceholderPrefix)
	if !ok {
		return Metrics{}, ErrNotPlaceholder
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", ErrNotPlaceholder, err)
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", ErrNotPlaceholder, err)
	}
	return m, nil
}

// RandomScorer simulates an encrypted progress computation.
type RandomScorer struct{}

func (RandomScorer) Score(ctx context.Context, _ models.Session) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return rand.IntN(models.MaxProgressScore), nil
}

// FixedScorer always returns the same score.
type FixedScorer int

func (f FixedScorer) Score(context.Context, models.Session) (int, error) { return int(f), nil }
