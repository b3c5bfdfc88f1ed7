// Package feature turns raw per-series inputs (subtitle term tables and
// synopsis text) into weighted sparse feature dictionaries for the vector
// space model.
package feature

import (
	"math"

	"github.com/substream/substream/internal/textnorm"
)

// Feature key namespaces. Subtitle-derived terms, synopsis unigrams, and
// synopsis bigrams live in separate namespaces so the same token can carry
// different weights per source.
const (
	TermPrefix   = "term::"
	SynPrefix    = "syn::"
	BigramPrefix = "big::"
	bigramJoiner = "_"
)

// Weights holds the feature weighting constants.
// Subtitle terms are the strongest content signal, so they are weighted
// highest and capped (MaxRepeat) to keep very frequent words from dominating.
// The synopsis contributes a softer, topically distinct signal, and bigrams
// add limited phrase sensitivity without exploding dimensionality.
type Weights struct {
	TermWeight     float64
	SynopsisWeight float64
	BigramWeight   float64
	MaxRepeat      float64
}

// DefaultWeights returns the standard weighting constants.
func DefaultWeights() Weights {
	return Weights{
		TermWeight:     2.0,
		SynopsisWeight: 0.6,
		BigramWeight:   0.3,
		MaxRepeat:      8,
	}
}

// Input is the raw material for one series.
type Input struct {
	Name     string
	Synopsis string
	Terms    map[string]float64
}

// Builder assembles weighted feature dictionaries.
type Builder struct {
	weights Weights
}

// NewBuilder creates a Builder with the given weights.
func NewBuilder(weights Weights) *Builder {
	return &Builder{weights: weights}
}

// Build returns the ordered series names and one feature dictionary per
// series that has at least one non-empty feature. Series with a blank name
// or no usable input are silently dropped: they cannot enter the space.
func (b *Builder) Build(inputs []Input) (names []string, dicts []map[string]float64) {
	for _, input := range inputs {
		if input.Name == "" {
			continue
		}
		features := b.buildOne(input)
		if len(features) == 0 {
			continue
		}
		names = append(names, input.Name)
		dicts = append(dicts, features)
	}
	return names, dicts
}

func (b *Builder) buildOne(input Input) map[string]float64 {
	features := make(map[string]float64)

	for term, count := range input.Terms {
		token := textnorm.NormalizeToken(term)
		if token == "" || count <= 0 {
			continue
		}
		// Half-to-even rounding, clamped to [1, MaxRepeat].
		repeat := math.Max(1.0, math.RoundToEven(count))
		weight := b.weights.TermWeight * math.Min(b.weights.MaxRepeat, repeat)
		features[TermPrefix+token] += weight
	}

	synTokens := textnorm.Tokenize(input.Synopsis)
	if len(synTokens) > 0 {
		counts := make(map[string]float64, len(synTokens))
		for _, token := range synTokens {
			counts[token]++
		}
		for token, freq := range counts {
			features[SynPrefix+token] += b.weights.SynopsisWeight * freq
		}

		if b.weights.BigramWeight > 0 && len(synTokens) >= 2 {
			for i := 0; i+1 < len(synTokens); i++ {
				key := BigramPrefix + synTokens[i] + bigramJoiner + synTokens[i+1]
				features[key] += b.weights.BigramWeight
			}
		}
	}

	return features
}
