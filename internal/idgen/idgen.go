// Package idgen provides short, URL-safe range and chart ids backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RangePrefix is prepended to range ids.
var RangePrefix = "rng-"

// ChartPrefix is prepended to chart ids.
var ChartPrefix = "chart-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Generate returns a new range id.
func Generate() (string, error) {
	return GenerateWithPrefix(RangePrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// MustGenerate is like Generate but panics if the random source fails.
func MustGenerate() string {
	id, err := Generate()
	if err != nil {
		panic(err)
	}
	return id
}

// NewChartID returns a new chart id.
func NewChartID() string {
	id, err := GenerateWithPrefix(ChartPrefix)
	if err != nil {
		panic(err)
	}
	return id
}
