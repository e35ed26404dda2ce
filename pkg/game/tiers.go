package game

import (
	"fmt"
	"strings"
)

// Difficulty is the single-byte code selecting a tier.
type Difficulty byte

// Difficulties
const (
	Easy   Difficulty = 'E'
	Medium Difficulty = 'M'
	Hard   Difficulty = 'H'
)

// String implements fmt.Stringer.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("0x%02x", byte(d))
}

// ParseDifficulty accepts a code (E/M/H) or a name (easy/medium/hard).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "e", "easy":
		return Easy, nil
	case "m", "medium":
		return Medium, nil
	case "h", "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Tier is the field configuration of a difficulty.
type Tier struct {
	Size  int
	Mines int
}

// Cells returns the number of cells.
func (t Tier) Cells() int {
	return t.Size * t.Size
}

// Validate checks the tier can be generated.
func (t Tier) Validate() error {
	if t.Size <= 0 || t.Mines <= 0 {
		return ErrInvalidTier
	}
	if t.Mines >= t.Cells() {
		return ErrTooManyMines
	}
	return nil
}

// Tiers maps difficulties to tiers.
type Tiers map[Difficulty]Tier

// Lookup finds the tier of a difficulty.
func (t Tiers) Lookup(d Difficulty) (Tier, error) {
	tier, ok := t[d]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %s", ErrUnknownDifficulty, d)
	}
	return tier, nil
}

var (
	// CanonicalTiers is the default table.
	CanonicalTiers = Tiers{
		Easy:   {Size: 5, Mines: 5},
		Medium: {Size: 10, Mines: 20},
		Hard:   {Size: 15, Mines: 30},
	}
	// LegacyTiers is the denser table of earlier firmware.
	// It's not wire-compatible with hosts expecting CanonicalTiers densities.
	LegacyTiers = Tiers{
		Easy:   {Size: 5, Mines: 5},
		Medium: {Size: 10, Mines: 30},
		Hard:   {Size: 15, Mines: 50},
	}
)

// TiersByName selects a table by name: "canonical" or "legacy".
func TiersByName(name string) (Tiers, error) {
	switch name {
	case "", "canonical":
		return CanonicalTiers, nil
	case "legacy":
		return LegacyTiers, nil
	}
	return nil, fmt.Errorf("unknown tiers table %q", name)
}
