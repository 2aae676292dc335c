// Package policy maps difficulty levels to search and randomization settings.
package policy

import "chessmind/internal/core"

// Settings tunes one difficulty level. Depth counts plies from the root,
// RandomMoveChance is the probability of skipping search entirely, and
// NoiseScale sizes the uniform perturbation added to each root move's score.
type Settings struct {
	Depth            int
	RandomMoveChance float64
	NoiseScale       float64
}

// Fixed strength table. Read-only configuration; never mutated at runtime.
var table = map[core.Difficulty]Settings{
	core.DifficultyBeginner:     {Depth: 1, RandomMoveChance: 0.40, NoiseScale: 2.0},
	core.DifficultyIntermediate: {Depth: 2, RandomMoveChance: 0.20, NoiseScale: 1.0},
	core.DifficultyAdvanced:     {Depth: 3, RandomMoveChance: 0.10, NoiseScale: 0.5},
	core.DifficultyMaster:       {Depth: 4, RandomMoveChance: 0.00, NoiseScale: 0.0},
}

// For returns the settings for d, falling back to intermediate for values
// outside the table.
func For(d core.Difficulty) Settings {
	if s, ok := table[d]; ok {
		return s
	}
	return table[core.DifficultyIntermediate]
}
