package policy

import (
	"testing"

	"chessmind/internal/core"
)

func TestStrengthTable(t *testing.T) {
	tests := []struct {
		difficulty core.Difficulty
		depth      int
		randChance float64
		noise      float64
	}{
		{core.DifficultyBeginner, 1, 0.40, 2.0},
		{core.DifficultyIntermediate, 2, 0.20, 1.0},
		{core.DifficultyAdvanced, 3, 0.10, 0.5},
		{core.DifficultyMaster, 4, 0.00, 0.0},
	}

	for _, tt := range tests {
		s := For(tt.difficulty)
		if s.Depth != tt.depth {
			t.Errorf("%s depth = %d, want %d", tt.difficulty, s.Depth, tt.depth)
		}
		if s.RandomMoveChance != tt.randChance {
			t.Errorf("%s random chance = %v, want %v", tt.difficulty, s.RandomMoveChance, tt.randChance)
		}
		if s.NoiseScale != tt.noise {
			t.Errorf("%s noise = %v, want %v", tt.difficulty, s.NoiseScale, tt.noise)
		}
	}
}

func TestUnknownDifficultyFallsBackToIntermediate(t *testing.T) {
	got := For(core.Difficulty(99))
	want := For(core.DifficultyIntermediate)
	if got != want {
		t.Fatalf("fallback settings = %+v, want %+v", got, want)
	}
}

func TestMasterPlaysWithoutRandomness(t *testing.T) {
	s := For(core.DifficultyMaster)
	if s.RandomMoveChance != 0 || s.NoiseScale != 0 {
		t.Fatalf("master settings %+v must have no randomization", s)
	}
}
