package draftboard

import "testing"

func TestPickNumber_SnakeContinuity(t *testing.T) {
	t.Parallel()

	const teamCount = 10
	cases := []struct {
		name  string
		round int
		slot  int
		want  int
	}{
		{"round 1 first slot", 1, 0, 1},
		{"round 1 last slot", 1, 9, 10},
		{"round 2 reverses at last slot", 2, 9, 11},
		{"round 2 first slot closes block", 2, 0, 20},
		{"round 3 resumes forward", 3, 0, 21},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := PickNumber(tc.round, tc.slot, teamCount); got != tc.want {
				t.Fatalf("PickNumber(%d, %d, %d) = %d, want %d", tc.round, tc.slot, teamCount, got, tc.want)
			}
		})
	}
}

func TestPickNumber_BijectionPerRound(t *testing.T) {
	t.Parallel()

	for _, teamCount := range []int{1, 2, 8, 12} {
		for round := 1; round <= 4; round++ {
			seen := make(map[int]bool, teamCount)
			lo := (round-1)*teamCount + 1
			hi := round * teamCount
			for slot := 0; slot < teamCount; slot++ {
				pick := PickNumber(round, slot, teamCount)
				if pick < lo || pick > hi {
					t.Fatalf("pick %d outside round %d block [%d,%d] (teamCount=%d)", pick, round, lo, hi, teamCount)
				}
				if seen[pick] {
					t.Fatalf("duplicate pick %d in round %d (teamCount=%d)", pick, round, teamCount)
				}
				seen[pick] = true

				if got := SlotForPick(pick, teamCount); got != slot {
					t.Fatalf("SlotForPick(%d, %d) = %d, want %d", pick, teamCount, got, slot)
				}
				if got := RoundOf(pick, teamCount); got != round {
					t.Fatalf("RoundOf(%d, %d) = %d, want %d", pick, teamCount, got, round)
				}
			}
		}
	}
}

func TestPickNumber_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	if got := PickNumber(0, 0, 10); got != 0 {
		t.Fatalf("round 0 should yield 0, got %d", got)
	}
	if got := PickNumber(1, 10, 10); got != 0 {
		t.Fatalf("slot out of range should yield 0, got %d", got)
	}
	if got := SlotForPick(0, 10); got != -1 {
		t.Fatalf("pick 0 should yield -1, got %d", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		pickNumber  int
		currentPick int
		hasPick     bool
		want        CellState
	}{
		{"recorded pick wins", 3, 10, true, CellFilled},
		{"current pick is on the clock", 10, 10, false, CellOnClock},
		{"earlier empty cell", 7, 10, false, CellPastEmpty},
		{"future cell", 11, 10, false, CellFuture},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.pickNumber, tc.currentPick, tc.hasPick); got != tc.want {
				t.Fatalf("Classify(%d, %d, %v) = %s, want %s", tc.pickNumber, tc.currentPick, tc.hasPick, got, tc.want)
			}
		})
	}
}
