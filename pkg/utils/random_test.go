package utils

import "testing"

func TestStringToSeed_Stable(t *testing.T) {
	a := StringToSeed("gen:catacombs")
	b := StringToSeed("gen:catacombs")
	c := StringToSeed("gen:attic")

	if a != b {
		t.Errorf("same name must give same seed: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("different names collided: %d", a)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 26 {
			t.Fatalf("ULID must be 26 chars, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
