package systems

import (
	"math/rand"
	"testing"

	"tower-server/internal/domain"
)

func TestDecideNPC_MeleeWhenAdjacent(t *testing.T) {
	w := newTestWorld(t, ".....")
	player := w.place("hero", domain.ObjectCharacter, 2, 0)
	npc := w.place("goblin", domain.ObjectCharacter, 3, 0)
	npc.Movement = domain.MovementRoam

	cmd, ok := DecideNPC(w, npc, player, &fixedRand{f: 0.9})
	if !ok || cmd.Kind != domain.CommandMove || cmd.Dir != domain.DirLeft || cmd.Actor != npc {
		t.Errorf("expected try_move LEFT into the player, got %+v (ok=%v)", cmd, ok)
	}
}

func TestDecideNPC_ShootWhenAligned(t *testing.T) {
	w := newTestWorld(t, ".....")
	player := w.place("hero", domain.ObjectCharacter, 0, 0)
	npc := w.place("archer", domain.ObjectCharacter, 4, 0)
	npc.Flags |= domain.FlagCanShoot
	npc.Ammo = 1

	cmd, ok := DecideNPC(w, npc, player, &fixedRand{f: 0.9})
	if !ok || cmd.Kind != domain.CommandShoot || cmd.Dir != domain.DirLeft {
		t.Errorf("expected try_shoot LEFT, got %+v (ok=%v)", cmd, ok)
	}

	// Без патронов не стреляет (still - значит и не ходит)
	npc.Ammo = 0
	if cmd, ok := DecideNPC(w, npc, player, &fixedRand{f: 0.9}); ok {
		t.Errorf("empty archer must idle, got %+v", cmd)
	}
}

func TestDecideNPC_NoShotThroughWall(t *testing.T) {
	w := newTestWorld(t,
		"..#..",
		".....",
	)
	player := w.place("hero", domain.ObjectCharacter, 0, 0)
	npc := w.place("archer", domain.ObjectCharacter, 4, 0)
	npc.Flags |= domain.FlagCanShoot
	npc.Ammo = 3
	npc.Movement = domain.MovementRoam

	for seed := int64(0); seed < 50; seed++ {
		cmd, ok := DecideNPC(w, npc, player, rand.New(rand.NewSource(seed)))
		if ok && cmd.Kind == domain.CommandShoot {
			t.Fatalf("seed %d: NPC shot through a wall", seed)
		}
	}
}

func TestDecideNPC_MovementPolicies(t *testing.T) {
	t.Run("still never moves", func(t *testing.T) {
		w := newTestWorld(t, ".....", ".....")
		player := w.place("hero", domain.ObjectCharacter, 0, 0)
		npc := w.place("statue", domain.ObjectCharacter, 3, 1)
		if cmd, ok := DecideNPC(w, npc, player, &fixedRand{}); ok {
			t.Errorf("still NPC produced %+v", cmd)
		}
	})

	t.Run("line reverses at wall", func(t *testing.T) {
		w := newTestWorld(t, "...#", "....")
		player := w.place("hero", domain.ObjectCharacter, 0, 1)
		npc := w.place("sentry", domain.ObjectCharacter, 2, 0)
		npc.Movement = domain.MovementLine
		npc.Facing = domain.DirRight

		cmd, ok := DecideNPC(w, npc, player, &fixedRand{})
		if !ok || cmd.Dir != domain.DirLeft {
			t.Errorf("expected reversal to LEFT, got %+v (ok=%v)", cmd, ok)
		}
	})

	t.Run("roam chases on low roll", func(t *testing.T) {
		w := newTestWorld(t, ".....", ".....", ".....")
		player := w.place("hero", domain.ObjectCharacter, 0, 1)
		npc := w.place("goblin", domain.ObjectCharacter, 4, 1)
		npc.Movement = domain.MovementRoam

		cmd, ok := DecideNPC(w, npc, player, &fixedRand{f: 0.1})
		if !ok || cmd.Dir != domain.DirLeft {
			t.Errorf("expected greedy LEFT, got %+v (ok=%v)", cmd, ok)
		}
	})

	t.Run("roam wanders on high roll", func(t *testing.T) {
		w := newTestWorld(t, ".....", ".....", ".....")
		player := w.place("hero", domain.ObjectCharacter, 0, 0)
		npc := w.place("goblin", domain.ObjectCharacter, 4, 1)
		npc.Movement = domain.MovementRoam

		// Intn всегда 0: перестановка даёт DOWN первым
		cmd, ok := DecideNPC(w, npc, player, &fixedRand{f: 0.9})
		if !ok || cmd.Dir != domain.DirDown {
			t.Errorf("expected DOWN from shuffled set, got %+v (ok=%v)", cmd, ok)
		}
	})

	t.Run("roam boxed in", func(t *testing.T) {
		w := newTestWorld(t, "###", "#.#", "###")
		npc := w.place("goblin", domain.ObjectCharacter, 1, 1)
		npc.Movement = domain.MovementRoam
		if cmd, ok := DecideNPC(w, npc, nil, &fixedRand{f: 0.1}); ok {
			t.Errorf("boxed NPC produced %+v", cmd)
		}
	})
}

func TestDecideNPC_Deterministic(t *testing.T) {
	w := newTestWorld(t, ".......", ".......", ".......")
	player := w.place("hero", domain.ObjectCharacter, 0, 0)
	npc := w.place("goblin", domain.ObjectCharacter, 5, 2)
	npc.Movement = domain.MovementRoam

	for seed := int64(0); seed < 20; seed++ {
		a, okA := DecideNPC(w, npc, player, rand.New(rand.NewSource(seed)))
		b, okB := DecideNPC(w, npc, player, rand.New(rand.NewSource(seed)))
		if okA != okB || a != b {
			t.Fatalf("seed %d: decisions differ: %+v vs %+v", seed, a, b)
		}
	}
}

func TestShuffledDirections_Permutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		seen := make(map[domain.Direction]bool)
		for _, d := range ShuffledDirections(rng) {
			seen[d] = true
		}
		if len(seen) != 4 {
			t.Fatalf("not a permutation: %v", seen)
		}
	}
}
