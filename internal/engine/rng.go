package engine

import "math/rand"

// countingSource считает обращения к базовому источнику,
// чтобы поток можно было восстановить по (seed, draws).
type countingSource struct {
	src   rand.Source
	draws int64
}

func (c *countingSource) Int63() int64 {
	c.draws++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.draws = 0
}

// Random - общий поток случайных чисел сессии. Передаётся явно:
// и генерация комнат, и решения NPC берут числа только отсюда.
type Random struct {
	*rand.Rand
	seed int64
	src  *countingSource
}

func NewRandom(seed int64) *Random {
	src := &countingSource{src: rand.NewSource(seed)}
	return &Random{Rand: rand.New(src), seed: seed, src: src}
}

// RestoreRandom перематывает поток на draws обращений вперёд.
func RestoreRandom(seed, draws int64) *Random {
	r := NewRandom(seed)
	for r.src.draws < draws {
		r.src.Int63()
	}
	return r
}

func (r *Random) InitialSeed() int64 { return r.seed }

func (r *Random) Draws() int64 { return r.src.draws }
