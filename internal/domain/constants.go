package domain

// Размер комнаты по умолчанию.
const (
	DefaultLevelWidth  = 13
	DefaultLevelHeight = 11
)

// Боевые параметры
const (
	MeleeDamage    = 1
	SpikeDamage    = 1
	ProjectileHit  = 1
	RecoilDistance = 0.25
)

// ChaseProbability - шанс, что бродячий NPC шагнёт к игроку жадно.
const ChaseProbability = 0.4
