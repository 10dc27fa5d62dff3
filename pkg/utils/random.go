package utils

import (
	"hash/fnv"

	"github.com/oklog/ulid/v2"
)

// GenerateID создает уникальный сортируемый по времени ID (ULID) для сессий и клиентов
func GenerateID() string {
	return ulid.Make().String()
}

// StringToSeed превращает имя в стабильное зерно генератора.
// Одинаковое имя даёт одинаковый процедурный регион в live- и replay-режиме.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
