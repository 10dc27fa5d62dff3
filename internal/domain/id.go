package domain

import (
	"fmt"
	"strconv"
)

// EntityID - упакованный идентификатор визуальной сущности хоста (Kind + Room + Serial).
// Ноль означает "сущности нет".
type EntityID uint64

// NilEntity - отсутствующая сущность.
const NilEntity EntityID = 0

// EntityKind - что именно хост рисует/симулирует.
type EntityKind uint8

const (
	EntityKindNone EntityKind = iota
	EntityKindLevel
	EntityKindObject
	EntityKindFeature
	EntityKindBullet
	EntityKindEffect
	EntityKindCamera
)

var entityKindToString = map[EntityKind]string{
	EntityKindLevel:   "level",
	EntityKindObject:  "object",
	EntityKindFeature: "feature",
	EntityKindBullet:  "bullet",
	EntityKindEffect:  "effect",
	EntityKindCamera:  "camera",
}

func (k EntityKind) String() string {
	if val, ok := entityKindToString[k]; ok {
		return val
	}
	return "none"
}

// Раскладка битов: [ Kind (8) | Room (16) | Serial (40) ]
const (
	bitsSerial = 40
	bitsRoom   = 16
	bitsKind   = 8

	shiftRoom = bitsSerial
	shiftKind = bitsSerial + bitsRoom

	maskSerial = (1 << bitsSerial) - 1
	maskRoom   = (1 << bitsRoom) - 1
	maskKind   = (1 << bitsKind) - 1
)

// PackEntityID собирает ID. room - линейный индекс комнаты в регионе.
func PackEntityID(kind EntityKind, room int16, serial uint64) EntityID {
	id := serial & maskSerial
	id |= (uint64(uint16(room)) & maskRoom) << shiftRoom
	id |= (uint64(kind) & maskKind) << shiftKind
	return EntityID(id)
}

func (id EntityID) Kind() EntityKind {
	return EntityKind((id >> shiftKind) & maskKind)
}

func (id EntityID) Room() int16 {
	return int16((id >> shiftRoom) & maskRoom)
}

func (id EntityID) Serial() uint64 {
	return uint64(id & maskSerial)
}

// MarshalJSON сериализует ID в строку, так как JS теряет точность для больших int64
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON принимает и строку, и число
func (id *EntityID) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	val, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = EntityID(val)
	return nil
}

// String для логов: [kind:room:serial]
func (id EntityID) String() string {
	return fmt.Sprintf("[%s:%d:%d]", id.Kind(), id.Room(), id.Serial())
}
