package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tower-server/internal/domain"
)

const (
	MagicHeader string = `TWRP` // 4 байта
	Version2    uint32 = 2
)

// ReplayFileHeader - фиксированная часть заголовка.
// binary.Write пишет её целиком: только массивы и числа.
// Следом идут RegionLen байт имени стартового региона и PlayerLen байт
// JSON-снимка игрока (0 - игрок из шаблона).
type ReplayFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Seed        int64   // 8 байт
	Draws       int64   // 8 байт
	Timestamp   int64   // 8 байт
	LevelX      int32   // 4 байта
	LevelY      int32   // 4 байта
	TileX       int32   // 4 байта
	TileY       int32   // 4 байта
	ActionCount int32   // 4 байта
	RegionLen   uint16  // 2 байта
	PlayerLen   uint32  // 4 байта
}

// ActionRecord - одна запись действия.
type ActionRecord struct {
	Frame  int32 // 4
	Action uint8 // 1
	Dir    uint8 // 1
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) *ReplayService {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	return &ReplayService{SaveDir: dir}
}

// Save пишет запись в SaveDir и возвращает путь к файлу.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_%d_%d.twrp", session.Seed, session.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeBinary(w, session); err != nil {
		return "", err
	}
	return path, w.Flush()
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	region := []byte(s.Start.Region)
	if len(region) > 65535 {
		return fmt.Errorf("region name too long: %d", len(region))
	}

	var player []byte
	if s.Player != nil {
		var err error
		if player, err = json.Marshal(s.Player); err != nil {
			return fmt.Errorf("failed to encode player: %w", err)
		}
	}

	// 1. Заголовок
	header := ReplayFileHeader{
		Version:     Version2,
		Seed:        s.Seed,
		Draws:       s.Draws,
		Timestamp:   s.Timestamp,
		LevelX:      int32(s.Start.Level.X),
		LevelY:      int32(s.Start.Level.Y),
		TileX:       int32(s.Start.Tile.X),
		TileY:       int32(s.Start.Tile.Y),
		ActionCount: int32(len(s.Actions)),
		RegionLen:   uint16(len(region)),
		PlayerLen:   uint32(len(player)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(region); err != nil {
		return fmt.Errorf("failed to write region: %w", err)
	}
	if _, err := w.Write(player); err != nil {
		return fmt.Errorf("failed to write player: %w", err)
	}

	// 2. Действия
	for _, act := range s.Actions {
		rec := ActionRecord{
			Frame:  int32(act.Frame),
			Action: uint8(act.Action),
			Dir:    uint8(act.Dir),
		}
		if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
			return err
		}
	}

	return nil
}
