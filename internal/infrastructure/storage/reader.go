package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"tower-server/internal/domain"
)

// Верхние границы секций файла.
const (
	maxActions   = 1 << 24
	maxPlayerLen = 1 << 16
)

var (
	ErrInvalidMagic       = errors.New("invalid magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
)

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(bufio.NewReader(f))
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Заголовок
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, ErrInvalidMagic
	}
	if header.Version != Version2 {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, header.Version, Version2)
	}
	if header.ActionCount < 0 || header.ActionCount > maxActions {
		return nil, fmt.Errorf("bad action count: %d", header.ActionCount)
	}
	if header.PlayerLen > maxPlayerLen {
		return nil, fmt.Errorf("bad player snapshot size: %d", header.PlayerLen)
	}

	region := make([]byte, header.RegionLen)
	if _, err := io.ReadFull(r, region); err != nil {
		return nil, fmt.Errorf("failed to read region: %w", err)
	}

	session := &domain.ReplaySession{
		Seed:      header.Seed,
		Draws:     header.Draws,
		Timestamp: header.Timestamp,
		Start: domain.Portal{
			Region: string(region),
			Level:  domain.Position{X: int(header.LevelX), Y: int(header.LevelY)},
			Tile:   domain.Position{X: int(header.TileX), Y: int(header.TileY)},
		},
		Actions: make([]domain.ReplayAction, header.ActionCount),
	}

	if header.PlayerLen > 0 {
		raw := make([]byte, header.PlayerLen)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("failed to read player: %w", err)
		}
		session.Player = &domain.Object{}
		if err := json.Unmarshal(raw, session.Player); err != nil {
			return nil, fmt.Errorf("failed to decode player: %w", err)
		}
	}

	// 2. Действия
	for i := range session.Actions {
		var rec ActionRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("failed to read action %d: %w", i, err)
		}
		session.Actions[i] = domain.ReplayAction{
			Frame:  int(rec.Frame),
			Action: domain.ActionType(rec.Action),
			Dir:    domain.Direction(rec.Dir),
		}
	}

	return session, nil
}
