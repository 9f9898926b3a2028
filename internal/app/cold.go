package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/levelonedev/boxcars/internal/archive"
	"github.com/levelonedev/boxcars/internal/cache"
)

// ArchiveSummaries отдаёт кешу сводки из архива (Read-Through).
// Подходит только сводка, собранная в том же режиме разбора.
type ArchiveSummaries struct {
	Archive *archive.Archive
	Mode    string
}

var _ cache.ColdStorage = ArchiveSummaries{}

func (s ArchiveSummaries) Load(ctx context.Context, key string) ([]byte, error) {
	var crc uint32
	if _, err := fmt.Sscanf(key, "summary:%x:", &crc); err != nil {
		return nil, cache.ErrCacheMiss
	}

	id, ok, err := s.Archive.FindByCRC(crc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	entry, err := s.Archive.Meta(id)
	if err != nil {
		return nil, err
	}

	var sum Summary
	if err := json.Unmarshal(entry.Summary, &sum); err != nil || sum.Mode != s.Mode {
		return nil, cache.ErrCacheMiss
	}
	sum.ArchiveID = id.String()
	return json.Marshal(sum)
}
