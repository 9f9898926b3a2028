// Package archive хранит исходные реплеи и сводки их декодирования в BadgerDB.
//
// Данные реплея сжимаются zstd, каждая запись получает UUID, а индекс по CRC
// содержимого позволяет не сохранять один и тот же файл дважды.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/levelonedev/boxcars/internal/logging"
)

// ErrNotFound запись с таким идентификатором отсутствует
var ErrNotFound = errors.New("archive: replay not found")

// Entry метаданные сохранённого реплея
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	ContentCRC uint32          `json:"content_crc"`
	RawSize    int             `json:"raw_size"`
	StoredSize int             `json:"stored_size"`
	StoredAt   time.Time       `json:"stored_at"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}

// Archive хранилище реплеев поверх BadgerDB
type Archive struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	log     *logging.Logger
}

// Open открывает архив в каталоге dir
func Open(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Отключаем логирование BadgerDB
	return open(opts)
}

// OpenInMemory открывает архив без записи на диск
func OpenInMemory() (*Archive, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Archive, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &Archive{
		db:      db,
		isReady: true,
		enc:     enc,
		dec:     dec,
		log:     logging.GetComponentLogger("archive"),
	}, nil
}

// Close закрывает архив
func (a *Archive) Close() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.isReady {
		return nil
	}
	a.isReady = false
	a.dec.Close()
	if err := a.enc.Close(); err != nil {
		a.db.Close()
		return err
	}
	return a.db.Close()
}

func dataKey(id uuid.UUID) []byte { return []byte("replay:" + id.String() + ":data") }
func metaKey(id uuid.UUID) []byte { return []byte("meta:" + id.String()) }
func crcKey(crc uint32) []byte { return []byte(fmt.Sprintf("crc:%08x", crc)) }

// Store сохраняет реплей и его сводку. Если реплей с таким CRC уже есть,
// возвращает идентификатор существующей записи и existed=true.
func (a *Archive) Store(data []byte, contentCRC uint32, summary []byte) (id uuid.UUID, existed bool, err error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return uuid.Nil, false, fmt.Errorf("архив закрыт")
	}

	compressed := a.enc.EncodeAll(data, nil)
	id = uuid.New()
	entry := Entry{
		ID:         id,
		ContentCRC: contentCRC,
		RawSize:    len(data),
		StoredSize: len(compressed),
		StoredAt:   time.Now().UTC(),
		Summary:    summary,
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(crcKey(contentCRC))
		if err == nil {
			return item.Value(func(v []byte) error {
				prev, perr := uuid.FromBytes(v)
				if perr != nil {
					return perr
				}
				id, existed = prev, true
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(dataKey(id), compressed); err != nil {
			return err
		}
		if err := txn.Set(metaKey(id), meta); err != nil {
			return err
		}
		return txn.Set(crcKey(contentCRC), id[:])
	})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	if existed {
		a.log.Debug("Реплей с CRC %08x уже в архиве: %s", contentCRC, id)
	} else {
		a.log.Info("Реплей сохранён: %s (%d -> %d байт)", id, len(data), len(compressed))
	}
	return id, existed, nil
}

// Load возвращает распакованные данные реплея и его метаданные
func (a *Archive) Load(id uuid.UUID) ([]byte, *Entry, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return nil, nil, fmt.Errorf("архив закрыт")
	}

	var compressed, meta []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return err
		}
		if meta, err = item.ValueCopy(nil); err != nil {
			return err
		}
		item, err = txn.Get(dataKey(id))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(meta, &entry); err != nil {
		return nil, nil, fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	data, err := a.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("повреждённые данные реплея %s: %w", id, err)
	}
	return data, &entry, nil
}

// Meta возвращает метаданные записи без распаковки данных
func (a *Archive) Meta(id uuid.UUID) (*Entry, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return nil, fmt.Errorf("архив закрыт")
	}

	var entry Entry
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error { return json.Unmarshal(v, &entry) })
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByCRC ищет запись по CRC содержимого
func (a *Archive) FindByCRC(contentCRC uint32) (uuid.UUID, bool, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return uuid.Nil, false, fmt.Errorf("архив закрыт")
	}

	var id uuid.UUID
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(crcKey(contentCRC))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			var perr error
			id, perr = uuid.FromBytes(v)
			return perr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// List возвращает метаданные всех записей, от старых к новым
func (a *Archive) List() ([]Entry, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return nil, fmt.Errorf("архив закрыт")
	}

	var entries []Entry
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("meta:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var e Entry
				if err := json.Unmarshal(v, &e); err != nil {
					return err
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода архива: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StoredAt.Before(entries[j].StoredAt)
	})
	return entries, nil
}

// Delete удаляет запись вместе с индексом CRC
func (a *Archive) Delete(id uuid.UUID) error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if !a.isReady {
		return fmt.Errorf("архив закрыт")
	}

	return a.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var e Entry
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
			return err
		}
		for _, k := range [][]byte{metaKey(id), dataKey(id), crcKey(e.ContentCRC)} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
