package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// ErrNotReady возвращается после закрытия хранилища
var ErrNotReady = errors.New("хранилище не готово")

const keyPrefix = "grid:"

// GridStorage кэширует сетки чанков в BadgerDB. Значения хранятся как бинарная сетка, сжатая zstd.
// Ключи содержат пространство имён (отпечаток параметров ландшафта), поэтому сетки
// с другими параметрами генерации никогда не возвращаются.
type GridStorage struct {
	db        *badger.DB
	namespace string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mutex   sync.RWMutex
	isReady bool
}

// NewGridStorage открывает хранилище в каталоге dataPath
func NewGridStorage(dataPath, namespace string) (*GridStorage, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "grids"))
	opts.Logger = nil // Отключаем логирование BadgerDB
	return open(opts, namespace)
}

// NewInMemoryGridStorage открывает хранилище без записи на диск
func NewInMemoryGridStorage(namespace string) (*GridStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, namespace)
}

func open(opts badger.Options, namespace string) (*GridStorage, error) {
	if namespace == "" || strings.Contains(namespace, ":") {
		return nil, fmt.Errorf("недопустимое пространство имён %q", namespace)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать компрессор: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать декомпрессор: %w", err)
	}

	return &GridStorage{
		db:        db,
		namespace: namespace,
		encoder:   encoder,
		decoder:   decoder,
		isReady:   true,
	}, nil
}

// Namespace возвращает пространство имён ключей
func (gs *GridStorage) Namespace() string {
	return gs.namespace
}

// Close закрывает хранилище
func (gs *GridStorage) Close() error {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	if !gs.isReady {
		return nil
	}

	gs.isReady = false
	gs.decoder.Close()
	gs.encoder.Close()
	return gs.db.Close()
}

func (gs *GridStorage) key(x, z int) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:%d", keyPrefix, gs.namespace, x, z))
}

// SaveGrid сохраняет сетку чанка (x, z)
func (gs *GridStorage) SaveGrid(x, z int, grid *voxel.Grid) error {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return ErrNotReady
	}

	raw, err := grid.MarshalBinary()
	if err != nil {
		return fmt.Errorf("ошибка сериализации сетки: %w", err)
	}
	data := gs.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4))

	err = gs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gs.key(x, z), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadGrid загружает сетку чанка (x, z); found=false, если сетки нет
func (gs *GridStorage) LoadGrid(x, z int) (*voxel.Grid, bool, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return nil, false, ErrNotReady
	}

	var data []byte
	err := gs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gs.key(x, z))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	raw, err := gs.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка распаковки сетки (%d,%d): %w", x, z, err)
	}

	var grid voxel.Grid
	if err := grid.UnmarshalBinary(raw); err != nil {
		return nil, false, fmt.Errorf("ошибка десериализации сетки (%d,%d): %w", x, z, err)
	}
	return &grid, true, nil
}

// DeleteGrid удаляет сетку чанка (x, z); отсутствие сетки не ошибка
func (gs *GridStorage) DeleteGrid(x, z int) error {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return ErrNotReady
	}

	return gs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gs.key(x, z))
	})
}

// Coords возвращает координаты всех сеток текущего пространства имён
func (gs *GridStorage) Coords() ([][2]int, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return nil, ErrNotReady
	}

	prefix := []byte(keyPrefix + gs.namespace + ":")
	var coords [][2]int

	err := gs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			parts := strings.Split(rest, ":")
			if len(parts) != 2 {
				continue
			}
			x, errX := strconv.Atoi(parts[0])
			z, errZ := strconv.Atoi(parts[1])
			if errX != nil || errZ != nil {
				continue
			}
			coords = append(coords, [2]int{x, z})
		}
		return nil
	})
	return coords, err
}
