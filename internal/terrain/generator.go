// Package terrain заполняет сетки чанков по двумерной карте высот.
package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-mesher/internal/voxel"
)

// ErrInvalidParams возвращается для недопустимых параметров ландшафта
var ErrInvalidParams = errors.New("terrain: недопустимые параметры")

// Params — преобразование входа шума и масштаб высоты.
// Высота столбца: round(noise((x+Offset)/Scale, (z+Offset)/Scale) * Amplitude).
type Params struct {
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Scale     float64 `yaml:"scale" json:"scale"`
	Offset    float64 `yaml:"offset" json:"offset"`
	Seed      int64   `yaml:"seed" json:"seed"`
}

// DefaultParams возвращает параметры пологого ландшафта, умещающегося в один чанк по высоте
func DefaultParams() Params {
	return Params{
		Amplitude: 12,
		Scale:     24,
		Offset:    1,
		Seed:      12345,
	}
}

// Validate проверяет параметры
func (p Params) Validate() error {
	if p.Scale <= 0 || math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("%w: scale должен быть > 0, получено %v", ErrInvalidParams, p.Scale)
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
		return fmt.Errorf("%w: amplitude = %v", ErrInvalidParams, p.Amplitude)
	}
	if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
		return fmt.Errorf("%w: offset = %v", ErrInvalidParams, p.Offset)
	}
	return nil
}

// Fingerprint однозначно описывает параметры; сетки с разными отпечатками несовместимы
func (p Params) Fingerprint() string {
	return fmt.Sprintf("a%g-s%g-o%g-seed%d", p.Amplitude, p.Scale, p.Offset, p.Seed)
}

// Generator генерирует сетки чанков. Без скрытого случайного состояния:
// одни и те же координаты всегда дают одну и ту же сетку.
type Generator struct {
	params Params
	size   int
	noise  *Noise
}

// NewGenerator создаёт генератор для чанков размера voxel.ChunkSize
func NewGenerator(params Params) (*Generator, error) {
	return NewGeneratorSized(params, voxel.ChunkSize)
}

// NewGeneratorSized создаёт генератор для чанков произвольного размера
func NewGeneratorSized(params Params, size int) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: размер чанка %d", ErrInvalidParams, size)
	}
	return &Generator{
		params: params,
		size:   size,
		noise:  NewNoise(params.Seed),
	}, nil
}

// Params возвращает параметры генератора
func (g *Generator) Params() Params {
	return g.params
}

// ChunkSize возвращает размер генерируемых чанков
func (g *Generator) ChunkSize() int {
	return g.size
}

// Height возвращает высоту столбца в мировых координатах
func (g *Generator) Height(worldX, worldZ int) int {
	nx := (float64(worldX) + g.params.Offset) / g.params.Scale
	nz := (float64(worldZ) + g.params.Offset) / g.params.Scale
	return int(math.Round(g.noise.At(nx, nz) * g.params.Amplitude))
}

// Generate строит сетку чанка (chunkX, chunkZ). Мировые координаты столбца —
// локальные плюс координата чанка, умноженная на размер.
func (g *Generator) Generate(chunkX, chunkZ int) *voxel.Grid {
	grid := voxel.NewGrid(g.size)

	baseX := chunkX * g.size
	baseZ := chunkZ * g.size

	for x := 0; x < g.size; x++ {
		for z := 0; z < g.size; z++ {
			height := g.Height(baseX+x, baseZ+z)
			top := height
			if top >= g.size {
				top = g.size - 1
			}
			for y := 0; y <= top; y++ {
				grid.Set(x, y, z, voxel.Solid(voxel.SolidType))
			}
		}
	}

	return grid
}
