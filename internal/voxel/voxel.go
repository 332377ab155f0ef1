// Package voxel описывает данные чанка: воксели, кубическую сетку, направления граней
// и правило видимости граней, общее для всех стратегий построения меша.
package voxel

// ChunkSize задаёт длину ребра чанка в вокселях для рабочей стратегии стриминга.
const ChunkSize = 16

// AirType тип пустого вокселя.
const AirType uint8 = 0

// SolidType единственный тип твёрдого вокселя, который выдаёт генератор ландшафта.
const SolidType uint8 = 1

// Voxel представляет одну ячейку сетки
type Voxel struct {
	Type uint8 // 0 — воздух, любое ненулевое значение — твёрдый воксель
}

// Air возвращает пустой воксель
func Air() Voxel {
	return Voxel{Type: AirType}
}

// Solid возвращает твёрдый воксель указанного типа
func Solid(t uint8) Voxel {
	return Voxel{Type: t}
}

// IsAir возвращает true для пустого вокселя
func (v Voxel) IsAir() bool {
	return v.Type == AirType
}

// IsSolid возвращает true для любого непустого вокселя
func (v Voxel) IsSolid() bool {
	return v.Type != AirType
}

// Source описывает единственную возможность сетки, которая нужна мешерам:
// вернуть воксель по координатам в диапазоне [0, Size()).
type Source interface {
	Size() int
	At(x, y, z int) Voxel
}
