package voxel

import "fmt"

// Axis — индекс координатной оси: 0 — X, 1 — Y, 2 — Z
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String возвращает имя оси
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Direction обозначает одно из шести направлений граней вокселя
type Direction uint8

const (
	Top    Direction = iota // +Y
	Bottom                  // -Y
	Front                   // +Z
	Back                    // -Z
	Right                   // +X
	Left                    // -X
)

// DirectionCount количество направлений граней
const DirectionCount = 6

// Directions перечисляет направления в каноническом порядке обхода
var Directions = [DirectionCount]Direction{Top, Bottom, Front, Back, Right, Left}

var directionNames = [DirectionCount]string{"top", "bottom", "front", "back", "right", "left"}

var directionOffsets = [DirectionCount][3]int{
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
	{1, 0, 0},
	{-1, 0, 0},
}

// quadCorners хранит смещения четырёх углов грани относительно минимального угла вокселя.
// Порядок: верхний левый, верхний правый, нижний правый, нижний левый; если смотреть на грань
// снаружи, обход идёт против часовой стрелки, так что треугольник (0,1,2) смотрит наружу.
var quadCorners = [DirectionCount][4][3]int{
	{{1, 1, 1}, {1, 1, 0}, {0, 1, 0}, {0, 1, 1}}, // top
	{{1, 0, 0}, {1, 0, 1}, {0, 0, 1}, {0, 0, 0}}, // bottom
	{{1, 1, 1}, {0, 1, 1}, {0, 0, 1}, {1, 0, 1}}, // front
	{{0, 1, 0}, {1, 1, 0}, {1, 0, 0}, {0, 0, 0}}, // back
	{{1, 1, 0}, {1, 1, 1}, {1, 0, 1}, {1, 0, 0}}, // right
	{{0, 1, 1}, {0, 1, 0}, {0, 0, 0}, {0, 0, 1}}, // left
}

// Valid проверяет, что значение входит в перечисление
func (d Direction) Valid() bool {
	return d < DirectionCount
}

// String возвращает имя направления
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Offset возвращает единичный шаг к соседу в этом направлении
func (d Direction) Offset() (dx, dy, dz int) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

// Normal возвращает вектор нормали грани
func (d Direction) Normal() [3]int {
	return directionOffsets[d]
}

// Axis возвращает ось, перпендикулярную грани
func (d Direction) Axis() Axis {
	switch d {
	case Top, Bottom:
		return AxisY
	case Front, Back:
		return AxisZ
	default:
		return AxisX
	}
}

// Positive возвращает true, если нормаль грани направлена вдоль положительной полуоси
func (d Direction) Positive() bool {
	return d == Top || d == Front || d == Right
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	switch d {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Front:
		return Back
	case Back:
		return Front
	case Right:
		return Left
	default:
		return Right
	}
}

// Corners возвращает шаблон углов единичной грани
func (d Direction) Corners() [4][3]int {
	return quadCorners[d]
}

// DirectionFromNormal восстанавливает направление по вектору нормали
func DirectionFromNormal(n [3]int) (Direction, bool) {
	for _, d := range Directions {
		if directionOffsets[d] == n {
			return d, true
		}
	}
	return 0, false
}
