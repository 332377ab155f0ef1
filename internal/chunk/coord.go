package chunk

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxCoord ограничивает модуль координаты чанка, чтобы Window и Distance не переполнялись
const MaxCoord = 1 << 30

// ErrOutOfRange возвращается для позиций и координат за пределами MaxCoord
var ErrOutOfRange = errors.New("координата вне допустимого диапазона")

// Coord — координата чанка на плоскости XZ. Чанки не складываются по Y.
type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Origin возвращает мировое начало чанка: координата, умноженная на размер
func (c Coord) Origin(size int) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * size), 0, float32(c.Z * size)}
}

// Distance возвращает расстояние Чебышёва между чанками
func (c Coord) Distance(other Coord) int {
	dx := c.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dz := c.Z - other.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// Valid сообщает, лежит ли координата в пределах MaxCoord
func (c Coord) Valid() bool {
	return c.X >= -MaxCoord && c.X <= MaxCoord && c.Z >= -MaxCoord && c.Z <= MaxCoord
}

// CheckPosition проверяет, что мировая позиция конечна и её чанк не выходит за MaxCoord
func CheckPosition(x, z float64, size int) error {
	for _, v := range [2]float64{x, z} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(math.Round(v/float64(size))) > MaxCoord {
			return fmt.Errorf("%w: позиция (%g, %g)", ErrOutOfRange, x, z)
		}
	}
	return nil
}

// PlayerChunk возвращает чанк игрока: позиция, делённая на размер, округлённая до ближайшего
// целого (половины от нуля).
func PlayerChunk(x, z float64, size int) Coord {
	return Coord{
		X: int(math.Round(x / float64(size))),
		Z: int(math.Round(z / float64(size))),
	}
}

// Window возвращает все координаты на расстоянии не больше radius от center,
// упорядоченные по X, затем по Z.
func Window(center Coord, radius int) []Coord {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	coords := make([]Coord, 0, side*side)
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			coords = append(coords, Coord{X: x, Z: z})
		}
	}
	return coords
}

// ParseCoord разбирает строку вида "x,z"
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("координата чанка должна иметь вид x,z: %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coord{}, fmt.Errorf("координата x %q: %w", parts[0], err)
	}
	z, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coord{}, fmt.Errorf("координата z %q: %w", parts[1], err)
	}
	c := Coord{X: x, Z: z}
	if !c.Valid() {
		return Coord{}, fmt.Errorf("%w: %s", ErrOutOfRange, c)
	}
	return c, nil
}

func sortCoords(coords []Coord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
}
