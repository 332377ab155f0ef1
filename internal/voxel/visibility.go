package voxel

// Visible решает, нужно ли выводить грань вокселя (x,y,z) в направлении dir.
// Сосед за границей чанка означает видимую грань: межчанкового перекрытия нет.
// Иначе грань видна только если соседний воксель пуст.
func Visible(src Source, x, y, z int, dir Direction) bool {
	dx, dy, dz := dir.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz

	n := src.Size()
	if nx < 0 || nx >= n || ny < 0 || ny >= n || nz < 0 || nz >= n {
		return true
	}

	return src.At(nx, ny, nz).IsAir()
}
