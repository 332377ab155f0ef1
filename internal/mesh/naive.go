package mesh

import "github.com/annel0/voxel-mesher/internal/voxel"

// NaiveMesher выводит все шесть граней каждого непустого вокселя, не глядя на соседей.
// Служит эталоном: худший по количеству треугольников, но тривиально корректный.
type NaiveMesher struct{}

// Method возвращает MethodNaive
func (NaiveMesher) Method() Method {
	return MethodNaive
}

// Mesh строит меш из 6 граней на каждый непустой воксель
func (NaiveMesher) Mesh(src voxel.Source) *Mesh {
	b := newBuilder(0)
	forEachSolid(src, func(x, y, z int, _ voxel.Voxel) {
		for _, dir := range voxel.Directions {
			b.appendQuad(x, y, z, dir, dir.Axis(), 1)
		}
	})
	return b.build()
}
