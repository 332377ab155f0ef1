package mesh

import "github.com/annel0/voxel-mesher/internal/voxel"

// CulledMesher выводит только грани, обращённые к пустоте или к границе чанка.
type CulledMesher struct{}

// Method возвращает MethodCulled
func (CulledMesher) Method() Method {
	return MethodCulled
}

// Mesh строит по одному четырёхугольнику на каждую видимую грань
func (CulledMesher) Mesh(src voxel.Source) *Mesh {
	b := newBuilder(0)
	forEachSolid(src, func(x, y, z int, _ voxel.Voxel) {
		for _, dir := range voxel.Directions {
			if voxel.Visible(src, x, y, z, dir) {
				b.appendQuad(x, y, z, dir, dir.Axis(), 1)
			}
		}
	})
	return b.build()
}
