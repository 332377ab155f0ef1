// Package export передаёт меши внешнему рендереру в формате glTF 2.0.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/annel0/voxel-mesher/internal/mesh"
)

// ErrNothingToExport возвращается, если все меши пусты
var ErrNothingToExport = errors.New("export: нет непустых мешей")

// Item описывает меш с именем и смещением в мировых координатах
type Item struct {
	Name   string
	Mesh   *mesh.Mesh
	Offset mgl32.Vec3
}

// Document строит glTF документ: по одному узлу и мешу на каждый непустой элемент.
// Смещение прибавляется к вершинам, узлы остаются без преобразований.
func Document(items []Item) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	for _, item := range items {
		if item.Mesh == nil || item.Mesh.Empty() {
			continue
		}
		if err := item.Mesh.Validate(); err != nil {
			return nil, fmt.Errorf("меш %q: %w", item.Name, err)
		}

		m := item.Mesh
		if item.Offset != (mgl32.Vec3{}) {
			m = m.Translated(item.Offset)
		}

		positions := make([][3]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = v
		}

		position := modeler.WritePosition(doc, positions)
		normal := modeler.WriteNormal(doc, quadNormals(m))
		indices := modeler.WriteIndices(doc, m.Indices)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: item.Name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(indices),
				Attributes: map[string]uint32{
					gltf.POSITION: position,
					gltf.NORMAL:   normal,
				},
				Mode: gltf.PrimitiveTriangles,
			}},
		})

		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: item.Name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	if len(doc.Meshes) == 0 {
		return nil, ErrNothingToExport
	}
	return doc, nil
}

// WriteGLTF пишет элементы в w: GLB при binary, иначе JSON со встроенным буфером
func WriteGLTF(w io.Writer, items []Item, binary bool) error {
	doc, err := Document(items)
	if err != nil {
		return err
	}

	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if !binary {
		enc.SetJSONIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("кодирование glTF: %w", err)
	}
	return nil
}

// quadNormals возвращает нормаль каждой вершины: все четыре вершины квада
// получают нормаль его первого треугольника.
func quadNormals(m *mesh.Mesh) [][3]float32 {
	normals := make([][3]float32, len(m.Vertices))
	for q := 0; q+3 < len(m.Vertices); q += 4 {
		a, b, c := m.Vertices[q], m.Vertices[q+1], m.Vertices[q+2]
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		for i := 0; i < 4; i++ {
			normals[q+i] = n
		}
	}
	return normals
}
