package particles

import "fmt"

// Vertex is one corner of the particle footprint, in units of particle size.
type Vertex struct {
	Position [3]float32
}

// Mesh is the footprint shared by every instance, drawn as an unindexed triangle list.
type Mesh struct {
	Vertices []Vertex
}

// QuadMesh returns a square of the given half extent as two clockwise triangles.
func QuadMesh(halfExtent float32) Mesh {
	h := halfExtent
	return Mesh{Vertices: []Vertex{
		{Position: [3]float32{h, h, 0}},
		{Position: [3]float32{h, -h, 0}},
		{Position: [3]float32{-h, -h, 0}},
		{Position: [3]float32{-h, -h, 0}},
		{Position: [3]float32{-h, h, 0}},
		{Position: [3]float32{h, h, 0}},
	}}
}

// Validate checks that the mesh is a non-empty triangle list.
func (m Mesh) Validate() error {
	n := len(m.Vertices)
	if n == 0 || n%3 != 0 {
		return fmt.Errorf("%w: mesh has %d vertices, want a non-empty triangle list", ErrInvariant, n)
	}
	return nil
}

// Floats flattens the vertex positions for upload.
func (m Mesh) Floats() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
	}
	return out
}
