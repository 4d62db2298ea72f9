package sparks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gekko3d/sparks/particles"
)

type AssetId string

type MeshAsset struct {
	version uint
	mesh    particles.Mesh
}

type AssetServer struct {
	meshes map[AssetId]MeshAsset
}

type AssetServerModule struct{}

// LoadMesh validates m and stores it under a new id.
func (server *AssetServer) LoadMesh(m particles.Mesh) (AssetId, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("load mesh: %w", err)
	}
	id := makeAssetId()

	server.meshes[id] = MeshAsset{
		version: 0,
		mesh:    m,
	}

	return id, nil
}

func (server *AssetServer) Mesh(id AssetId) (particles.Mesh, bool) {
	asset, ok := server.meshes[id]
	return asset.mesh, ok
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(&AssetServer{
		meshes: make(map[AssetId]MeshAsset),
	})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
