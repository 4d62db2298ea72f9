package sparks

import (
	"fmt"

	"github.com/gekko3d/sparks/particles"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer enforces a single renderer invariant. Installing the
// same renderer twice is a no-op; a different one is an error.
func ensureSingleRenderer(app *App, name string) error {
	if app == nil {
		return fmt.Errorf("%w: ensureSingleRenderer: app is nil", particles.ErrInvariant)
	}
	if tag := resource[RendererTag](app); tag != nil {
		if tag.Name != name {
			return fmt.Errorf("%w: multiple renderers installed: %s and %s", particles.ErrInvariant, tag.Name, name)
		}
		return nil
	}
	app.addResources(&RendererTag{Name: name})
	return nil
}
