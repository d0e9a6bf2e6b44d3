// Package rendering turns compiled content models into exportable documents.
package rendering

import (
	"context"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/types"
)

// Renderer is the shared contract for all export formats. Implementations
// consume the same content model and must agree on section ordering and
// visible text; only formatting and typefaces differ.
//
// Rendering fails only on resource problems. Content shape never does:
// missing optional fields render as empty sections, not errors.
type Renderer interface {
	// Render produces the binary artifact for a model under the given
	// typography key. Unrecognized keys fall back to the default typeface.
	Render(ctx context.Context, model *content.Model, typography types.TypographyKey) ([]byte, error)

	// ContentType returns the MIME type of the produced artifact.
	ContentType() string

	// Extension returns the artifact file extension without the dot.
	Extension() string
}
