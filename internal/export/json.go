package export

import (
	"encoding/json"
	"io"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// WriteJSON writes the snapshot as indented JSON with the stored field names.
func WriteJSON(w io.Writer, b *types.Backlog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(b)
}
