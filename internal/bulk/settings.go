package bulk

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/crisoull/bodega/internal/model"
)

// ExportSettings writes the registry as an indented JSON artifact.
func ExportSettings(w io.Writer, settings model.Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}

// ImportSettings parses a settings artifact. Arrays missing from the
// file come back empty; the store substitutes the seeds on replace.
func ImportSettings(r io.Reader) (model.Settings, error) {
	var settings model.Settings
	if err := json.NewDecoder(r).Decode(&settings); err != nil {
		return model.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}
