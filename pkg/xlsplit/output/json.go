// Package output writes conversion results: chunk files, the chunk
// manifest and JSON summaries.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/models"
)

// ToJSON serializes a conversion result. Chunk contents are left out.
func ToJSON(result *models.ConversionResult, pretty bool) ([]byte, error) {
	view := *result
	view.Chunks = make([]models.Chunk, len(result.Chunks))
	for i, c := range result.Chunks {
		view.Chunks[i] = c.Metadata()
	}
	return marshal(view, pretty)
}

// SheetNamesToJSON serializes a sheet name listing.
func SheetNamesToJSON(names []string, pretty bool) ([]byte, error) {
	return marshal(struct {
		SheetNames []string `json:"sheet_names"`
	}{SheetNames: names}, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
