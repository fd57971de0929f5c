package notes

import (
	"fmt"

	"mediatorr/internal/metadata"
)

// Identifier renders the identifier note. A nil record yields the negative
// placeholder for the provider.
func Identifier(provider metadata.Provider, record *metadata.Record) string {
	switch provider {
	case metadata.ProviderITunes:
		if record == nil {
			return "iTunes not found"
		}
		return fmt.Sprintf("iTunes ID : %d", record.ID)
	default:
		if record == nil {
			return "TMDB not found"
		}
		return fmt.Sprintf("ID TMDB : %d", record.ID)
	}
}
