package dataprocessing

import (
	"strings"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// FilterPlaceholders drops the block-start rows the upstream extract emits
// once per entity. Those rows carry no marker value. The input slice is left
// untouched; dropped is the number of rows removed.
func FilterPlaceholders(batch []domain.PanelRecord) (kept []domain.PanelRecord, dropped int) {
	kept = make([]domain.PanelRecord, 0, len(batch))
	for _, record := range batch {
		if strings.TrimSpace(record.Marker) == "" {
			dropped++
			continue
		}
		kept = append(kept, record)
	}
	return kept, dropped
}
