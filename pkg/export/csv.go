package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// historyHeader is the wire contract for round-history exports: one
// row per consecutive score pair.
var historyHeader = []string{"batch_from", "batch_to", "score_from", "score_to", "delta", "direction"}

// Direction labels for the delta column
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// HistoryCSV renders the round-score series as CSV, one row per
// consecutive pair. An empty or single-entry series produces
// header-only output.
func HistoryCSV(scores []float64) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(historyHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := 1; i < len(scores); i++ {
		from, to := scores[i-1], scores[i]
		delta := to - from
		row := []string{
			strconv.Itoa(i - 1),
			strconv.Itoa(i),
			formatScore(from),
			formatScore(to),
			formatScore(delta),
			direction(delta),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func direction(delta float64) string {
	switch {
	case delta > 0:
		return DirectionUp
	case delta < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
