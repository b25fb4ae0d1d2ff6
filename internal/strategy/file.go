package strategy

import (
	"SignalReplay/internal/dataset"
	"SignalReplay/internal/model"
)

// FileSource replays strengths produced upstream and saved as
// `timestamp,strength` CSV. The price series is ignored.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Generate(_ []model.PricePoint) ([]model.SignalPoint, error) {
	rows, err := dataset.LoadCSV(s.Path)
	if err != nil {
		return nil, err
	}
	return SignalsFromRows(rows), nil
}

// SignalsFromRows converts CSV rows into signal points.
func SignalsFromRows(rows []dataset.Row) []model.SignalPoint {
	out := make([]model.SignalPoint, len(rows))
	for i, r := range rows {
		out[i] = model.SignalPoint{Time: r.Time, Strength: r.Value}
	}
	return out
}
