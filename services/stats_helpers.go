package services

import (
	"context"
	"math"

	"gorm.io/gorm"
)

type labelCount struct {
	Label string
	Count int64
}

// countBy groups model rows by column. column must be a trusted identifier.
func countBy(ctx context.Context, db *gorm.DB, model any, column string) (map[string]int64, error) {
	var rows []labelCount
	if err := db.WithContext(ctx).Model(model).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Count
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
