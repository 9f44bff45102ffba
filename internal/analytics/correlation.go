package analytics

import (
	"math"

	"telegram-dialog-insights/internal/domain"
)

// CorrelationMatrix строит матрицу корреляций Пирсона между пятью
// бинарными признаками: непрочитанные, закрепленные, заглушенные,
// архивные, черновики. Диагональ равна 1; вырожденный вектор с нулевой
// дисперсией дает 0, а не NaN. На пустой коллекции Data равна nil.
func (e *Engine) CorrelationMatrix(dialogs []domain.Dialog) CorrelationMatrix {
	result := CorrelationMatrix{Labels: correlationLabels}
	if len(dialogs) == 0 {
		return result
	}

	n := len(dialogs)
	vectors := make([][]float64, len(correlationLabels))
	for i := range vectors {
		vectors[i] = make([]float64, n)
	}

	indicator := func(v bool) float64 {
		if v {
			return 1
		}
		return 0
	}
	for i := range dialogs {
		d := &dialogs[i]
		vectors[0][i] = indicator(d.HasUnread())
		vectors[1][i] = indicator(d.IsPinned)
		vectors[2][i] = indicator(d.Muted)
		vectors[3][i] = indicator(d.IsArchived)
		vectors[4][i] = indicator(d.HasDraft())
	}

	result.Data = make([][]float64, len(vectors))
	for i := range vectors {
		row := make([]float64, len(vectors))
		for j := range vectors {
			if i == j {
				row[j] = 1
				continue
			}
			row[j] = pearson(vectors[i], vectors[j])
		}
		result.Data[i] = row
	}
	return result
}

// pearson вычисляет коэффициент корреляции Пирсона двух векторов
// одинаковой длины. При нулевом знаменателе возвращается 0.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
