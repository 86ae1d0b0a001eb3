package analytics

import (
	"math"
	"time"

	"github.com/dvloznov/finance-chat/internal/domain"
	"github.com/dvloznov/finance-chat/internal/money"
)

// CompassStatus is the direction of the week-over-week trend.
type CompassStatus string

const (
	CompassUp      CompassStatus = "up"
	CompassDown    CompassStatus = "down"
	CompassNeutral CompassStatus = "neutral"
)

const (
	compassWindow    = 7 * 24 * time.Hour
	compassMaxAngle  = 55.0
	compassThreshold = 5.0
	sparklineDays    = 8
)

var compassText = map[CompassStatus]struct {
	label          string
	direction      string
	recommendation string
}{
	CompassUp:      {"Acelerando", "alta", "Momento bom para direcionar excedente para metas e reserva."},
	CompassDown:    {"Rumo de atencao", "baixa", "Revise gastos variaveis e proteja o caixa dos proximos 7 dias."},
	CompassNeutral: {"Estavel", "estavel", "Mantenha o ritmo e acompanhe despesas variaveis com mais frequencia."},
}

// SparkPoint is one day of net flow scaled for a 0-100 chart.
type SparkPoint struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Percent float64   `json:"percent"`
}

// Compass summarizes the last 7 days against the 7 before them.
type Compass struct {
	Status           CompassStatus `json:"status"`
	Label            string        `json:"label"`
	Direction        string        `json:"direction"`
	CurrentNet       float64       `json:"current_net"`
	PreviousNet      float64       `json:"previous_net"`
	CurrentIncome    float64       `json:"current_income"`
	CurrentExpense   float64       `json:"current_expense"`
	Delta            float64       `json:"delta"`
	DeltaPct         float64       `json:"delta_pct"`
	Angle            float64       `json:"angle"`
	SpendingPressure float64       `json:"spending_pressure"`
	Confidence       float64       `json:"confidence"`
	HealthScore      int           `json:"health_score"`
	Recommendation   string        `json:"recommendation"`
	Sparkline        []SparkPoint  `json:"sparkline"`
}

// AnalyzeCompass computes the trend heuristic at now.
func AnalyzeCompass(entries []domain.Transaction, now time.Time) Compass {
	var (
		c           Compass
		windowCount int
	)
	for _, tx := range entries {
		age := now.Sub(tx.CreatedAt)
		switch {
		case age <= compassWindow:
			windowCount++
			c.CurrentNet += tx.Signed()
			if tx.IsIncome() {
				c.CurrentIncome += tx.Amount
			} else {
				c.CurrentExpense += tx.Amount
			}
		case age <= 2*compassWindow:
			c.PreviousNet += tx.Signed()
		}
	}

	c.Delta = c.CurrentNet - c.PreviousNet
	c.DeltaPct = c.Delta / math.Max(math.Abs(c.PreviousNet), 1) * 100

	switch {
	case c.DeltaPct > compassThreshold:
		c.Status = CompassUp
	case c.DeltaPct < -compassThreshold:
		c.Status = CompassDown
	default:
		c.Status = CompassNeutral
	}

	text := compassText[c.Status]
	c.Label = text.label
	c.Direction = text.direction
	c.Recommendation = text.recommendation

	c.Angle = money.Clamp(c.DeltaPct*0.8, -compassMaxAngle, compassMaxAngle)

	c.SpendingPressure = 100
	if c.CurrentIncome > 0 {
		c.SpendingPressure = math.Min(100, c.CurrentExpense/c.CurrentIncome*100)
	}

	c.Confidence = money.Clamp(float64(windowCount)*9+math.Min(math.Abs(c.DeltaPct), 38), 18, 96)
	c.HealthScore = healthScore(c.Status, c.SpendingPressure)
	c.Sparkline = Sparkline(entries, now)

	return c
}

func healthScore(status CompassStatus, pressure float64) int {
	score := 52.0
	switch status {
	case CompassUp:
		score += 18
	case CompassDown:
		score -= 16
	}
	switch {
	case pressure < 70:
		score += 12
	case pressure > 95:
		score -= 12
	}
	return int(money.ClampPercent(money.Round(score)))
}

// Sparkline returns 8 daily net-flow points. Point i covers
// [now-(7-i) days, now-(6-i) days), so the last one starts at now.
func Sparkline(entries []domain.Transaction, now time.Time) []SparkPoint {
	const day = 24 * time.Hour
	points := make([]SparkPoint, sparklineDays)
	maxAbs := 1.0
	for i := range points {
		start := now.Add(-time.Duration(sparklineDays-1-i) * day)
		end := start.Add(day)
		var net float64
		for _, tx := range entries {
			if !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end) {
				net += tx.Signed()
			}
		}
		points[i] = SparkPoint{Date: start, Value: net}
		maxAbs = math.Max(maxAbs, math.Abs(net))
	}
	for i := range points {
		points[i].Percent = 50 + points[i].Value/maxAbs*45
	}
	return points
}
