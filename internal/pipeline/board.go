package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nexusq/internal/leads"
)

// NormalizeStage maps free-text store values onto the closed stage set. Anything
// unrecognised, including nil, is treated as new.
func NormalizeStage(s *string) Stage {
	if s == nil {
		return StageNew
	}
	switch v := Stage(strings.ToLower(strings.TrimSpace(*s))); v {
	case StageNew, StageQualifying, StageQuoted, StageBooked:
		return v
	}
	return StageNew
}

// LatestByLead keeps one row per lead, the one with the latest updated_at. Rows are
// visited in order and a row with an equal timestamp replaces the earlier one.
func LatestByLead(rows []Row) map[string]Row {
	out := make(map[string]Row, len(rows))
	for _, row := range rows {
		if row.LeadID == nil || *row.LeadID == "" {
			continue
		}
		prev, ok := out[*row.LeadID]
		if !ok || !updatedAt(row).Before(updatedAt(prev)) {
			out[*row.LeadID] = row
		}
	}
	return out
}

func updatedAt(r Row) time.Time {
	if r.UpdatedAt == nil {
		return time.Time{}
	}
	return *r.UpdatedAt
}

func finite(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func company(l leads.Lead) string {
	if l.Service == nil || *l.Service == "" {
		return "SERVICE"
	}
	return strings.ToUpper(*l.Service)
}

// BuildBoard places every lead in a column using its latest pipeline row, falling back
// to the lead status when the lead has no pipeline row.
func BuildBoard(leadRows []leads.Lead, rows []Row) *Board {
	latest := LatestByLead(rows)

	columns := make(map[Stage]*Column, len(Stages))
	for _, s := range Stages {
		columns[s] = &Column{Stage: s, Title: s.Title(), Cards: []Card{}}
	}

	for _, l := range leadRows {
		card := Card{
			ID:        l.ID,
			Name:      l.DisplayName(),
			Company:   company(l),
			CreatedAt: l.CreatedAt,
		}

		if row, ok := latest[l.ID]; ok {
			stage := row.Stage
			if stage == nil {
				stage = l.Status
			}
			card.Stage = NormalizeStage(stage)
			card.Value = finite(row.Value)
			card.Probability = row.Probability
		} else {
			card.Stage = NormalizeStage(l.Status)
		}

		col := columns[card.Stage]
		col.Cards = append(col.Cards, card)
		col.Count++
	}

	board := &Board{
		Columns:      make([]Column, 0, len(Stages)),
		Distribution: make([]StageCount, 0, len(Stages)),
		Flow:         make([]FlowPoint, 0, len(Stages)),
		Revenue:      RevenueByStage(rows),
	}
	for _, s := range Stages {
		col := columns[s]
		board.Columns = append(board.Columns, *col)
		board.Distribution = append(board.Distribution, StageCount{Stage: s.Title(), Count: col.Count})

		label := s.Title()
		if s == StageNew {
			label = "New Leads"
		}
		board.Flow = append(board.Flow, FlowPoint{Stage: label, Value: col.Count})
	}

	return board
}

// RevenueByStage sums value over all rows, not just the latest per lead.
func RevenueByStage(rows []Row) []StageRevenue {
	sums := make(map[Stage]float64, len(Stages))
	for _, row := range rows {
		sums[NormalizeStage(row.Stage)] += finite(row.Value)
	}

	out := make([]StageRevenue, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, StageRevenue{Stage: s.Title(), Revenue: math.Round(sums[s])})
	}
	return out
}

var nonMoneyChars = regexp.MustCompile(`[^\d.]`)

// ParseMoney keeps only digits and dots; anything that still fails to parse is 0.
func ParseMoney(s string) float64 {
	cleaned := nonMoneyChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0
	}
	return v
}
