// ABOUTME: Dashboard statistics over the actor's view
// ABOUTME: Supports all-time, last 7 days, last 30 days and current month ranges
package crm

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/medcrm/models"
)

// Dashboard ranges.
const (
	RangeAll   = "all"
	Range7d    = "7d"
	Range30d   = "30d"
	RangeMonth = "month"
)

type SalespersonCount struct {
	SalespersonID string `json:"salespersonId"`
	Name          string `json:"name"`
	Count         int    `json:"count"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type StageSummary struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type DashboardStats struct {
	Range                       string             `json:"range"`
	Since                       *time.Time         `json:"since,omitempty"`
	TotalClients                int                `json:"totalClients"`
	ActiveClients               int                `json:"activeClients"`
	ActiveLeads                 int                `json:"activeLeads"`
	SalespeopleCount            int                `json:"salespeopleCount"`
	ProductsCount               int                `json:"productsCount"`
	LeadsBySalesperson          []SalespersonCount `json:"leadsBySalesperson"`
	InteractionsBySalesperson   []SalespersonCount `json:"interactionsBySalesperson"`
	OpportunitiesBySalesperson  []SalespersonCount `json:"opportunitiesBySalesperson"`
	SecuredClientsBySalesperson []SalespersonCount `json:"securedClientsBySalesperson"`
	LeadsBySource               []SourceCount      `json:"leadsBySource"`
	Pipeline                    []StageSummary     `json:"pipeline"`
}

// RangeStart returns the first instant counted by rng, or nil for all time.
func RangeStart(rng string, now time.Time) (*time.Time, error) {
	midnight := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	var start time.Time
	switch rng {
	case "", RangeAll:
		return nil, nil
	case Range7d:
		start = midnight(now.AddDate(0, 0, -7))
	case Range30d:
		start = midnight(now.AddDate(0, 0, -30))
	case RangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, invalid("range", "unknown range %q (want all, 7d, 30d or month)", rng)
	}
	return &start, nil
}

func (s *Service) Stats(ctx context.Context, actor *models.User, rng string) (*DashboardStats, error) {
	start, err := RangeStart(rng, s.now())
	if err != nil {
		return nil, err
	}
	view, err := s.View(ctx, actor)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(view, start)
	if rng == "" {
		rng = RangeAll
	}
	stats.Range = rng
	return stats, nil
}

// onOrAfter parses a calendar date and compares it with start. Unparseable
// dates never match a bounded range.
func onOrAfter(date string, start time.Time) bool {
	d, err := time.ParseInLocation(models.DateLayout, date, start.Location())
	if err != nil {
		return false
	}
	return !d.Before(start)
}

// ComputeStats aggregates the view. A nil start counts everything.
func ComputeStats(view *models.View, start *time.Time) *DashboardStats {
	leads := view.Leads
	opps := view.Opportunities
	interactions := view.Interactions
	if start != nil {
		leads = filter(leads, func(l models.Lead) bool {
			return l.LastInteractionDate != "" && onOrAfter(l.LastInteractionDate, *start)
		})
		opps = filter(opps, func(o models.Opportunity) bool { return onOrAfter(o.CloseDate, *start) })
		interactions = filter(interactions, func(i models.Interaction) bool { return !i.Date.Before(*start) })
	}

	stats := &DashboardStats{
		Since:            start,
		TotalClients:     len(view.Clients),
		SalespeopleCount: len(view.Salespeople),
		ProductsCount:    len(view.Products),
	}

	for _, l := range leads {
		if l.Status != models.LeadStatusLost {
			stats.ActiveLeads++
		}
	}

	won := make(map[string]bool)
	for _, o := range view.Opportunities {
		if o.Stage == models.StageWon && o.ClientID != "" {
			won[o.ClientID] = true
		}
	}
	stats.ActiveClients = len(won)

	for _, sp := range view.Salespeople {
		name := firstName(sp.Name)
		leadCount := 0
		for _, l := range leads {
			if l.SalespersonID == sp.ID {
				leadCount++
			}
		}
		stats.LeadsBySalesperson = append(stats.LeadsBySalesperson, SalespersonCount{sp.ID, name, leadCount})

		interactionCount := 0
		for _, i := range interactions {
			if i.SalespersonID == sp.ID {
				interactionCount++
			}
		}
		stats.InteractionsBySalesperson = append(stats.InteractionsBySalesperson, SalespersonCount{sp.ID, name, interactionCount})

		oppCount := 0
		secured := make(map[string]bool)
		for _, o := range opps {
			if o.SalespersonID != sp.ID {
				continue
			}
			oppCount++
			if o.Stage == models.StageWon && o.ClientID != "" {
				secured[o.ClientID] = true
			}
		}
		if oppCount > 0 {
			stats.OpportunitiesBySalesperson = append(stats.OpportunitiesBySalesperson, SalespersonCount{sp.ID, name, oppCount})
		}
		if len(secured) > 0 {
			stats.SecuredClientsBySalesperson = append(stats.SecuredClientsBySalesperson, SalespersonCount{sp.ID, name, len(secured)})
		}
	}

	bySource := make(map[string]int)
	for _, l := range leads {
		bySource[l.Source]++
	}
	for source, count := range bySource {
		stats.LeadsBySource = append(stats.LeadsBySource, SourceCount{source, count})
	}
	sort.Slice(stats.LeadsBySource, func(i, j int) bool {
		if stats.LeadsBySource[i].Count != stats.LeadsBySource[j].Count {
			return stats.LeadsBySource[i].Count > stats.LeadsBySource[j].Count
		}
		return stats.LeadsBySource[i].Source < stats.LeadsBySource[j].Source
	})

	for _, stage := range models.Stages {
		summary := StageSummary{Stage: stage}
		for _, o := range opps {
			if o.Stage == stage {
				summary.Count++
				summary.Value += o.Value
			}
		}
		stats.Pipeline = append(stats.Pipeline, summary)
	}

	return stats
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
