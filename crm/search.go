// ABOUTME: Global search across the actor's visible records
// ABOUTME: Matches clients, leads, opportunities and manual tasks case-insensitively
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

// MinSearchLength is the shortest term that runs a search.
const MinSearchLength = 2

// Result kinds.
const (
	KindClient      = "client"
	KindLead        = "lead"
	KindOpportunity = "opportunity"
	KindTask        = "task"
)

type SearchResult struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Search looks for term in the actor's view. Closing tasks are left out
// since their opportunity already matches.
func (s *Service) Search(ctx context.Context, actor *models.User, term string) ([]SearchResult, error) {
	view, err := s.View(ctx, actor)
	if err != nil {
		return nil, err
	}
	return SearchView(view, term), nil
}

func SearchView(view *models.View, term string) []SearchResult {
	term = strings.ToLower(strings.TrimSpace(term))
	if len([]rune(term)) < MinSearchLength {
		return nil
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), term) {
				return true
			}
		}
		return false
	}

	var results []SearchResult
	for _, c := range view.Clients {
		if match(c.Name, c.ContactPerson, c.Email) {
			results = append(results, SearchResult{Kind: KindClient, ID: c.ID, Title: c.Name, Subtitle: c.ContactPerson})
		}
	}
	for _, l := range view.Leads {
		if match(l.Name, l.Company, l.Email) {
			results = append(results, SearchResult{Kind: KindLead, ID: l.ID, Title: l.Name, Subtitle: l.Company})
		}
	}
	for _, o := range view.Opportunities {
		if match(o.ClientName) {
			results = append(results, SearchResult{Kind: KindOpportunity, ID: o.ID, Title: o.ClientName, Subtitle: o.Stage})
		}
	}
	for _, t := range view.Tasks {
		if t.IsClosingTask() {
			continue
		}
		if match(t.Title, t.Description) {
			results = append(results, SearchResult{Kind: KindTask, ID: t.ID, Title: t.Title, Subtitle: t.DueDate})
		}
	}
	return results
}
