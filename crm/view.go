// ABOUTME: Role-scoped view derivation over the full dataset
// ABOUTME: Admins see everything; salespeople see their own pipeline plus shared catalogs
package crm

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harperreed/medcrm/models"
)

// DefaultViewCacheSize bounds the number of memoized views.
const DefaultViewCacheSize = 64

// DeriveView computes what user may see. A nil user, an admin, or a user
// who still has to change their password gets every collection unfiltered.
// Users are never part of a view. The result shares no slices with ds.
func DeriveView(user *models.User, ds *models.Dataset) *models.View {
	if user == nil || user.IsAdmin() || user.MustChangePassword {
		return &models.View{
			Clients:           clone(ds.Clients),
			Leads:             clone(ds.Leads),
			Products:          clone(ds.Products),
			Opportunities:     clone(ds.Opportunities),
			Tasks:             clone(ds.Tasks),
			SupportTickets:    clone(ds.SupportTickets),
			Salespeople:       clone(ds.Salespeople),
			Interactions:      clone(ds.Interactions),
			WhatsAppTemplates: clone(ds.WhatsAppTemplates),
		}
	}

	id := user.ID
	leads := filter(ds.Leads, func(l models.Lead) bool { return l.SalespersonID == id })
	opps := filter(ds.Opportunities, func(o models.Opportunity) bool { return o.SalespersonID == id })

	visibleClients := make(map[string]bool)
	for _, o := range opps {
		if o.ClientID != "" {
			visibleClients[o.ClientID] = true
		}
	}
	companies := make(map[string]bool, len(leads))
	for _, l := range leads {
		companies[strings.ToLower(l.Company)] = true
	}
	for _, c := range ds.Clients {
		if companies[strings.ToLower(c.Name)] {
			visibleClients[c.ID] = true
		}
	}

	return &models.View{
		Clients:       clone(ds.Clients),
		Leads:         leads,
		Products:      clone(ds.Products),
		Opportunities: opps,
		Tasks:         filter(ds.Tasks, func(t models.Task) bool { return t.SalespersonID == id }),
		SupportTickets: filter(ds.SupportTickets, func(t models.SupportTicket) bool {
			return t.ClientID != "" && visibleClients[t.ClientID]
		}),
		Salespeople:       clone(ds.Salespeople),
		Interactions:      clone(ds.Interactions),
		WhatsAppTemplates: clone(ds.WhatsAppTemplates),
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

type viewKey struct {
	userID      string
	role        string
	mustChange  bool
	fingerprint uint64
}

// ViewCache memoizes derived views per user and dataset fingerprint.
// Cached views are shared and must be treated as read-only.
type ViewCache struct {
	cache *lru.Cache[viewKey, *models.View]
}

func NewViewCache(size int) *ViewCache {
	if size <= 0 {
		size = DefaultViewCacheSize
	}
	cache, err := lru.New[viewKey, *models.View](size)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &ViewCache{cache: cache}
}

// Get returns the view for user over ds, deriving it on a miss.
func (c *ViewCache) Get(user *models.User, ds *models.Dataset, fingerprint uint64) *models.View {
	key := viewKey{fingerprint: fingerprint}
	if user != nil {
		key.userID = user.ID
		key.role = user.Role
		key.mustChange = user.MustChangePassword
	}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := DeriveView(user, ds)
	c.cache.Add(key, v)
	return v
}

func (c *ViewCache) Len() int {
	return c.cache.Len()
}

// View returns the data actor is allowed to see.
func (s *Service) View(ctx context.Context, actor *models.User) (*models.View, error) {
	ds, me, fingerprint, err := s.read(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.views.Get(me, ds, fingerprint), nil
}
