// ABOUTME: Backup file formats for full, per-salesperson and workday exports
// ABOUTME: Builds, validates and merges backup documents over the CRM dataset
package backup

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/medcrm/models"
)

// TypeFull marks a whole-store backup.
const TypeFull = "full"

// ErrInvalid is returned for files that do not have the expected shape.
var ErrInvalid = errors.New("invalid backup file")

type Metadata struct {
	Type       string    `json:"type"`
	ExportedBy string    `json:"exportedBy"`
	ExportDate time.Time `json:"exportDate"`
	BackupID   string    `json:"backupId,omitempty"`
}

// FullBackup is every collection, users included, plus metadata.
type FullBackup struct {
	Metadata Metadata `json:"backupMetadata"`
	models.Dataset
}

// SalespersonBackup carries one salesperson's slice of the store. Admins
// produce it for a salesperson; salespeople produce it from their view at
// the end of a workday.
type SalespersonBackup struct {
	SourceSalespersonID string `json:"sourceSalespersonId"`
	models.View
}

// NewFull snapshots ds.
func NewFull(ds *models.Dataset, exportedBy string, now time.Time) *FullBackup {
	snapshot := *ds
	snapshot.Normalize()
	return &FullBackup{
		Metadata: Metadata{
			Type:       TypeFull,
			ExportedBy: exportedBy,
			ExportDate: now.UTC(),
			BackupID:   ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		},
		Dataset: snapshot,
	}
}

// keys decodes the top-level object so required keys can be checked for
// presence rather than emptiness.
func keys(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return raw, nil
}

func requireKeys(raw map[string]json.RawMessage, names ...string) error {
	for _, name := range names {
		v, ok := raw[name]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: missing %q", ErrInvalid, name)
		}
	}
	return nil
}

// ParseFull validates and decodes a full backup. Collections absent from
// the file decode as empty.
func ParseFull(data []byte) (*FullBackup, error) {
	raw, err := keys(data)
	if err != nil {
		return nil, err
	}

	var meta struct {
		Type string `json:"type"`
	}
	if m, ok := raw["backupMetadata"]; ok {
		_ = json.Unmarshal(m, &meta)
	}
	if meta.Type != TypeFull {
		return nil, fmt.Errorf("%w: not a full backup", ErrInvalid)
	}
	if err := requireKeys(raw, "users", "clients"); err != nil {
		return nil, err
	}

	var b FullBackup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	b.Dataset.Normalize()
	return &b, nil
}

// ParseSalesperson decodes a backup an admin exported for a salesperson.
func ParseSalesperson(data []byte) (*SalespersonBackup, error) {
	return parseSalesperson(data, "sourceSalespersonId", "clients", "products")
}

// ParseMerge decodes a salesperson's workday export for merging.
func ParseMerge(data []byte) (*SalespersonBackup, error) {
	return parseSalesperson(data, "clients", "leads", "sourceSalespersonId")
}

func parseSalesperson(data []byte, required ...string) (*SalespersonBackup, error) {
	raw, err := keys(data)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(raw, required...); err != nil {
		return nil, err
	}

	var b SalespersonBackup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if b.SourceSalespersonID == "" {
		return nil, fmt.Errorf("%w: empty sourceSalespersonId", ErrInvalid)
	}
	b.View.Normalize()
	return &b, nil
}

// ForSalesperson builds the closure of records belonging to salespersonID:
// their leads, opportunities and tasks, the clients those touch, the
// interactions on them, the tickets of those clients, and every product,
// salesperson and template.
func ForSalesperson(ds *models.Dataset, salespersonID string) *SalespersonBackup {
	var leads []models.Lead
	leadIDs := make(map[string]bool)
	companies := make(map[string]bool)
	for _, l := range ds.Leads {
		if l.SalespersonID == salespersonID {
			leads = append(leads, l)
			leadIDs[l.ID] = true
			companies[strings.ToLower(l.Company)] = true
		}
	}

	var opps []models.Opportunity
	oppIDs := make(map[string]bool)
	oppClients := make(map[string]bool)
	for _, o := range ds.Opportunities {
		if o.SalespersonID == salespersonID {
			opps = append(opps, o)
			oppIDs[o.ID] = true
			if o.ClientID != "" {
				oppClients[o.ClientID] = true
			}
		}
	}

	var clients []models.Client
	clientIDs := make(map[string]bool)
	for _, c := range ds.Clients {
		if oppClients[c.ID] || companies[strings.ToLower(c.Name)] {
			clients = append(clients, c)
			clientIDs[c.ID] = true
		}
	}

	var tasks []models.Task
	for _, t := range ds.Tasks {
		if t.SalespersonID == salespersonID {
			tasks = append(tasks, t)
		}
	}

	var interactions []models.Interaction
	for _, i := range ds.Interactions {
		if i.SalespersonID == salespersonID ||
			(i.LeadID != "" && leadIDs[i.LeadID]) ||
			(i.OpportunityID != "" && oppIDs[i.OpportunityID]) {
			interactions = append(interactions, i)
		}
	}

	var tickets []models.SupportTicket
	for _, t := range ds.SupportTickets {
		if clientIDs[t.ClientID] {
			tickets = append(tickets, t)
		}
	}

	b := &SalespersonBackup{
		SourceSalespersonID: salespersonID,
		View: models.View{
			Clients:           clients,
			Leads:             leads,
			Products:          ds.Products,
			Opportunities:     opps,
			Tasks:             tasks,
			SupportTickets:    tickets,
			Salespeople:       ds.Salespeople,
			Interactions:      interactions,
			WhatsAppTemplates: ds.WhatsAppTemplates,
		},
	}
	b.View.Normalize()
	return b
}

// ApplyImport overwrites the nine working collections with the backup.
// Users are left alone.
func ApplyImport(ds *models.Dataset, b *SalespersonBackup) {
	ds.Clients = b.Clients
	ds.Leads = b.Leads
	ds.Products = b.Products
	ds.Opportunities = b.Opportunities
	ds.Tasks = b.Tasks
	ds.SupportTickets = b.SupportTickets
	ds.Salespeople = b.Salespeople
	ds.Interactions = b.Interactions
	ds.WhatsAppTemplates = b.WhatsAppTemplates
	ds.Normalize()
}

// Merge folds a salesperson's records into ds by ID. Incoming records
// replace existing ones in place; new records are appended.
func Merge(ds *models.Dataset, b *SalespersonBackup) {
	ds.Clients = mergeByID(ds.Clients, b.Clients, func(c models.Client) string { return c.ID })
	ds.Leads = mergeByID(ds.Leads, b.Leads, func(l models.Lead) string { return l.ID })
	ds.Opportunities = mergeByID(ds.Opportunities, b.Opportunities, func(o models.Opportunity) string { return o.ID })
	ds.Tasks = mergeByID(ds.Tasks, b.Tasks, func(t models.Task) string { return t.ID })
	ds.Interactions = mergeByID(ds.Interactions, b.Interactions, func(i models.Interaction) string { return i.ID })
}

func mergeByID[T any](existing, incoming []T, id func(T) string) []T {
	out := make([]T, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	index := make(map[string]int, len(out))
	for i, item := range out {
		index[id(item)] = i
	}
	for _, item := range incoming {
		if i, ok := index[id(item)]; ok {
			out[i] = item
			continue
		}
		index[id(item)] = len(out)
		out = append(out, item)
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// FullFilename is the suggested name for a full backup taken on day.
func FullFilename(day time.Time) string {
	return fmt.Sprintf("black-medical-full-backup-%s.json", day.Format(models.DateLayout))
}

// SalespersonFilename is the suggested name for an admin export of one
// salesperson.
func SalespersonFilename(name string, day time.Time) string {
	return fmt.Sprintf("backup-vendedor-%s-%s.json", whitespace.ReplaceAllString(name, "_"), day.Format(models.DateLayout))
}

// WorkdayFilename is the suggested name for a salesperson's workday export.
func WorkdayFilename(name string, day time.Time) string {
	return fmt.Sprintf("jornada-%s-%s.json", whitespace.ReplaceAllString(name, "_"), day.Format(models.DateLayout))
}
