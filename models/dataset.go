// ABOUTME: Whole-store dataset and role-scoped view containers
// ABOUTME: Maps each entity collection to its persisted store key
package models

// Store keys, one serialized array per collection.
const (
	KeyClients           = "store:clients"
	KeyLeads             = "store:leads"
	KeyProducts          = "store:products"
	KeyOpportunities     = "store:opportunities"
	KeyTasks             = "store:tasks"
	KeySupportTickets    = "store:supportTickets"
	KeySalespeople       = "store:salespeople"
	KeyInteractions      = "store:interactions"
	KeyWhatsAppTemplates = "store:whatsappTemplates"
	KeyUsers             = "store:users"
)

// StoreKeyPrefix is shared by every collection key.
const StoreKeyPrefix = "store:"

// Dataset holds every collection in the store.
type Dataset struct {
	Clients           []Client           `json:"clients"`
	Leads             []Lead             `json:"leads"`
	Products          []Product          `json:"products"`
	Opportunities     []Opportunity      `json:"opportunities"`
	Tasks             []Task             `json:"tasks"`
	SupportTickets    []SupportTicket    `json:"supportTickets"`
	Salespeople       []Salesperson      `json:"salespeople"`
	Interactions      []Interaction      `json:"interactions"`
	WhatsAppTemplates []WhatsAppTemplate `json:"whatsappTemplates"`
	Users             []User             `json:"users"`
}

// Collection pairs a store key with a pointer to the slice it persists.
type Collection struct {
	Key  string
	Data any
}

// Collections returns the dataset's collections in a fixed order.
func (d *Dataset) Collections() []Collection {
	return []Collection{
		{KeyClients, &d.Clients},
		{KeyLeads, &d.Leads},
		{KeyProducts, &d.Products},
		{KeyOpportunities, &d.Opportunities},
		{KeyTasks, &d.Tasks},
		{KeySupportTickets, &d.SupportTickets},
		{KeySalespeople, &d.Salespeople},
		{KeyInteractions, &d.Interactions},
		{KeyWhatsAppTemplates, &d.WhatsAppTemplates},
		{KeyUsers, &d.Users},
	}
}

// StoreKeys lists every collection key.
func StoreKeys() []string {
	var d Dataset
	cols := d.Collections()
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// Normalize replaces nil collections with empty ones so that they encode
// as [] rather than null.
func (d *Dataset) Normalize() {
	if d.Clients == nil {
		d.Clients = []Client{}
	}
	if d.Leads == nil {
		d.Leads = []Lead{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Opportunities == nil {
		d.Opportunities = []Opportunity{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.SupportTickets == nil {
		d.SupportTickets = []SupportTicket{}
	}
	if d.Salespeople == nil {
		d.Salespeople = []Salesperson{}
	}
	if d.Interactions == nil {
		d.Interactions = []Interaction{}
	}
	if d.WhatsAppTemplates == nil {
		d.WhatsAppTemplates = []WhatsAppTemplate{}
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	for i := range d.Opportunities {
		if d.Opportunities[i].Products == nil {
			d.Opportunities[i].Products = []OpportunityProduct{}
		}
	}
}

// View is the subset of the dataset visible to one user. It never carries
// user accounts.
type View struct {
	Clients           []Client           `json:"clients"`
	Leads             []Lead             `json:"leads"`
	Products          []Product          `json:"products"`
	Opportunities     []Opportunity      `json:"opportunities"`
	Tasks             []Task             `json:"tasks"`
	SupportTickets    []SupportTicket    `json:"supportTickets"`
	Salespeople       []Salesperson      `json:"salespeople"`
	Interactions      []Interaction      `json:"interactions"`
	WhatsAppTemplates []WhatsAppTemplate `json:"whatsappTemplates"`
}

// Normalize replaces nil collections with empty ones.
func (v *View) Normalize() {
	ds := Dataset{
		Clients:           v.Clients,
		Leads:             v.Leads,
		Products:          v.Products,
		Opportunities:     v.Opportunities,
		Tasks:             v.Tasks,
		SupportTickets:    v.SupportTickets,
		Salespeople:       v.Salespeople,
		Interactions:      v.Interactions,
		WhatsAppTemplates: v.WhatsAppTemplates,
	}
	ds.Normalize()
	*v = ds.View()
}

// ViewCollections names the collections of a view as they appear in JSON.
var ViewCollections = []string{
	"clients", "leads", "products", "opportunities", "tasks",
	"supportTickets", "salespeople", "interactions", "whatsappTemplates",
}

// Collection returns the named collection slice.
func (v *View) Collection(name string) (any, bool) {
	switch name {
	case "clients":
		return v.Clients, true
	case "leads":
		return v.Leads, true
	case "products":
		return v.Products, true
	case "opportunities":
		return v.Opportunities, true
	case "tasks":
		return v.Tasks, true
	case "supportTickets":
		return v.SupportTickets, true
	case "salespeople":
		return v.Salespeople, true
	case "interactions":
		return v.Interactions, true
	case "whatsappTemplates":
		return v.WhatsAppTemplates, true
	}
	return nil, false
}

// Subset returns a view carrying only the named collection; the others
// are empty.
func (v *View) Subset(name string) (*View, bool) {
	out := &View{}
	switch name {
	case "clients":
		out.Clients = v.Clients
	case "leads":
		out.Leads = v.Leads
	case "products":
		out.Products = v.Products
	case "opportunities":
		out.Opportunities = v.Opportunities
	case "tasks":
		out.Tasks = v.Tasks
	case "supportTickets":
		out.SupportTickets = v.SupportTickets
	case "salespeople":
		out.Salespeople = v.Salespeople
	case "interactions":
		out.Interactions = v.Interactions
	case "whatsappTemplates":
		out.WhatsAppTemplates = v.WhatsAppTemplates
	default:
		return nil, false
	}
	out.Normalize()
	return out, true
}

// View returns the dataset without user accounts.
func (d *Dataset) View() View {
	return View{
		Clients:           d.Clients,
		Leads:             d.Leads,
		Products:          d.Products,
		Opportunities:     d.Opportunities,
		Tasks:             d.Tasks,
		SupportTickets:    d.SupportTickets,
		Salespeople:       d.Salespeople,
		Interactions:      d.Interactions,
		WhatsAppTemplates: d.WhatsAppTemplates,
	}
}

// FindClient returns the client with the given ID.
func (d *Dataset) FindClient(id string) (*Client, int) {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return &d.Clients[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindLead(id string) (*Lead, int) {
	for i := range d.Leads {
		if d.Leads[i].ID == id {
			return &d.Leads[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindProduct(id string) (*Product, int) {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindOpportunity(id string) (*Opportunity, int) {
	for i := range d.Opportunities {
		if d.Opportunities[i].ID == id {
			return &d.Opportunities[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindTask(id string) (*Task, int) {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i], i
		}
	}
	return nil, -1
}

// FindClosingTask returns the task mirroring the given opportunity.
func (d *Dataset) FindClosingTask(opportunityID string) (*Task, int) {
	for i := range d.Tasks {
		if d.Tasks[i].OpportunityID == opportunityID && d.Tasks[i].IsClosingTask() {
			return &d.Tasks[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindTicket(id string) (*SupportTicket, int) {
	for i := range d.SupportTickets {
		if d.SupportTickets[i].ID == id {
			return &d.SupportTickets[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindSalesperson(id string) (*Salesperson, int) {
	for i := range d.Salespeople {
		if d.Salespeople[i].ID == id {
			return &d.Salespeople[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindInteraction(id string) (*Interaction, int) {
	for i := range d.Interactions {
		if d.Interactions[i].ID == id {
			return &d.Interactions[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindTemplate(id string) (*WhatsAppTemplate, int) {
	for i := range d.WhatsAppTemplates {
		if d.WhatsAppTemplates[i].ID == id {
			return &d.WhatsAppTemplates[i], i
		}
	}
	return nil, -1
}

func (d *Dataset) FindUser(id string) (*User, int) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], i
		}
	}
	return nil, -1
}
