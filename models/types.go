// ABOUTME: Data models for CRM entities
// ABOUTME: Defines clients, leads, opportunities, tasks, tickets, salespeople, users and their enums
package models

import (
	"time"
)

// AdminID is the canonical administrator account. Records orphaned by a
// deleted salesperson are reassigned to it.
const AdminID = "ADM"

// Roles.
const (
	RoleAdmin       = "admin"
	RoleSalesperson = "salesperson"
)

// LeadStatus values.
const (
	LeadStatusNew       = "Nuevo"
	LeadStatusContacted = "Contactado"
	LeadStatusQualified = "Calificado"
	LeadStatusLost      = "Perdido"
)

// Opportunity pipeline stages.
const (
	StageProspecting = "Prospección"
	StageProposal    = "Propuesta"
	StageNegotiation = "Negociación"
	StageWon         = "Ganada"
	StageLost        = "Perdida"
)

// Stages lists the pipeline in display order.
var Stages = []string{StageProspecting, StageProposal, StageNegotiation, StageWon, StageLost}

// TaskStatus values.
const (
	TaskStatusPending    = "Pendiente"
	TaskStatusInProgress = "En Progreso"
	TaskStatusCompleted  = "Completada"
)

// Support ticket statuses.
const (
	TicketStatusOpen       = "Abierto"
	TicketStatusInProgress = "En Proceso"
	TicketStatusClosed     = "Cerrado"
)

// Support ticket priorities.
const (
	PriorityLow    = "Baja"
	PriorityMedium = "Media"
	PriorityHigh   = "Alta"
)

// InteractionType values.
const (
	InteractionCall    = "Llamada"
	InteractionEmail   = "Email"
	InteractionMessage = "Mensaje"
	InteractionMeeting = "Reunión"
)

// DateLayout is the calendar-date format used by close dates, due dates
// and ticket creation dates.
const DateLayout = "2006-01-02"

type Salesperson struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Title   string `json:"title"`
}

// User is a login account. Salesperson accounts carry a copy of the
// Salesperson profile fields.
type User struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	Title              string `json:"title"`
	Role               string `json:"role"`
	PasswordHash       string `json:"passwordHash,omitempty"`
	MustChangePassword bool   `json:"mustChangePassword,omitempty"`

	// LegacyPassword holds a plaintext password found in data written by
	// older clients. It is hashed into PasswordHash and cleared on load.
	LegacyPassword string `json:"password_DO_NOT_USE,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Profile returns the salesperson profile embedded in the user.
func (u *User) Profile() Salesperson {
	return Salesperson{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
		Title:   u.Title,
	}
}

// ApplyProfile copies the salesperson profile fields onto the user.
func (u *User) ApplyProfile(sp Salesperson) {
	u.Name = sp.Name
	u.Email = sp.Email
	u.Phone = sp.Phone
	u.Address = sp.Address
	u.Title = sp.Title
}

// Public returns a copy of the user without credential material.
func (u User) Public() User {
	u.PasswordHash = ""
	u.LegacyPassword = ""
	return u
}

type Client struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ContactPerson string     `json:"contactPerson"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

type Lead struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Company             string     `json:"company"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	Source              string     `json:"source"`
	Origin              string     `json:"origin,omitempty"`
	Status              string     `json:"status"`
	SalespersonID       string     `json:"salespersonId"`
	LastInteractionDate string     `json:"lastInteractionDate,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
}

// OpportunityProduct is a line item frozen at the time it was added. Later
// catalog edits do not change it.
type OpportunityProduct struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Subtotal returns price × quantity.
func (p OpportunityProduct) Subtotal() float64 {
	return p.Price * float64(p.Quantity)
}

// LineTotal sums the line items.
func LineTotal(products []OpportunityProduct) float64 {
	var total float64
	for _, p := range products {
		total += p.Subtotal()
	}
	return total
}

// Opportunity is a deal in the pipeline. Value is editable and may differ
// from the line-item total to account for discounts or surcharges.
type Opportunity struct {
	ID             string               `json:"id"`
	ClientID       string               `json:"clientId,omitempty"`
	ClientName     string               `json:"clientName"`
	Products       []OpportunityProduct `json:"products"`
	Stage          string               `json:"stage"`
	Value          float64              `json:"value"`
	CloseDate      string               `json:"closeDate"`
	SalespersonID  string               `json:"salespersonId"`
	OriginalLeadID string               `json:"originalLeadId,omitempty"`
	CreatedAt      *time.Time           `json:"createdAt,omitempty"`
}

type Task struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	DueDate          string  `json:"dueDate"`
	SalespersonID    string  `json:"salespersonId"`
	Status           string  `json:"status"`
	ClientID         string  `json:"clientId,omitempty"`
	LeadID           string  `json:"leadId,omitempty"`
	AssociatedName   string  `json:"associatedName,omitempty"`
	OpportunityID    string  `json:"opportunityId,omitempty"`
	OpportunityValue *float64 `json:"opportunityValue,omitempty"`
}

// IsClosingTask reports whether the task mirrors an opportunity. Only
// closing tasks carry a copy of the opportunity value; manual tasks may
// still link an opportunity.
func (t Task) IsClosingTask() bool {
	return t.OpportunityID != "" && t.OpportunityValue != nil
}

type SupportTicket struct {
	ID          string `json:"id"`
	ClientID    string `json:"clientId"`
	ClientName  string `json:"clientName"`
	Issue       string `json:"issue"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedDate string `json:"createdDate"`
	AssignedTo  string `json:"assignedTo"`
}

// Interaction is a timestamped note linked to at most one lead or
// opportunity.
type Interaction struct {
	ID            string    `json:"id"`
	LeadID        string    `json:"leadId,omitempty"`
	OpportunityID string    `json:"opportunityId,omitempty"`
	SalespersonID string    `json:"salespersonId"`
	Type          string    `json:"type"`
	Notes         string    `json:"notes"`
	Date          time.Time `json:"date"`
}

type WhatsAppTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

func IsValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost:
		return true
	}
	return false
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func IsValidTicketStatus(status string) bool {
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func IsValidInteractionType(kind string) bool {
	switch kind {
	case InteractionCall, InteractionEmail, InteractionMessage, InteractionMeeting:
		return true
	}
	return false
}
