// ABOUTME: Record, view and backup endpoints of the HTTP API
// ABOUTME: Every handler runs as the authenticated user and defers rules to the CRM service
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/medcrm/backup"
	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
	"github.com/harperreed/medcrm/viz"
)

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.View(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	name := r.URL.Query().Get("collection")
	if name == "" {
		writeJSON(w, http.StatusOK, view)
		return
	}
	subset, ok := view.Subset(name)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown collection %q", errBadRequest, name))
		return
	}
	writeJSON(w, http.StatusOK, subset)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Search(r.Context(), userFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context(), userFrom(r.Context()), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.View(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	svg, err := viz.NewGraphGenerator(view).GenerateSVG(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ResetData(r.Context(), userFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// entity wires one collection's create, update and delete endpoints.
type entity[T any] struct {
	create func(ctx context.Context, me *models.User, v T) (any, error)
	update func(ctx context.Context, me *models.User, v T) (any, error)
	remove func(ctx context.Context, me *models.User, id string) error
	setID  func(v *T, id string)
}

func mount[T any](r chi.Router, path string, e entity[T]) {
	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		v, err := decode[T](r)
		if err != nil {
			writeError(w, err)
			return
		}
		created, err := e.create(r.Context(), userFrom(r.Context()), v)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		v, err := decode[T](r)
		if err != nil {
			writeError(w, err)
			return
		}
		e.setID(&v, chi.URLParam(r, "id"))
		updated, err := e.update(r.Context(), userFrom(r.Context()), v)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})

	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := e.remove(r.Context(), userFrom(r.Context()), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
	})
}

// statusRoute mounts PUT <path>/{id}/<field> taking {"<field>": value}.
func statusRoute[T any](r chi.Router, path, field string, set func(ctx context.Context, me *models.User, id, value string) (T, error)) {
	r.Put(path+"/{id}/"+field, func(w http.ResponseWriter, r *http.Request) {
		body, err := decode[map[string]string](r)
		if err != nil {
			writeError(w, err)
			return
		}
		value, ok := body[field]
		if !ok || value == "" {
			writeError(w, fmt.Errorf("%w: %s is required", errBadRequest, field))
			return
		}
		updated, err := set(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"), value)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})
}

// lift adapts a typed service call to an entity hook.
func lift[T any](fn func(ctx context.Context, me *models.User, v T) (T, error)) func(context.Context, *models.User, T) (any, error) {
	return func(ctx context.Context, me *models.User, v T) (any, error) {
		return fn(ctx, me, v)
	}
}

type salespersonRequest struct {
	models.Salesperson
	Password string `json:"password"`
}

type convertLine struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

type convertRequest struct {
	Products      []convertLine `json:"products"`
	CloseDate     string        `json:"closeDate"`
	Stage         string        `json:"stage"`
	SalespersonID string        `json:"salespersonId"`
}

type templateRequest struct {
	TemplateID string `json:"templateId"`
	LeadID     string `json:"leadId"`
	ProductID  string `json:"productId"`
}

func (s *Server) recordRoutes(r chi.Router) {
	svc := s.svc

	mount(r, "/clients", entity[models.Client]{
		create: lift(svc.AddClient),
		update: lift(svc.UpdateClient),
		remove: svc.DeleteClient,
		setID:  func(v *models.Client, id string) { v.ID = id },
	})

	mount(r, "/leads", entity[models.Lead]{
		create: lift(svc.AddLead),
		update: lift(svc.UpdateLead),
		remove: svc.DeleteLead,
		setID:  func(v *models.Lead, id string) { v.ID = id },
	})
	statusRoute(r, "/leads", "status", svc.SetLeadStatus)
	r.Post("/leads/{id}/convert", s.handleConvert)

	mount(r, "/opportunities", entity[models.Opportunity]{
		create: func(ctx context.Context, me *models.User, o models.Opportunity) (any, error) {
			if o.Value == 0 {
				o.Value = models.LineTotal(o.Products)
			}
			return svc.AddOpportunity(ctx, me, o, o.ClientName)
		},
		update: lift(svc.UpdateOpportunity),
		remove: svc.DeleteOpportunity,
		setID:  func(v *models.Opportunity, id string) { v.ID = id },
	})
	statusRoute(r, "/opportunities", "stage", svc.SetOpportunityStage)

	mount(r, "/tasks", entity[models.Task]{
		create: lift(svc.AddTask),
		update: lift(svc.UpdateTask),
		remove: svc.DeleteTask,
		setID:  func(v *models.Task, id string) { v.ID = id },
	})
	statusRoute(r, "/tasks", "status", svc.SetTaskStatus)

	mount(r, "/tickets", entity[models.SupportTicket]{
		create: lift(svc.AddTicket),
		update: lift(svc.UpdateTicket),
		remove: svc.DeleteTicket,
		setID:  func(v *models.SupportTicket, id string) { v.ID = id },
	})
	statusRoute(r, "/tickets", "status", svc.SetTicketStatus)

	mount(r, "/interactions", entity[models.Interaction]{
		create: lift(svc.AddInteraction),
		update: lift(svc.UpdateInteraction),
		remove: svc.DeleteInteraction,
		setID:  func(v *models.Interaction, id string) { v.ID = id },
	})

	mount(r, "/products", entity[models.Product]{
		create: lift(svc.AddProduct),
		update: lift(svc.UpdateProduct),
		remove: svc.DeleteProduct,
		setID:  func(v *models.Product, id string) { v.ID = id },
	})

	// A non-empty password on update resets it and forces a change at
	// the next login.
	mount(r, "/salespeople", entity[salespersonRequest]{
		create: func(ctx context.Context, me *models.User, req salespersonRequest) (any, error) {
			return svc.AddSalesperson(ctx, me, req.Salesperson, req.Password)
		},
		update: func(ctx context.Context, me *models.User, req salespersonRequest) (any, error) {
			return svc.UpdateSalesperson(ctx, me, req.Salesperson, req.Password)
		},
		remove: svc.DeleteSalesperson,
		setID:  func(v *salespersonRequest, id string) { v.ID = id },
	})

	mount(r, "/templates", entity[models.WhatsAppTemplate]{
		create: lift(svc.AddTemplate),
		update: lift(svc.UpdateTemplate),
		remove: svc.DeleteTemplate,
		setID:  func(v *models.WhatsAppTemplate, id string) { v.ID = id },
	})
	r.Post("/templates/render", s.handleRenderTemplate)
	r.Post("/templates/send", s.handleSendTemplate)
}

// handleConvert resolves product lines against the actor's catalog and
// turns the lead into an opportunity.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := decode[convertRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	me := userFrom(r.Context())
	view, err := s.svc.View(r.Context(), me)
	if err != nil {
		writeError(w, err)
		return
	}

	in := crm.ConvertInput{
		CloseDate:     req.CloseDate,
		Stage:         req.Stage,
		SalespersonID: req.SalespersonID,
	}
	for _, item := range req.Products {
		line, err := crm.CatalogLine(view.Products, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Products = append(in.Products, line)
	}

	opp, err := s.svc.ConvertLead(r.Context(), me, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, opp)
}

func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[templateRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	msg, err := s.svc.RenderTemplate(r.Context(), userFrom(r.Context()), req.TemplateID, req.LeadID, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleSendTemplate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[templateRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.svc.SendTemplate(r.Context(), userFrom(r.Context()), req.TemplateID, req.LeadID, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) backupRoutes(r chi.Router) {
	r.Get("/backup/full", func(w http.ResponseWriter, r *http.Request) {
		b, err := s.svc.ExportFull(r.Context(), userFrom(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		attach(w, backup.FullFilename(time.Now()), b)
	})

	r.Post("/backup/restore", s.ingest(s.svc.RestoreFull))

	r.Get("/backup/salespeople/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := s.svc.ExportSalesperson(r.Context(), userFrom(r.Context()), id)
		if err != nil {
			writeError(w, err)
			return
		}
		name := id
		for _, sp := range b.Salespeople {
			if sp.ID == id {
				name = sp.Name
			}
		}
		attach(w, backup.SalespersonFilename(name, time.Now()), b)
	})

	r.Get("/backup/workday", func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r.Context())
		b, err := s.svc.ExportWorkday(r.Context(), me)
		if err != nil {
			writeError(w, err)
			return
		}
		attach(w, backup.WorkdayFilename(me.Name, time.Now()), b)
	})

	r.Post("/backup/import", s.ingest(s.svc.ImportFromAdmin))
	r.Post("/backup/merge", s.ingest(s.svc.MergeWorkday))

	r.Get("/export.xlsx", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.svc.ExportWorkbook(r.Context(), userFrom(r.Context()), &buf); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "black-medical-"+time.Now().Format(models.DateLayout)+".xlsx"))
		_, _ = w.Write(buf.Bytes())
	})
}

// ingest reads a raw backup document from the body and hands it to apply.
func (s *Server) ingest(apply func(ctx context.Context, me *models.User, data []byte) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := apply(r.Context(), userFrom(r.Context()), data); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func attach(w http.ResponseWriter, filename string, v any) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, v)
}
