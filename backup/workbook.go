// ABOUTME: Spreadsheet export of a CRM view
// ABOUTME: Writes one XLSX sheet per collection with a styled header row
package backup

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harperreed/medcrm/models"
)

type sheet struct {
	name    string
	columns []string
	rows    [][]any
}

func viewSheets(v *models.View) []sheet {
	clients := sheet{name: "Clientes", columns: []string{"ID", "Nombre", "Contacto", "Email", "Teléfono", "Dirección"}}
	for _, c := range v.Clients {
		clients.rows = append(clients.rows, []any{c.ID, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address})
	}

	leads := sheet{name: "Prospectos", columns: []string{"ID", "Nombre", "Empresa", "Email", "Teléfono", "Fuente", "Estado", "Vendedor", "Última interacción"}}
	for _, l := range v.Leads {
		leads.rows = append(leads.rows, []any{l.ID, l.Name, l.Company, l.Email, l.Phone, l.Source, l.Status, l.SalespersonID, l.LastInteractionDate})
	}

	opps := sheet{name: "Oportunidades", columns: []string{"ID", "Cliente", "Etapa", "Valor", "Cierre", "Vendedor", "Productos"}}
	for _, o := range v.Opportunities {
		var lines []string
		for _, p := range o.Products {
			lines = append(lines, fmt.Sprintf("%s x%d", p.ProductName, p.Quantity))
		}
		opps.rows = append(opps.rows, []any{o.ID, o.ClientName, o.Stage, o.Value, o.CloseDate, o.SalespersonID, strings.Join(lines, ", ")})
	}

	tasks := sheet{name: "Tareas", columns: []string{"ID", "Título", "Descripción", "Vence", "Estado", "Vendedor", "Asociado"}}
	for _, t := range v.Tasks {
		tasks.rows = append(tasks.rows, []any{t.ID, t.Title, t.Description, t.DueDate, t.Status, t.SalespersonID, t.AssociatedName})
	}

	tickets := sheet{name: "Soporte", columns: []string{"ID", "Cliente", "Problema", "Estado", "Prioridad", "Creado", "Asignado"}}
	for _, t := range v.SupportTickets {
		tickets.rows = append(tickets.rows, []any{t.ID, t.ClientName, t.Issue, t.Status, t.Priority, t.CreatedDate, t.AssignedTo})
	}

	products := sheet{name: "Productos", columns: []string{"ID", "Nombre", "Categoría", "Precio", "Descripción"}}
	for _, p := range v.Products {
		products.rows = append(products.rows, []any{p.ID, p.Name, p.Category, p.Price, p.Description})
	}

	salespeople := sheet{name: "Vendedores", columns: []string{"ID", "Nombre", "Email", "Teléfono", "Cargo"}}
	for _, sp := range v.Salespeople {
		salespeople.rows = append(salespeople.rows, []any{sp.ID, sp.Name, sp.Email, sp.Phone, sp.Title})
	}

	interactions := sheet{name: "Interacciones", columns: []string{"ID", "Fecha", "Tipo", "Prospecto", "Oportunidad", "Vendedor", "Notas"}}
	for _, i := range v.Interactions {
		interactions.rows = append(interactions.rows, []any{i.ID, i.Date.Format("2006-01-02 15:04:05"), i.Type, i.LeadID, i.OpportunityID, i.SalespersonID, i.Notes})
	}

	return []sheet{clients, leads, opps, tasks, tickets, products, salespeople, interactions}
}

// SheetNames lists the sheets WriteWorkbook produces, in order.
func SheetNames() []string {
	var names []string
	for _, s := range viewSheets(&models.View{}) {
		names = append(names, s.name)
	}
	return names
}

// WriteWorkbook writes v as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, v *models.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for idx, s := range viewSheets(v) {
		if idx == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to name sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		for i, col := range s.columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(s.name, cell, col); err != nil {
				return err
			}
			if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
				return err
			}
		}

		for rowIdx, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", s.name, rowIdx+1, err)
			}
		}

		for i := range s.columns {
			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColWidth(s.name, col, col, 18)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
