// ABOUTME: WhatsApp message templates and product outreach
// ABOUTME: Renders placeholders for a lead and product and logs sent messages
package crm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/harperreed/medcrm/models"
)

// Placeholders understood by templates.
const (
	PlaceholderClientName   = "{NOMBRE_CLIENTE}"
	PlaceholderCompany      = "{EMPRESA_CLIENTE}"
	PlaceholderProductName  = "{NOMBRE_PRODUCTO}"
	PlaceholderProductPrice = "{PRECIO_PRODUCTO}"
	PlaceholderDescription  = "{DESCRIPCION_PRODUCTO}"
)

const defaultMessage = "Hola %s, gusto en saludarte.\n\nTe comparto la información del equipo médico que podría interesarte:\n\n*%s*\n%s\n\n*Precio:* €%s\n\nQuedo atento a tus dudas."

func validateTemplate(t *models.WhatsAppTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name", "template name is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return invalid("content", "template content is required")
	}
	return nil
}

func (s *Service) AddTemplate(ctx context.Context, actor *models.User, tmpl models.WhatsAppTemplate) (models.WhatsAppTemplate, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := validateTemplate(&tmpl); err != nil {
			return err
		}
		tmpl.ID = s.ids.New(PrefixTemplate)
		ds.WhatsAppTemplates = prepend(ds.WhatsAppTemplates, tmpl)
		return nil
	})
	return tmpl, err
}

func (s *Service) UpdateTemplate(ctx context.Context, actor *models.User, tmpl models.WhatsAppTemplate) (models.WhatsAppTemplate, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindTemplate(tmpl.ID)
		if existing == nil {
			return notFound("template", tmpl.ID)
		}
		if err := validateTemplate(&tmpl); err != nil {
			return err
		}
		*existing = tmpl
		return nil
	})
	return tmpl, err
}

func (s *Service) DeleteTemplate(ctx context.Context, actor *models.User, templateID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if t, _ := ds.FindTemplate(templateID); t == nil {
			return notFound("template", templateID)
		}
		ds.WhatsAppTemplates = filter(ds.WhatsAppTemplates, func(t models.WhatsAppTemplate) bool { return t.ID != templateID })
		return nil
	})
}

// RenderMessage fills a template for lead and product. A nil template
// yields the built-in greeting.
func RenderMessage(tmpl *models.WhatsAppTemplate, lead models.Lead, product models.Product) string {
	clientName := orDefault(lead.Name, "Cliente")
	productName := orDefault(product.Name, "Producto")
	price := FormatEuro(product.Price)

	if tmpl == nil {
		return fmt.Sprintf(defaultMessage, clientName, productName, product.Description, price)
	}

	r := strings.NewReplacer(
		PlaceholderClientName, clientName,
		PlaceholderCompany, lead.Company,
		PlaceholderProductName, productName,
		PlaceholderProductPrice, price,
		PlaceholderDescription, product.Description,
	)
	return r.Replace(tmpl.Content)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// RenderTemplate renders templateID (or the default message when empty)
// for a lead and product visible to actor.
func (s *Service) RenderTemplate(ctx context.Context, actor *models.User, templateID, leadID, productID string) (string, error) {
	ds, me, _, err := s.read(ctx, actor)
	if err != nil {
		return "", err
	}
	return renderFor(ds, me, templateID, leadID, productID)
}

func renderFor(ds *models.Dataset, me *models.User, templateID, leadID, productID string) (string, error) {
	lead, _ := ds.FindLead(leadID)
	if lead == nil || !canManage(me, lead.SalespersonID) {
		return "", notFound("lead", leadID)
	}
	product, _ := ds.FindProduct(productID)
	if product == nil {
		return "", notFound("product", productID)
	}

	var tmpl *models.WhatsAppTemplate
	if templateID != "" {
		tmpl, _ = ds.FindTemplate(templateID)
		if tmpl == nil {
			return "", notFound("template", templateID)
		}
	}
	return RenderMessage(tmpl, *lead, *product), nil
}

// Outreach is a rendered message ready to send over WhatsApp.
type Outreach struct {
	Message     string             `json:"message"`
	URL         string             `json:"url"`
	Interaction models.Interaction `json:"interaction"`
}

// SendTemplate renders a message for the lead, builds the wa.me link for
// the lead's phone and logs the message as an interaction.
func (s *Service) SendTemplate(ctx context.Context, actor *models.User, templateID, leadID, productID string) (Outreach, error) {
	var out Outreach
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		msg, err := renderFor(ds, me, templateID, leadID, productID)
		if err != nil {
			return err
		}
		lead, _ := ds.FindLead(leadID)
		phone := digitsOnly(lead.Phone)
		if phone == "" {
			return invalid("phone", "lead %s has no phone number", leadID)
		}

		interaction, err := s.addInteraction(ds, me, models.Interaction{
			LeadID:        leadID,
			SalespersonID: me.ID,
			Type:          models.InteractionMessage,
			Notes:         msg,
		})
		if err != nil {
			return err
		}

		out = Outreach{
			Message:     msg,
			URL:         WhatsAppURL(phone, msg),
			Interaction: interaction,
		}
		return nil
	})
	return out, err
}

// WhatsAppURL builds a click-to-chat link.
func WhatsAppURL(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digitsOnly(phone) + "?text=" + text
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
