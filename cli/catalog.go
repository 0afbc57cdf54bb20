// ABOUTME: Product catalog, WhatsApp template and outreach CLI commands
// ABOUTME: Templates fill lead and product placeholders into wa.me links
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

// AddProductCommand adds a catalog product
func AddProductCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-product")
	name := fs.String("name", "", "Product name (required)")
	category := fs.String("category", "", "Category")
	price := fs.Float64("price", 0, "Unit price in euros")
	description := fs.String("description", "", "Description")
	image := fs.String("image", "", "Image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	product, err := app.Service.AddProduct(ctx, me, models.Product{
		Name:        *name,
		Category:    *category,
		Price:       *price,
		Description: *description,
		Image:       *image,
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Product created: %s (ID: %s)\n", product.Name, product.ID)
	fmt.Fprintf(app.Out, "  Price: €%s\n", crm.FormatEuro(product.Price))
	return nil
}

func ListProductsCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-products")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	if len(view.Products) == 0 {
		fmt.Fprintln(app.Out, "No products found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tPRICE\tID")
	fmt.Fprintln(w, "----\t--------\t-----\t--")
	for _, p := range view.Products {
		fmt.Fprintf(w, "%s\t%s\t€%s\t%s\n", p.Name, dash(p.Category), crm.FormatEuro(p.Price), p.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d product(s)\n", len(view.Products))
	return nil
}

// UpdateProductCommand patches a product. Existing opportunity lines keep
// the name and price they were sold at.
func UpdateProductCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-product")
	name := fs.String("name", "", "Product name")
	category := fs.String("category", "", "Category")
	price := fs.Float64("price", 0, "Unit price in euros")
	description := fs.String("description", "", "Description")
	image := fs.String("image", "", "Image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "product")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}
	product, ok := find(view.Products, id, func(p models.Product) string { return p.ID })
	if !ok {
		return notFoundErr("product", id)
	}

	if isSet(fs, "name") {
		product.Name = *name
	}
	if isSet(fs, "category") {
		product.Category = *category
	}
	if isSet(fs, "price") {
		product.Price = *price
	}
	if isSet(fs, "description") {
		product.Description = *description
	}
	if isSet(fs, "image") {
		product.Image = *image
	}

	updated, err := app.Service.UpdateProduct(ctx, me, product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Product updated: %s (€%s)\n", updated.Name, crm.FormatEuro(updated.Price))
	return nil
}

// DeleteProductCommand removes a product from the catalog and from every
// opportunity that sold it
func DeleteProductCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-product")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "product")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteProduct(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Product deleted: %s\n", id)
	return nil
}

// AddTemplateCommand adds a WhatsApp template
func AddTemplateCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-template")
	name := fs.String("name", "", "Template name (required)")
	content := fs.String("content", "", "Message text with {NOMBRE_CLIENTE}, {EMPRESA_CLIENTE} and {NOMBRE_PRODUCTO} (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	tmpl, err := app.Service.AddTemplate(ctx, me, models.WhatsAppTemplate{Name: *name, Content: *content})
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Template created: %s (ID: %s)\n", tmpl.Name, tmpl.ID)
	return nil
}

func ListTemplatesCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-templates")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	if len(view.WhatsAppTemplates) == 0 {
		fmt.Fprintln(app.Out, "No templates found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTENT\tID")
	fmt.Fprintln(w, "----\t-------\t--")
	for _, t := range view.WhatsAppTemplates {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Content, t.ID)
	}
	_ = w.Flush()
	return nil
}

func UpdateTemplateCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-template")
	name := fs.String("name", "", "Template name")
	content := fs.String("content", "", "Message text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "template")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}
	tmpl, ok := find(view.WhatsAppTemplates, id, func(t models.WhatsAppTemplate) string { return t.ID })
	if !ok {
		return notFoundErr("template", id)
	}
	if isSet(fs, "name") {
		tmpl.Name = *name
	}
	if isSet(fs, "content") {
		tmpl.Content = *content
	}

	updated, err := app.Service.UpdateTemplate(ctx, me, tmpl)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Template updated: %s\n", updated.Name)
	return nil
}

func DeleteTemplateCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-template")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "template")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteTemplate(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Template deleted: %s\n", id)
	return nil
}

// WhatsAppCommand renders a message for a lead. With --send it is logged
// as an interaction and the wa.me link is printed.
func WhatsAppCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("whatsapp")
	templateID := fs.String("template", "", "Template ID (default greeting when empty)")
	leadID := fs.String("lead", "", "Lead ID (required)")
	productID := fs.String("product", "", "Product ID (required)")
	send := fs.Bool("send", false, "Log the message and print the wa.me link")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *leadID == "" || *productID == "" {
		return fmt.Errorf("--lead and --product are required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if !*send {
		msg, err := app.Service.RenderTemplate(ctx, me, *templateID, *leadID, *productID)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.Out, msg)
		return nil
	}

	out, err := app.Service.SendTemplate(ctx, me, *templateID, *leadID, *productID)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, out.Message)
	fmt.Fprintf(app.Out, "\n✓ Logged as interaction %s\n", out.Interaction.ID)
	fmt.Fprintf(app.Out, "  Open: %s\n", out.URL)
	return nil
}
