// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for managing hospitals, clinics and practices
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/medcrm/models"
)

// AddClientCommand adds a new client
func AddClientCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-client")
	name := fs.String("name", "", "Client name (required)")
	contact := fs.String("contact", "", "Contact person")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
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
	client, err := app.Service.AddClient(ctx, me, models.Client{
		Name:          *name,
		ContactPerson: *contact,
		Email:         *email,
		Phone:         *phone,
		Address:       *address,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.ContactPerson != "" {
		fmt.Fprintf(app.Out, "  Contact: %s\n", client.ContactPerson)
	}
	return nil
}

// ListClientsCommand lists the clients visible to the current user
func ListClientsCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-clients")
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

	if len(view.Clients) == 0 {
		fmt.Fprintln(app.Out, "No clients found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTACT\tEMAIL\tPHONE\tID")
	fmt.Fprintln(w, "----\t-------\t-----\t-----\t--")
	for _, c := range view.Clients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, dash(c.ContactPerson), dash(c.Email), dash(c.Phone), c.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d client(s)\n", len(view.Clients))
	return nil
}

// UpdateClientCommand patches the given fields of a client
func UpdateClientCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-client")
	name := fs.String("name", "", "Client name")
	contact := fs.String("contact", "", "Contact person")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "client")
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
	client, ok := find(view.Clients, id, func(c models.Client) string { return c.ID })
	if !ok {
		return notFoundErr("client", id)
	}

	if isSet(fs, "name") {
		client.Name = *name
	}
	if isSet(fs, "contact") {
		client.ContactPerson = *contact
	}
	if isSet(fs, "email") {
		client.Email = *email
	}
	if isSet(fs, "phone") {
		client.Phone = *phone
	}
	if isSet(fs, "address") {
		client.Address = *address
	}

	updated, err := app.Service.UpdateClient(ctx, me, client)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Client updated: %s (ID: %s)\n", updated.Name, updated.ID)
	return nil
}

// DeleteClientCommand deletes a client and everything tied to it
func DeleteClientCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-client")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "client")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteClient(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Client deleted: %s\n", id)
	return nil
}
