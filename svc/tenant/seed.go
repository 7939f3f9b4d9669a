package tenant

import (
	"context"
	"strings"
)

// Template is a default page template seeded into every new tenant database.
type Template struct {
	Name string
	Body string
}

// Page is an essential content page seeded into every new tenant database.
type Page struct {
	Slug         string
	Title        string
	Body         string
	TemplateName string
}

// defaultTemplates is the minimum template set a site needs to render.
var defaultTemplates = []Template{
	{Name: "default", Body: "<main>{{content}}</main>"},
	{Name: "landing", Body: "<header>{{site_name}}</header><main>{{content}}</main>"},
}

// defaultPages makes a freshly provisioned site servable with no further
// operator action.
var defaultPages = []Page{
	{Slug: "home", Title: "{{site_name}}", Body: "Welcome to {{site_name}}.", TemplateName: "landing"},
	{Slug: "about", Title: "About", Body: "About {{site_name}}.", TemplateName: "default"},
}

// Seed populates the database bound in ctx with default templates and
// essential pages. Upsert-by-natural-key makes it idempotent: re-running
// against an already-seeded database never duplicates content.
func (s *Service) Seed(ctx context.Context, displayName string) error {
	for _, tpl := range defaultTemplates {
		if err := s.store.UpsertTemplate(ctx, tpl); err != nil {
			return err
		}
	}
	for _, page := range defaultPages {
		page.Title = strings.ReplaceAll(page.Title, "{{site_name}}", displayName)
		page.Body = strings.ReplaceAll(page.Body, "{{site_name}}", displayName)
		if err := s.store.UpsertPage(ctx, page); err != nil {
			return err
		}
	}
	return nil
}
