package links

import "github.com/dealflow/backend/internal/domain/link"

// Definitions returns the declared links in declaration order.
// Each call returns a fresh slice with identical contents.
func Definitions() []link.Definition {
	return []link.Definition{
		link.Define(Company, Team),
		link.Define(link.List(Contact), link.List(Tag)),
		link.Define(Deal, Contact),
		link.Define(Deal, Portfolio),
		link.Define(DealScenario, Deal),
		link.Define(link.List(Deal), link.List(Tag)),
		link.Define(Deal, Team),
		link.Define(EmailTemplate, Team),
		link.Define(Portfolio, Contact),
		link.Define(PortfolioEmail, Contact),
		link.Define(PortfolioEmail, Portfolio),
		link.Define(Portfolio, Team),
		link.Define(Project, Company),
		link.Define(Team, File),
		// one tracker per team per billing period
		link.Define(UsageTracker, Team),
	}
}

// Schema registers the entities into a fresh registry and builds the link schema
func Schema() (*link.Schema, *link.EntityRegistry, error) {
	registry := link.NewEntityRegistry()
	if err := Entities(registry); err != nil {
		return nil, nil, err
	}
	schema, err := link.Build(registry, Definitions()...)
	if err != nil {
		return nil, nil, err
	}
	return schema, registry, nil
}
