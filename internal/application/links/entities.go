// Package links holds the relationship table the business modules depend on.
package links

import (
	"fmt"

	"github.com/dealflow/backend/internal/domain/link"
)

// Owning modules of the linkable entities
const (
	CompanyModule   = "company"
	TeamModule      = "team"
	DealModule      = "deal"
	PortfolioModule = "portfolio"
	TagModule       = "tag"
	EmailModule     = "email"
	FileModule      = "file"
	UsageModule     = "usage"
)

// Linkable entities
var (
	Company        = link.NewLinkable(CompanyModule, "company")
	Contact        = link.NewLinkable(CompanyModule, "contact")
	Team           = link.NewLinkable(TeamModule, "team")
	Deal           = link.NewLinkable(DealModule, "deal")
	DealScenario   = link.NewLinkable(DealModule, "deal_scenario")
	Portfolio      = link.NewLinkable(PortfolioModule, "portfolio")
	Project        = link.NewLinkable(PortfolioModule, "project")
	PortfolioEmail = link.NewLinkable(PortfolioModule, "portfolio_email")
	Tag            = link.NewLinkable(TagModule, "tag")
	Email          = link.NewLinkable(EmailModule, "email")
	EmailTemplate  = link.NewLinkable(EmailModule, "email_template")
	File           = link.NewLinkable(FileModule, "file")
	UsageTracker   = link.NewLinkable(UsageModule, "usage_tracker")
)

// exports lists the entities each module exposes, in registration order
var exports = []struct {
	module   string
	entities []link.Linkable
}{
	{CompanyModule, []link.Linkable{Company, Contact}},
	{TeamModule, []link.Linkable{Team}},
	{DealModule, []link.Linkable{Deal, DealScenario}},
	{PortfolioModule, []link.Linkable{Portfolio, Project, PortfolioEmail}},
	{TagModule, []link.Linkable{Tag}},
	{EmailModule, []link.Linkable{Email, EmailTemplate}},
	{FileModule, []link.Linkable{File}},
	{UsageModule, []link.Linkable{UsageTracker}},
}

// Entities registers every linkable exported by the owning modules
func Entities(r *link.EntityRegistry) error {
	for _, e := range exports {
		names := make([]string, 0, len(e.entities))
		for _, l := range e.entities {
			names = append(names, l.Entity)
		}
		if err := r.Register(e.module, names...); err != nil {
			return fmt.Errorf("failed to register %s entities: %w", e.module, err)
		}
	}
	return nil
}
