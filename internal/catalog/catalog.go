// Package catalog holds the obligation templates attached to regulatory
// roles and resolves them into an owner's initial deadline set.
package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"compliance-tracker/internal/model"
)

// Catalog maps roles to obligation templates. It is pure configuration data:
// a fixed baseline that applies to every role plus role-specific extras.
type Catalog struct {
	Baseline []model.RoleTemplate            `yaml:"baseline"`
	Roles    map[string][]model.RoleTemplate `yaml:"roles"`
}

// Builtin returns the default catalog shipped with the tracker.
func Builtin() *Catalog {
	itrDate := time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC)
	return &Catalog{
		Baseline: []model.RoleTemplate{
			{
				Title:             "GST Return Filing (GSTR-3B)",
				Description:       "Monthly GST return filing",
				Category:          model.CategoryTax,
				IsRecurring:       true,
				RecurrencePattern: model.PatternMonthly,
				DaysAhead:         7,
			},
			{
				Title:             "ITR Filing Deadline",
				Description:       "Annual Income Tax Return filing",
				Category:          model.CategoryTax,
				IsRecurring:       true,
				RecurrencePattern: model.PatternYearly,
				SpecificDate:      &itrDate,
			},
		},
		Roles: map[string][]model.RoleTemplate{
			model.RoleStartup: {
				{
					Title:             "Annual Compliance (MCA)",
					Description:       "File Annual Return and Financial Statements",
					Category:          model.CategoryLegal,
					IsRecurring:       true,
					RecurrencePattern: model.PatternYearly,
					DaysAhead:         30,
				},
				{
					Title:             "Board Meeting Minutes",
					Description:       "Quarterly board meeting and minute filing",
					Category:          model.CategoryLegal,
					IsRecurring:       true,
					RecurrencePattern: model.PatternQuarterly,
					DaysAhead:         14,
				},
			},
			model.RoleFreelancer: {
				{
					Title:             "Quarterly TDS Return",
					Description:       "TDS return filing for professional services",
					Category:          model.CategoryTax,
					IsRecurring:       true,
					RecurrencePattern: model.PatternQuarterly,
					DaysAhead:         21,
				},
				{
					Title:             "Professional Tax Payment",
					Description:       "Monthly professional tax payment",
					Category:          model.CategoryTax,
					IsRecurring:       true,
					RecurrencePattern: model.PatternMonthly,
					DaysAhead:         5,
				},
			},
			model.RoleSmallBusiness: {
				{
					Title:             "Audit Report Filing",
					Description:       "Annual audit report submission",
					Category:          model.CategoryLegal,
					IsRecurring:       true,
					RecurrencePattern: model.PatternYearly,
					DaysAhead:         45,
				},
				{
					Title:             "ESI/EPF Compliance",
					Description:       "Monthly ESI and EPF compliance filing",
					Category:          model.CategoryLegal,
					IsRecurring:       true,
					RecurrencePattern: model.PatternMonthly,
					DaysAhead:         10,
				},
			},
		},
	}
}

// LoadFile reads a catalog from a YAML file and validates it. Deployments use
// this to replace the built-in obligation set without a rebuild.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

// TemplatesFor returns the baseline templates followed by the role-specific
// ones. Unknown roles get the baseline only; this never fails. Order is
// display order and carries no priority.
func (c *Catalog) TemplatesFor(role string) []model.RoleTemplate {
	out := make([]model.RoleTemplate, 0, len(c.Baseline)+len(c.Roles[role]))
	out = append(out, c.Baseline...)
	out = append(out, c.Roles[role]...)
	return out
}

// Validate checks every template for the scheduling and recurrence invariants.
func (c *Catalog) Validate() error {
	check := func(scope string, templates []model.RoleTemplate) error {
		for i, t := range templates {
			if t.Title == "" {
				return fmt.Errorf("%s[%d]: title is required", scope, i)
			}
			hasOffset := t.DaysAhead > 0
			hasDate := t.SpecificDate != nil
			if hasOffset == hasDate {
				return fmt.Errorf("%s[%d] %q: exactly one of days_ahead or specific_date must be set", scope, i, t.Title)
			}
			if t.IsRecurring && !model.ValidPattern(t.RecurrencePattern) {
				return fmt.Errorf("%s[%d] %q: invalid recurrence pattern %q", scope, i, t.Title, t.RecurrencePattern)
			}
		}
		return nil
	}

	if err := check("baseline", c.Baseline); err != nil {
		return err
	}
	for role, templates := range c.Roles {
		if err := check("roles."+role, templates); err != nil {
			return err
		}
	}
	return nil
}
