package catalog

import (
	"fmt"
	"slices"
	"strings"

	"resumescreen/internal/errors"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"
)

// Role is one catalog entry: a role name and its ordered keyword set
type Role struct {
	Name     string
	Keywords []string
}

// Catalog is an immutable, ordered mapping of role name to keyword set.
// Build it once at startup with New or Default and share it freely.
type Catalog struct {
	roles    []Role
	index    map[string]int
	warnings map[string][]string
}

// Default returns the built-in role catalog
func Default() *Catalog {
	cat, err := New([]Role{
		{
			Name: "Data Scientist",
			Keywords: []string{
				"python", "machine learning", "data analysis", "pandas", "numpy", "regression", "classification",
			},
		},
		{
			Name: "Web Developer",
			Keywords: []string{
				"html", "css", "javascript", "react", "node.js", "frontend", "backend", "api",
			},
		},
		{
			Name: "Fitness Trainer",
			Keywords: []string{
				"exercise", "nutrition", "fitness", "training", "wellness", "strength", "cardio",
			},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return cat
}

// New validates roles and returns a catalog holding a private copy of them
func New(roles []Role) (*Catalog, error) {
	if len(roles) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeEmptyCatalog, "role catalog must contain at least one role", nil)
	}

	cat := &Catalog{
		roles:    make([]Role, 0, len(roles)),
		index:    make(map[string]int, len(roles)),
		warnings: make(map[string][]string),
	}

	for _, role := range roles {
		if strings.TrimSpace(role.Name) == "" {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidRole, "role name must not be blank", nil)
		}
		if _, exists := cat.index[role.Name]; exists {
			return nil, errors.NewConfigError(errors.ErrCodeDuplicateRole,
				fmt.Sprintf("role %q is defined more than once", role.Name), nil).
				WithContext("role", role.Name)
		}
		if err := validateKeywords(role); err != nil {
			return nil, err
		}

		for _, keyword := range role.Keywords {
			if lowered := screening.Lower(keyword); screening.Normalize(lowered) != lowered {
				cat.warnings[role.Name] = append(cat.warnings[role.Name], keyword)
			}
		}

		cat.index[role.Name] = len(cat.roles)
		cat.roles = append(cat.roles, Role{Name: role.Name, Keywords: slices.Clone(role.Keywords)})
	}

	return cat, nil
}

func validateKeywords(role Role) error {
	if len(role.Keywords) == 0 {
		return errors.NewConfigError(errors.ErrCodeEmptyKeywordSet,
			fmt.Sprintf("role %q has no keywords", role.Name), nil).
			WithContext("role", role.Name)
	}

	seen := make(map[string]string, len(role.Keywords))
	for _, keyword := range role.Keywords {
		if strings.TrimSpace(keyword) == "" {
			return errors.NewConfigError(errors.ErrCodeInvalidKeyword,
				fmt.Sprintf("role %q has a blank keyword", role.Name), nil).
				WithContext("role", role.Name)
		}
		key := screening.Lower(keyword)
		if previous, dup := seen[key]; dup {
			return errors.NewConfigError(errors.ErrCodeDuplicateKeyword,
				fmt.Sprintf("role %q lists keyword %q more than once (as %q)", role.Name, keyword, previous), nil).
				WithContext("role", role.Name).
				WithContext("keyword", keyword)
		}
		seen[key] = keyword
	}
	return nil
}

// Roles returns role names in catalog order
func (c *Catalog) Roles() []string {
	names := make([]string, len(c.roles))
	for i, role := range c.roles {
		names[i] = role.Name
	}
	return names
}

// Has reports whether role is an exact catalog key
func (c *Catalog) Has(role string) bool {
	_, ok := c.index[role]
	return ok
}

// Keywords returns a copy of the keyword set for role, in catalog order
func (c *Catalog) Keywords(role string) ([]string, error) {
	i, ok := c.index[role]
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownRole,
			fmt.Sprintf("unknown role %q (available: %s)", role, strings.Join(c.Roles(), ", ")), nil).
			WithContext("role", role)
	}
	return slices.Clone(c.roles[i].Keywords), nil
}

// Warnings returns, per role, keywords that normalized resume text can never contain
func (c *Catalog) Warnings() map[string][]string {
	out := make(map[string][]string, len(c.warnings))
	for role, keywords := range c.warnings {
		out[role] = slices.Clone(keywords)
	}
	return out
}

// Summaries describes the catalog for presentation
func (c *Catalog) Summaries() types.RoleList {
	list := types.RoleList{Roles: make([]types.RoleSummary, 0, len(c.roles))}
	for _, role := range c.roles {
		list.Roles = append(list.Roles, types.RoleSummary{
			Name:     role.Name,
			Keywords: slices.Clone(role.Keywords),
			Warnings: slices.Clone(c.warnings[role.Name]),
		})
	}
	return list
}
