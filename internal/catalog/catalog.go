package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// index is built once from the skills table.
type index struct {
	byID   map[string]*Skill
	byRole map[Role][]Skill
}

var idx = buildIndex(skills)

func buildIndex(all []Skill) *index {
	if err := validateSkills(all); err != nil {
		panic(fmt.Sprintf("invalid skill catalog: %v", err))
	}
	ix := &index{
		byID:   make(map[string]*Skill, len(all)),
		byRole: make(map[Role][]Skill),
	}
	for i := range all {
		ix.byID[all[i].ID] = &all[i]
		for _, r := range all[i].Roles {
			ix.byRole[r] = append(ix.byRole[r], all[i])
		}
	}
	return ix
}

// validateSkills rejects duplicate ids and unknown roles.
func validateSkills(all []Skill) error {
	var errs []string
	seen := make(map[string]bool, len(all))
	for _, s := range all {
		if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		seen[s.ID] = true
		if len(s.Roles) == 0 {
			errs = append(errs, fmt.Sprintf("skill %q has no roles", s.ID))
		}
		for _, r := range s.Roles {
			if !r.Valid() {
				errs = append(errs, fmt.Sprintf("skill %q references unknown role %q", s.ID, r))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// GetSkill returns a skill by ID.
func GetSkill(id string) (Skill, error) {
	s, ok := idx.byID[id]
	if !ok {
		return Skill{}, fmt.Errorf("skill not found: %q", id)
	}
	return *s, nil
}

// HasSkill reports whether id is in the catalog.
func HasSkill(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

// SkillName returns the display name for id, or id itself when unknown.
func SkillName(id string) string {
	if s, ok := idx.byID[id]; ok {
		return s.Name
	}
	return id
}

// AllSkills returns the whole catalog in display order.
func AllSkills() []Skill {
	return slices.Clone(skills)
}

// SkillsForRole returns the skills assessed for a role, in catalog order.
func SkillsForRole(r Role) []Skill {
	return slices.Clone(idx.byRole[r])
}

// FilterSkills applies include/exclude lists to a role's skills and returns
// the surviving ids in catalog order. A non-empty include list acts as an
// allow-list; exclude always subtracts.
func FilterSkills(r Role, include, exclude []string) []string {
	allowed := toSet(include)
	denied := toSet(exclude)

	var out []string
	for _, s := range idx.byRole[r] {
		if len(allowed) > 0 && !allowed[s.ID] {
			continue
		}
		if denied[s.ID] {
			continue
		}
		out = append(out, s.ID)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
