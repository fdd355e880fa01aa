// Package catalog provides read-only enemy template lookups. Built-in
// monsters come from a file store loaded at startup; each account can
// layer its own custom monsters on top, and those win on name clashes.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quickroll/initiative/internal/combat"
	"github.com/quickroll/initiative/internal/storage"
)

// Template describes one spawnable monster.
type Template struct {
	Name        string `json:"name"`
	AC          int    `json:"ac"`
	HP          int    `json:"hp"`
	CR          string `json:"cr"`
	MonsterType string `json:"monsterType"`
	DexMod      int    `json:"dexMod,omitempty"`
	ImgURL      string `json:"imgUrl,omitempty"`
}

func (t *Template) Validate() error {
	el := errors.NewErrorList()

	if t.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	if t.AC < 0 || t.AC > combat.MaxAC {
		el.Add(fmt.Errorf("ac must be between 0 and %d", combat.MaxAC))
	}
	if t.HP < 1 || t.HP > combat.MaxHP {
		el.Add(fmt.Errorf("hp must be between 1 and %d", combat.MaxHP))
	}

	return el.Err()
}

// Enemy converts the template into the shape the turn-order engine
// consumes when spawning.
func (t *Template) Enemy() combat.EnemyTemplate {
	return combat.EnemyTemplate{
		Name:        t.Name,
		AC:          t.AC,
		HP:          t.HP,
		DexMod:      t.DexMod,
		MonsterType: t.MonsterType,
		ImgURL:      t.ImgURL,
	}
}

// CustomMonster is an account-owned template.
type CustomMonster struct {
	Template
	ID string `json:"id"`
}

// CustomSource supplies an account's custom monsters. Implemented by
// the account store.
type CustomSource interface {
	CustomMonsters(accountID string) []*CustomMonster
}

// Provider resolves template lookups for spawning and listing.
type Provider struct {
	builtin storage.Storer[*Template]
	custom  CustomSource
	caser   cases.Caser
}

func NewProvider(builtin storage.Storer[*Template], custom CustomSource) *Provider {
	return &Provider{
		builtin: builtin,
		custom:  custom,
		caser:   cases.Title(language.English),
	}
}

// TemplateByName finds a template by display name, case-insensitively.
// The account's custom monsters shadow built-ins of the same name.
func (p *Provider) TemplateByName(accountID, name string) (*Template, bool) {
	if p.custom != nil && accountID != "" {
		for _, m := range p.custom.CustomMonsters(accountID) {
			if strings.EqualFold(m.Name, name) {
				t := m.Template
				return &t, true
			}
		}
	}
	for _, t := range p.builtin.GetAll() {
		if strings.EqualFold(t.Name, name) {
			out := *t
			return &out, true
		}
	}
	return nil, false
}

// Templates lists every template visible to the account, built-ins and
// customs merged, sorted by display name.
func (p *Provider) Templates(accountID string) []*Template {
	seen := map[string]bool{}
	var out []*Template

	if p.custom != nil && accountID != "" {
		for _, m := range p.custom.CustomMonsters(accountID) {
			t := m.Template
			out = append(out, &t)
			seen[strings.ToLower(t.Name)] = true
		}
	}
	for _, t := range p.builtin.GetAll() {
		if seen[strings.ToLower(t.Name)] {
			continue
		}
		c := *t
		c.Name = p.DisplayName(c.Name)
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DisplayName normalizes a built-in template name for display
// ("ancient red dragon" -> "Ancient Red Dragon").
func (p *Provider) DisplayName(name string) string {
	return p.caser.String(name)
}
