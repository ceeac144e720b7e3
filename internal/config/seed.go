package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/fairshare/internal/ledger"
)

// Seed describes the bootstrap users and groups. It is fixture data, not a
// core contract: deployments replace it with their own file.
type Seed struct {
	Users  []SeedUser  `yaml:"users"`
	Groups []SeedGroup `yaml:"groups"`
}

// SeedUser is one bootstrap user record.
type SeedUser struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
	Img  string `yaml:"img"`
}

// SeedGroup is one bootstrap group record.
type SeedGroup struct {
	Name                   string           `yaml:"name"`
	Key                    string           `yaml:"key"`
	Img                    string           `yaml:"img"`
	Fee                    float64          `yaml:"fee"`
	Stipend                float64          `yaml:"stipend"`
	People                 map[string]int64 `yaml:"people"` // member key -> starting balance
	GroupCoinReserve       int64            `yaml:"group_coin_reserve"`
	ReserveCurrencyReserve int64            `yaml:"reserve_currency_reserve"`
}

// LoadSeed reads a seed fixture from a YAML file, falling back to the demo
// fixture when path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DemoSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// Apply populates a ledger from the seed.
func (s *Seed) Apply(l *ledger.Ledger) {
	for _, u := range s.Users {
		l.CreateUser(u.Name, u.Key, u.Img)
	}
	for _, g := range s.Groups {
		people := make(map[string]*ledger.Member, len(g.People))
		for key, balance := range g.People {
			people[key] = &ledger.Member{Balance: balance}
		}
		l.CreateGroup(ledger.GroupConfig{
			Name:                   g.Name,
			Key:                    g.Key,
			Img:                    g.Img,
			Fee:                    g.Fee,
			Stipend:                g.Stipend,
			People:                 people,
			GroupCoinReserve:       g.GroupCoinReserve,
			ReserveCurrencyReserve: g.ReserveCurrencyReserve,
		})
	}
}

// DemoSeed answers the built-in demo fixture: three users and four groups,
// one of them the reserve-currency group.
func DemoSeed() *Seed {
	return &Seed{
		Users: []SeedUser{
			{Name: "Alice", Img: "alice.jpeg"},
			{Name: "Bob", Img: "bob.png"},
			{Name: "Carol", Img: "carol.jpeg"},
		},
		Groups: []SeedGroup{
			{Name: "Apples", Fee: 1, Stipend: 1, Img: "apples.jpeg",
				People: map[string]int64{"alice": 100, "bob": 200}},
			{Name: "Bananas", Fee: 2, Stipend: 2, Img: "bananas.jpeg",
				People: map[string]int64{"bob": 300, "carol": 400}},
			{Name: "Coconuts", Fee: 3, Stipend: 3, Img: "coconuts.jpeg",
				People: map[string]int64{"carol": 500, "alice": 600}},
			{Name: ledger.FairShareName, Fee: 2, Stipend: 10, Img: "fairshare.webp",
				People: map[string]int64{"alice": 100, "bob": 100, "carol": 100}},
		},
	}
}
