package devserver

import (
	"fmt"
	"strings"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/auth"
	"github.com/slicemaster/storefront/pkg/collection"
)

// user is an account record. The profile is what /auth endpoints return;
// the hash never leaves the server.
type user struct {
	profile      session.Profile
	passwordHash string
}

// nextID hands out sequential ids with a readable prefix. Callers hold s.mu.
func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, 1000+s.seq)
}

// DemoEmail and DemoPassword are the seeded account, handy for manual runs.
const (
	DemoEmail    = "demo@slicemaster.dev"
	DemoPassword = "pizza123"
)

func (s *Server) seed() {
	hash, _ := auth.HashPassword(DemoPassword)
	demo := &user{
		profile: session.Profile{
			ID:        "U-1",
			FirstName: "Demo",
			LastName:  "User",
			Email:     DemoEmail,
			Phone:     "9999900000",
		},
		passwordHash: hash,
	}
	s.users[demo.profile.Email] = demo
	s.usersByID[demo.profile.ID] = demo

	s.addresses[demo.profile.ID] = []api.Address{{
		ID:        "ADDR-1",
		Label:     "Home",
		Street:    "42 Baker Street",
		City:      "Mumbai",
		State:     "MH",
		Pincode:   "400001",
		IsDefault: true,
	}}

	s.pizzas = []api.Pizza{
		{ID: "P-1", Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 199, Category: "vegetarian", ImageURL: "/img/margherita.jpg"},
		{ID: "P-2", Name: "Farmhouse", Description: "Onion, capsicum, tomato, mushroom", Price: 249, Category: "vegetarian", ImageURL: "/img/farmhouse.jpg"},
		{ID: "P-3", Name: "Pepperoni", Description: "Double pepperoni, extra cheese", Price: 329, Category: "non-vegetarian", ImageURL: "/img/pepperoni.jpg"},
		{ID: "P-4", Name: "BBQ Chicken", Description: "Smoky barbecue chicken, red onion", Price: 349, Category: "non-vegetarian", ImageURL: "/img/bbq-chicken.jpg"},
		{ID: "P-5", Name: "Paneer Tikka", Description: "Tandoori paneer, mint drizzle", Price: 279, Category: "specials", ImageURL: "/img/paneer-tikka.jpg"},
		{ID: "P-6", Name: "Quattro Formaggi", Description: "Four cheese blend", Price: 369, Category: "specials", ImageURL: "/img/quattro.jpg"},
	}

	s.offers = []api.Offer{
		{ID: "OFF-1", Code: "SLICE20", Description: "20% off on orders above 500", Discount: 20},
		{ID: "OFF-2", Code: "FREESHIP", Description: "Free delivery on your first order", Discount: 0},
	}
}

// categories derives the category list from the seeded menu.
func (s *Server) categories() []api.Category {
	seen := map[string]bool{}
	var out []api.Category
	for _, p := range s.pizzas {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, api.Category{Slug: p.Category, Name: titleCase(p.Category)})
	}
	return out
}

func titleCase(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// pizzaByID looks a pizza up in the seeded menu. Callers hold s.mu.
func (s *Server) pizzaByID(id string) (api.Pizza, bool) {
	return collection.First(s.pizzas, func(p api.Pizza) bool { return p.ID == id })
}
