// Package shopstub is an in-memory imitation of the demo shop's HTTP surface.
// Pages use the live shop's markup classes so the same readers and selectors
// work against both.
package shopstub

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/models"
)

const (
	authCookieName  = "NOPCOMMERCE.AUTH"
	guestCookieName = "Nop.customer"
)

//go:embed templates/*.html
var templateFS embed.FS

type customerKey struct{}

// Server serves the stub shop
type Server struct {
	store     *Store
	templates *template.Template
	router    chi.Router
}

// New creates a stub shop backed by store
func New(store *Store) (*Server, error) {
	funcMap := template.FuncMap{
		"price": models.FormatPrice,
		"slug": func(productID int) string {
			p, _ := models.ProductByID(productID)
			return p.Slug
		},
	}

	tmpl, err := template.New("shop").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		store:     store,
		templates: tmpl,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(s.resolveCustomer)

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	r.Post("/addproducttocart/catalog/{productID}/{cartType}/{quantity}", s.handleAddFromCatalog)
	r.Post("/addproducttocart/details/{productID}/{cartType}", s.handleAddFromDetails)

	r.Get("/cart", s.handleList(models.ShoppingCart))
	r.Post("/cart", s.handleUpdateList(models.ShoppingCart))
	r.Get("/wishlist", s.handleList(models.Wishlist))
	r.Post("/wishlist", s.handleUpdateList(models.Wishlist))
	r.Get("/wishlist/{guid}", s.handleSharedWishlist)

	r.Get("/compareproducts", s.handleCompare)
	r.Get("/compareproducts/add/{productID}", s.handleAddCompare)
	r.Get("/clearcomparelist", s.handleClearCompare)

	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// resolveCustomer attaches the logged-in customer, or a guest tracked by cookie
func (s *Server) resolveCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var customer *Customer
		if c, err := r.Cookie(authCookieName); err == nil {
			customer, _ = s.store.CustomerByToken(c.Value)
		}
		if customer == nil {
			var guestID string
			if c, err := r.Cookie(guestCookieName); err == nil {
				guestID = c.Value
			}
			customer = s.store.Guest(guestID)
			if customer.ID != guestID {
				http.SetCookie(w, &http.Cookie{Name: guestCookieName, Value: customer.ID, Path: "/", HttpOnly: true})
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), customerKey{}, customer)))
	})
}

func customerFrom(r *http.Request) *Customer {
	return r.Context().Value(customerKey{}).(*Customer)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("stub request")
	})
}

type headerData struct {
	Registered  bool
	Email       string
	CartQty     int
	WishlistQty int
}

type tableData struct {
	Lines    []models.CartLine
	Editable bool
}

type pageData struct {
	Title    string
	Header   headerData
	Cart     models.Cart
	Table    tableData
	Products []models.Product
	Error    string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	customer := customerFrom(r)
	data.Header = headerData{
		Registered:  customer.Registered(),
		Email:       customer.Email,
		CartQty:     s.store.Count(customer, models.ShoppingCart),
		WishlistQty: s.store.Count(customer, models.Wishlist),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
