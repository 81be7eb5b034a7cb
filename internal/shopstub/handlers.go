package shopstub

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/models"
)

const loginFailedMessage = "Login was unsuccessful. Please correct the errors and try again."

// addToCartResponse mirrors the JSON the shop returns from its add-to-cart endpoints
type addToCartResponse struct {
	Success            bool        `json:"success"`
	Message            interface{} `json:"message,omitempty"`
	Redirect           string      `json:"redirect,omitempty"`
	TopCartSection     string      `json:"updatetopcartsectionhtml,omitempty"`
	TopWishlistSection string      `json:"updatetopwishlistsectionhtml,omitempty"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home.html", pageData{})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", pageData{Title: "Login"})
}

// handleLogin accepts the credentials as JSON or as a form post
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string
		Password string
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		creds.Email = r.PostFormValue("Email")
		creds.Password = r.PostFormValue("Password")
	}

	token, err := s.store.Login(creds.Email, creds.Password)
	if err != nil {
		log.Info().Str("email", creds.Email).Msg("login failed")
		s.render(w, r, "login.html", pageData{Title: "Login", Error: loginFailedMessage})
		return
	}

	http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: token, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(authCookieName); err == nil {
		s.store.Logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: authCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleAddFromCatalog(w http.ResponseWriter, r *http.Request) {
	product, cartType, ok := s.productAndCartType(w, r)
	if !ok {
		return
	}

	quantity, err := strconv.Atoi(chi.URLParam(r, "quantity"))
	if err != nil || quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, addToCartResponse{Message: models.ErrInvalidQuantity.Error()})
		return
	}

	if product.RequiresDetails {
		writeJSON(w, http.StatusOK, addToCartResponse{Redirect: product.Path()})
		return
	}

	s.addItem(w, r, product, cartType, quantity, nil)
}

func (s *Server) handleAddFromDetails(w http.ResponseWriter, r *http.Request) {
	product, cartType, ok := s.productAndCartType(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, addToCartResponse{Message: "Invalid form"})
		return
	}

	quantity := 1
	if v := r.PostFormValue(fmt.Sprintf("addtocart_%d.EnteredQuantity", product.ID)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusOK, addToCartResponse{Message: []string{"Quantity should be positive"}})
			return
		}
		quantity = n
	}

	var attributes []string
	if product.GiftCard {
		card := models.GiftCard{
			RecipientName:  strings.TrimSpace(r.PostFormValue(models.GiftCardField(product.ID, "RecipientName"))),
			RecipientEmail: strings.TrimSpace(r.PostFormValue(models.GiftCardField(product.ID, "RecipientEmail"))),
			SenderName:     strings.TrimSpace(r.PostFormValue(models.GiftCardField(product.ID, "SenderName"))),
			SenderEmail:    strings.TrimSpace(r.PostFormValue(models.GiftCardField(product.ID, "SenderEmail"))),
		}
		var problems []string
		if card.RecipientName == "" {
			problems = append(problems, "Enter valid recipient name")
		}
		if card.RecipientEmail == "" {
			problems = append(problems, "Enter valid recipient email")
		}
		if len(problems) > 0 {
			writeJSON(w, http.StatusOK, addToCartResponse{Message: problems})
			return
		}
		attributes = card.Attributes()
	} else {
		attributes = productAttributes(r, product.ID)
	}

	s.addItem(w, r, product, cartType, quantity, attributes)
}

func (s *Server) productAndCartType(w http.ResponseWriter, r *http.Request) (models.Product, models.CartType, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, addToCartResponse{Message: "Invalid product id"})
		return models.Product{}, 0, false
	}
	product, ok := models.ProductByID(id)
	if !ok {
		writeJSON(w, http.StatusOK, addToCartResponse{Message: "No product found with the specified ID"})
		return models.Product{}, 0, false
	}

	raw, err := strconv.Atoi(chi.URLParam(r, "cartType"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, addToCartResponse{Message: models.ErrInvalidCartType.Error()})
		return models.Product{}, 0, false
	}
	cartType, err := models.ParseCartType(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, addToCartResponse{Message: err.Error()})
		return models.Product{}, 0, false
	}

	return product, cartType, true
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request, product models.Product, cartType models.CartType, quantity int, attributes []string) {
	customer := customerFrom(r)
	count, err := s.store.AddItem(customer, product, cartType, quantity, attributes)
	if err != nil {
		writeJSON(w, http.StatusOK, addToCartResponse{Message: []string{err.Error()}})
		return
	}

	log.Debug().Int("product_id", product.ID).Str("list", cartType.String()).Int("count", count).Msg("item added")

	resp := addToCartResponse{Success: true}
	label := fmt.Sprintf("(%d)", count)
	if cartType == models.Wishlist {
		resp.Message = `The product has been added to your <a href="/wishlist">wishlist</a>`
		resp.TopWishlistSection = label
	} else {
		resp.Message = `The product has been added to your <a href="/cart">shopping cart</a>`
		resp.TopCartSection = label
	}
	writeJSON(w, http.StatusOK, resp)
}

// productAttributes records the selected product_attribute_* options of a details form
func productAttributes(r *http.Request, productID int) []string {
	prefix := fmt.Sprintf("product_attribute_%d_", productID)
	var attrs []string
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, v := range values {
			attrs = append(attrs, fmt.Sprintf("%s: %s", strings.TrimPrefix(key, prefix), v))
		}
	}
	sort.Strings(attrs)
	return attrs
}

func (s *Server) handleList(cartType models.CartType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderList(w, r, cartType)
	}
}

// handleUpdateList applies the remove checkboxes and quantity inputs of a cart form
func (s *Server) handleUpdateList(cartType models.CartType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}

		var remove []int
		for _, v := range r.PostForm["removefromcart"] {
			if id, err := strconv.Atoi(v); err == nil {
				remove = append(remove, id)
			}
		}

		quantities := make(map[int]int)
		for key, values := range r.PostForm {
			if !strings.HasPrefix(key, "itemquantity") || len(values) == 0 {
				continue
			}
			id, err := strconv.Atoi(strings.TrimPrefix(key, "itemquantity"))
			if err != nil {
				continue
			}
			if qty, err := strconv.Atoi(values[0]); err == nil {
				quantities[id] = qty
			}
		}

		s.store.UpdateItems(customerFrom(r), cartType, remove, quantities)
		s.renderList(w, r, cartType)
	}
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, cartType models.CartType) {
	customer := customerFrom(r)
	cart := s.store.List(customer, cartType)

	name := "cart.html"
	title := "Shopping Cart"
	if cartType == models.Wishlist {
		name = "wishlist.html"
		title = "Wishlist"
		cart.ShareURL = fmt.Sprintf("%s://%s/wishlist/%s", scheme(r), r.Host, customer.WishlistGUID)
	}

	s.render(w, r, name, pageData{
		Title: title,
		Cart:  cart,
		Table: tableData{Lines: cart.Lines, Editable: true},
	})
}

func (s *Server) handleSharedWishlist(w http.ResponseWriter, r *http.Request) {
	cart, err := s.store.WishlistByGUID(chi.URLParam(r, "guid"))
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	s.render(w, r, "wishlist.html", pageData{
		Title: "Wishlist",
		Cart:  cart,
		Table: tableData{Lines: cart.Lines},
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "compare.html", pageData{
		Title:    "Compare Products",
		Products: s.store.CompareProducts(customerFrom(r)),
	})
}

func (s *Server) handleAddCompare(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, ok := models.ProductByID(id); !ok {
		http.NotFound(w, r)
		return
	}
	s.store.AddCompare(customerFrom(r), id)
	http.Redirect(w, r, "/compareproducts", http.StatusFound)
}

func (s *Server) handleClearCompare(w http.ResponseWriter, r *http.Request) {
	s.store.ClearCompare(customerFrom(r))
	http.Redirect(w, r, "/compareproducts", http.StatusFound)
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
