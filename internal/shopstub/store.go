package shopstub

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/themizzi/demoshop-e2e/internal/models"
)

// Store errors
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("login was unsuccessful")
)

// Customer is a registered or guest shopper
type Customer struct {
	ID           string
	Email        string
	Cart         []models.CartLine
	Wishlist     []models.CartLine
	WishlistGUID string
	Compare      []int
}

// Registered reports whether the customer logged in
func (c *Customer) Registered() bool {
	return c.Email != ""
}

func (c *Customer) lines(cartType models.CartType) *[]models.CartLine {
	if cartType == models.Wishlist {
		return &c.Wishlist
	}
	return &c.Cart
}

// Store keeps customers, sessions and lists in memory
type Store struct {
	mu         sync.Mutex
	accounts   map[string]string
	registered map[string]*Customer
	sessions   map[string]*Customer
	guests     map[string]*Customer
	nextItemID int
}

// NewStore creates a store with the given email/password accounts
func NewStore(accounts map[string]string) *Store {
	s := &Store{
		accounts:   make(map[string]string),
		registered: make(map[string]*Customer),
		sessions:   make(map[string]*Customer),
		guests:     make(map[string]*Customer),
		nextItemID: 1000,
	}
	for email, password := range accounts {
		s.accounts[strings.ToLower(email)] = password
	}
	return s
}

// Login checks credentials and returns a new auth token for the account
func (s *Store) Login(email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	want, ok := s.accounts[key]
	if !ok || want != password {
		return "", ErrInvalidCredentials
	}

	customer, ok := s.registered[key]
	if !ok {
		customer = &Customer{
			ID:           uuid.NewString(),
			Email:        email,
			WishlistGUID: uuid.NewString(),
		}
		s.registered[key] = customer
	}

	token := uuid.NewString()
	s.sessions[token] = customer
	return token, nil
}

// Logout forgets an auth token
func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// CustomerByToken returns the customer owning an auth token
func (s *Store) CustomerByToken(token string) (*Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[token]
	return c, ok
}

// Guest returns the guest customer for id, creating one when id is unknown
func (s *Store) Guest(id string) *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.guests[id]; ok {
		return c
	}
	c := &Customer{ID: uuid.NewString(), WishlistGUID: uuid.NewString()}
	s.guests[c.ID] = c
	return c
}

// AddItem puts quantity of a product on a list. Lines with the same product
// and attributes are merged.
func (s *Store) AddItem(c *Customer, product models.Product, cartType models.CartType, quantity int, attributes []string) (int, error) {
	if quantity <= 0 {
		return 0, models.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := c.lines(cartType)
	for i := range *lines {
		line := &(*lines)[i]
		if line.ProductID == product.ID && sameAttributes(line.Attributes, attributes) {
			line.Quantity += quantity
			line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			return countItems(*lines), nil
		}
	}

	s.nextItemID++
	*lines = append(*lines, models.CartLine{
		ItemID:     s.nextItemID,
		ProductID:  product.ID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   quantity,
		Subtotal:   product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Attributes: attributes,
	})
	return countItems(*lines), nil
}

// UpdateItems removes the listed item ids and applies quantity changes
func (s *Store) UpdateItems(c *Customer, cartType models.CartType, remove []int, quantities map[int]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[int]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}

	lines := c.lines(cartType)
	kept := (*lines)[:0]
	for _, line := range *lines {
		if removed[line.ItemID] {
			continue
		}
		if qty, ok := quantities[line.ItemID]; ok {
			if qty <= 0 {
				continue
			}
			line.Quantity = qty
			line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		}
		kept = append(kept, line)
	}
	*lines = kept
}

// List returns a snapshot of a customer's cart or wishlist
func (s *Store) List(c *Customer, cartType models.CartType) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := *c.lines(cartType)
	cart := models.Cart{Lines: make([]models.CartLine, len(src))}
	copy(cart.Lines, src)
	cart.Total = cart.SumOfLines()
	return cart
}

// Count returns the number of items on a list
func (s *Store) Count(c *Customer, cartType models.CartType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countItems(*c.lines(cartType))
}

// WishlistByGUID finds the wishlist published under a share GUID
func (s *Store) WishlistByGUID(guid string) (models.Cart, error) {
	s.mu.Lock()
	var owner *Customer
	for _, c := range s.registered {
		if c.WishlistGUID == guid {
			owner = c
			break
		}
	}
	if owner == nil {
		for _, c := range s.guests {
			if c.WishlistGUID == guid {
				owner = c
				break
			}
		}
	}
	s.mu.Unlock()

	if owner == nil {
		return models.Cart{}, ErrNotFound
	}
	return s.List(owner, models.Wishlist), nil
}

// AddCompare puts a product on the comparison list once
func (s *Store) AddCompare(c *Customer, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range c.Compare {
		if id == productID {
			return
		}
	}
	c.Compare = append(c.Compare, productID)
}

// ClearCompare empties the comparison list
func (s *Store) ClearCompare(c *Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Compare = nil
}

// CompareProducts returns the products on the comparison list
func (s *Store) CompareProducts(c *Customer) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0, len(c.Compare))
	for _, id := range c.Compare {
		if p, ok := models.ProductByID(id); ok {
			products = append(products, p)
		}
	}
	return products
}

func countItems(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func sameAttributes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
