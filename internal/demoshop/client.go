// Package demoshop drives the demo shop's HTTP surface: login, cart,
// wishlist and comparison list, plus readers for the pages it renders.
package demoshop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/config"
	"github.com/themizzi/demoshop-e2e/internal/models"
	"github.com/themizzi/demoshop-e2e/internal/session"
)

// AuthCookieName is the cookie nopCommerce issues on login
const AuthCookieName = "NOPCOMMERCE.AUTH"

// Errors returned by the client
var (
	ErrMissingAuthCookie = errors.New("login response has no " + AuthCookieName + " cookie")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
)

// Credentials is the JSON body of a login request
type Credentials struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

// AddToCartResult is the JSON body returned by the add-to-cart endpoints
type AddToCartResult struct {
	Success            bool    `json:"success"`
	Message            Message `json:"message"`
	Redirect           string  `json:"redirect"`
	TopCartSection     string  `json:"updatetopcartsectionhtml"`
	TopWishlistSection string  `json:"updatetopwishlistsectionhtml"`
}

// Message is sent as a string on success and as a list of problems on failure
type Message string

// UnmarshalJSON accepts both forms, joining lists with "; "
func (m *Message) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*m = Message(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*m = Message(strings.Join(list, "; "))
	return nil
}

// Client talks to the shop through a session
type Client struct {
	session *session.Session

	// AuthCookie is a slot for the caller to keep the token returned by Login
	AuthCookie string
}

// NewClient creates a client that uses an existing session
func NewClient(s *session.Session) *Client {
	return &Client{session: s}
}

// NewClientForEnv creates a client for a named environment with its own session
func NewClientForEnv(env string) (*Client, error) {
	baseURL, err := config.EnvironmentURL(env)
	if err != nil {
		return nil, err
	}
	return NewClient(session.New(baseURL, session.WithoutRedirects())), nil
}

// Session returns the underlying session
func (c *Client) Session() *session.Session {
	return c.session
}

// Login posts credentials and returns the auth cookie value
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	res, err := c.session.PostJSON(ctx, "/login", Credentials{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to send login request: %w", err)
	}

	for _, cookie := range res.Cookies() {
		if cookie.Name == AuthCookieName && cookie.Value != "" {
			log.Debug().Str("email", email).Msg("logged in")
			return cookie.Value, nil
		}
	}

	// a session that follows redirects only exposes the cookie through its jar
	if value, ok := c.session.Cookie(AuthCookieName); ok && value != "" {
		log.Debug().Str("email", email).Msg("logged in")
		return value, nil
	}

	return "", fmt.Errorf("%w (status %d)", ErrMissingAuthCookie, res.StatusCode())
}

// AddToCart adds the 14.1-inch laptop to the cart of the customer owning token
func (c *Client) AddToCart(ctx context.Context, token string) (*resty.Response, error) {
	return c.session.Request(ctx).
		SetCookie(&http.Cookie{Name: AuthCookieName, Value: token}).
		Post(models.CatalogAddPath(models.Laptop.ID, models.ShoppingCart, 1))
}

// AddProduct adds a product through the category page endpoint
func (c *Client) AddProduct(ctx context.Context, productID int, cartType models.CartType, quantity int) (*resty.Response, error) {
	if quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	return c.session.Post(ctx, models.CatalogAddPath(productID, cartType, quantity), nil)
}

// AddProductDetails adds a product through the product page endpoint with its form fields
func (c *Client) AddProductDetails(ctx context.Context, productID int, cartType models.CartType, form url.Values) (*resty.Response, error) {
	if form == nil {
		form = url.Values{}
	}
	quantityField := fmt.Sprintf("addtocart_%d.EnteredQuantity", productID)
	if form.Get(quantityField) == "" {
		form.Set(quantityField, "1")
	}
	return c.session.PostForm(ctx, models.DetailsAddPath(productID, cartType), form)
}

// AddGiftCard adds a gift card product addressed to card's recipient
func (c *Client) AddGiftCard(ctx context.Context, productID int, cartType models.CartType, card models.GiftCard) (*resty.Response, error) {
	form := url.Values{}
	form.Set(models.GiftCardField(productID, "RecipientName"), card.RecipientName)
	form.Set(models.GiftCardField(productID, "RecipientEmail"), card.RecipientEmail)
	form.Set(models.GiftCardField(productID, "SenderName"), card.SenderName)
	form.Set(models.GiftCardField(productID, "SenderEmail"), card.SenderEmail)
	form.Set(models.GiftCardField(productID, "Message"), card.Message)
	return c.AddProductDetails(ctx, productID, cartType, form)
}

// AddToCompareList puts a product on the comparison list
func (c *Client) AddToCompareList(ctx context.Context, productID int) (*resty.Response, error) {
	return c.session.Get(ctx, "/compareproducts/add/"+strconv.Itoa(productID))
}

// CartPage fetches the shopping cart page
func (c *Client) CartPage(ctx context.Context) (*resty.Response, error) {
	return c.session.Get(ctx, "/cart")
}

// Cart fetches and parses the shopping cart
func (c *Client) Cart(ctx context.Context) (*models.Cart, error) {
	return c.list(ctx, "/cart")
}

// Wishlist fetches and parses the wishlist of the current customer
func (c *Client) Wishlist(ctx context.Context) (*models.Cart, error) {
	return c.list(ctx, "/wishlist")
}

// SharedWishlist fetches and parses a wishlist through its share link
func (c *Client) SharedWishlist(ctx context.Context, shareURL string) (*models.Cart, error) {
	path := shareURL
	if u, err := url.Parse(shareURL); err == nil && u.IsAbs() {
		path = u.RequestURI()
	}
	return c.list(ctx, path)
}

// CompareList fetches the names on the comparison list
func (c *Client) CompareList(ctx context.Context) ([]string, error) {
	res, err := c.get(ctx, "/compareproducts")
	if err != nil {
		return nil, err
	}
	return ParseCompareList(res.Body())
}

func (c *Client) list(ctx context.Context, path string) (*models.Cart, error) {
	res, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseCart(res.Body())
}

func (c *Client) get(ctx context.Context, path string) (*resty.Response, error) {
	res, err := c.session.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, res.StatusCode())
	}
	return res, nil
}

// DecodeAddToCart reads the JSON body of an add-to-cart response
func DecodeAddToCart(res *resty.Response) (*AddToCartResult, error) {
	var result AddToCartResult
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse add-to-cart response: %w", err)
	}
	return &result, nil
}
