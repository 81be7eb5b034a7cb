package demoshop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/models"
)

// ClearCart removes every line from the shopping cart
func (c *Client) ClearCart(ctx context.Context) error {
	return c.clearList(ctx, "/cart", "Update shopping cart")
}

// ClearWishlist removes every line from the wishlist
func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.clearList(ctx, "/wishlist", "Update wishlist")
}

// ClearCompareList empties the comparison list
func (c *Client) ClearCompareList(ctx context.Context) error {
	res, err := c.session.Get(ctx, "/clearcomparelist")
	if err != nil {
		return fmt.Errorf("failed to clear compare list: %w", err)
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("%w: clear compare list returned %d", ErrUnexpectedStatus, res.StatusCode())
	}
	log.Debug().Msg("compare list cleared")
	return nil
}

func (c *Client) clearList(ctx context.Context, path, button string) error {
	list, err := c.list(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read %s before clearing: %w", path, err)
	}
	if len(list.Lines) == 0 {
		return nil
	}

	res, err := c.session.PostForm(ctx, path, removalForm(list, button))
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", path, err)
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("%w: clearing %s returned %d", ErrUnexpectedStatus, path, res.StatusCode())
	}

	log.Debug().Str("list", path).Int("lines", len(list.Lines)).Msg("list cleared")
	return nil
}

// removalForm builds the update form that ticks every remove checkbox
func removalForm(list *models.Cart, button string) url.Values {
	form := url.Values{}
	for _, id := range list.ItemIDs() {
		form.Add("removefromcart", strconv.Itoa(id))
	}
	form.Set("updatecart", button)
	return form
}
