package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/themizzi/demoshop-e2e/internal/demoshop"
	"github.com/themizzi/demoshop-e2e/internal/models"
)

// ErrAddRejected is returned when the shop answers an add-to-cart call with success=false
var ErrAddRejected = errors.New("shop rejected the product")

// ShopDependencies holds what the account commands need
type ShopDependencies struct {
	Client   *demoshop.Client
	Email    string
	Password string
	Out      io.Writer
}

func (d ShopDependencies) login(ctx context.Context) (string, error) {
	token, err := d.Client.Login(ctx, d.Email, d.Password)
	if err != nil {
		return "", fmt.Errorf("failed to log in as %s: %w", d.Email, err)
	}
	d.Client.AuthCookie = token
	return token, nil
}

// RunLogin logs in and prints the auth cookie value
func RunLogin(ctx context.Context, deps ShopDependencies) error {
	token, err := deps.login(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Out, token)
	return nil
}

// RunCartAdd adds each product id to the cart from the catalog endpoint
func RunCartAdd(ctx context.Context, deps ShopDependencies, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one product id is required")
	}
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid product id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	if _, err := deps.login(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		res, err := deps.Client.AddProduct(ctx, id, models.ShoppingCart, 1)
		if err != nil {
			return fmt.Errorf("failed to add product %d: %w", id, err)
		}
		result, err := demoshop.DecodeAddToCart(res)
		if err != nil {
			return err
		}
		if !result.Success {
			if result.Redirect != "" {
				return fmt.Errorf("%w: product %d needs options, see %s", ErrAddRejected, id, result.Redirect)
			}
			return fmt.Errorf("%w: product %d: %s", ErrAddRejected, id, result.Message)
		}
		log.Info().Int("product_id", id).Str("cart", result.TopCartSection).Msg("added to cart")
	}
	return nil
}

// RunShowList prints the lines of the cart or wishlist
func RunShowList(ctx context.Context, deps ShopDependencies, cartType models.CartType) error {
	if _, err := deps.login(ctx); err != nil {
		return err
	}

	var (
		list *models.Cart
		err  error
	)
	if cartType == models.Wishlist {
		list, err = deps.Client.Wishlist(ctx)
	} else {
		list, err = deps.Client.Cart(ctx)
	}
	if err != nil {
		return err
	}

	return WriteList(deps.Out, list)
}

// WriteList renders a cart or wishlist as an aligned table
func WriteList(w io.Writer, list *models.Cart) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range list.Lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", line.Name, line.Quantity, models.FormatPrice(line.UnitPrice), models.FormatPrice(line.Subtotal))
		for _, attr := range line.Attributes {
			fmt.Fprintf(tw, "  %s\t\t\t\n", attr)
		}
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\t%s\n", list.Count(), models.FormatPrice(list.Total))
	if list.ShareURL != "" {
		fmt.Fprintf(tw, "SHARE\t%s\t\t\n", list.ShareURL)
	}
	return tw.Flush()
}

// RunClear empties the cart, wishlist or comparison list
func RunClear(ctx context.Context, deps ShopDependencies, list string) error {
	if _, err := deps.login(ctx); err != nil {
		return err
	}

	var err error
	switch list {
	case "cart":
		err = deps.Client.ClearCart(ctx)
	case "wishlist":
		err = deps.Client.ClearWishlist(ctx)
	case "compare":
		err = deps.Client.ClearCompareList(ctx)
	default:
		return fmt.Errorf("unknown list %q", list)
	}
	if err != nil {
		return err
	}

	log.Info().Str("list", list).Msg("cleared")
	return nil
}
