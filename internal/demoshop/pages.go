package demoshop

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/themizzi/demoshop-e2e/internal/models"
)

var (
	lineBreak     = regexp.MustCompile(`(?i)<br\s*/?>`)
	quantityLabel = regexp.MustCompile(`^\((\d+)\)$`)
	priceChars    = regexp.MustCompile(`[^0-9.\-]`)
)

// ParseCart reads a shopping cart, wishlist or shared wishlist page
func ParseCart(page []byte) (*models.Cart, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cart page: %w", err)
	}

	cart := &models.Cart{}
	var rowErr error
	doc.Find("tr.cart-item-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		line, err := parseCartRow(row)
		if err != nil {
			rowErr = err
			return false
		}
		cart.Lines = append(cart.Lines, line)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	cart.Total = cart.SumOfLines()
	if total := strings.TrimSpace(doc.Find(".order-total").First().Text()); total != "" {
		parsed, err := parsePrice(total)
		if err != nil {
			return nil, fmt.Errorf("failed to parse order total: %w", err)
		}
		cart.Total = parsed
	}

	cart.ShareURL, _ = doc.Find("a.share-link").First().Attr("href")

	return cart, nil
}

func parseCartRow(row *goquery.Selection) (models.CartLine, error) {
	line := models.CartLine{
		Name:     strings.TrimSpace(row.Find("td.product > a").First().Text()),
		Quantity: 1,
	}

	if v, ok := row.Find("input[name=removefromcart]").Attr("value"); ok {
		id, err := strconv.Atoi(v)
		if err != nil {
			return line, fmt.Errorf("invalid cart item id %q: %w", v, err)
		}
		line.ItemID = id
	}

	if v, ok := row.Find("td.product > a").First().Attr("data-productid"); ok {
		line.ProductID, _ = strconv.Atoi(v)
	}

	qty := strings.TrimSpace(row.Find("input.qty-input").AttrOr("value", ""))
	if qty == "" {
		qty = strings.TrimSpace(row.Find("td.qty").Text())
	}
	if qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return line, fmt.Errorf("invalid quantity %q for %q: %w", qty, line.Name, err)
		}
		line.Quantity = n
	}

	var err error
	if line.UnitPrice, err = parseOptionalPrice(row.Find(".product-unit-price").Text()); err != nil {
		return line, err
	}
	if line.Subtotal, err = parseOptionalPrice(row.Find(".product-subtotal").Text()); err != nil {
		return line, err
	}
	if line.Subtotal.IsZero() {
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	}

	if html, err := row.Find(".attributes").Html(); err == nil && html != "" {
		line.Attributes = splitAttributes(html)
	}

	return line, nil
}

// splitAttributes turns "<br />" separated attribute markup into text lines
func splitAttributes(html string) []string {
	var attrs []string
	for _, part := range lineBreak.Split(html, -1) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(part))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(doc.Text()); text != "" {
			attrs = append(attrs, text)
		}
	}
	return attrs
}

// ParseCompareList reads product names from the comparison page
func ParseCompareList(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse compare page: %w", err)
	}

	var names []string
	doc.Find("tr.product-name td a").Each(func(_ int, a *goquery.Selection) {
		names = append(names, strings.TrimSpace(a.Text()))
	})
	return names, nil
}

// TopCartQuantity reads the "(N)" counter next to the shopping cart link
func TopCartQuantity(page []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return 0, fmt.Errorf("failed to parse page: %w", err)
	}

	label := doc.Find(".ico-cart .cart-label ~ .cart-qty").First()
	if label.Length() == 0 {
		return 0, fmt.Errorf("cart quantity label not found")
	}
	return ParseQuantityLabel(label.Text())
}

// ParseQuantityLabel converts "(3)" to 3
func ParseQuantityLabel(label string) (int, error) {
	m := quantityLabel.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, fmt.Errorf("invalid quantity label %q", label)
	}
	return strconv.Atoi(m[1])
}

// QuantityLabel renders n the way the header counters show it
func QuantityLabel(n int) string {
	return fmt.Sprintf("(%d)", n)
}

func parsePrice(text string) (decimal.Decimal, error) {
	cleaned := priceChars.ReplaceAllString(text, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return d, nil
}

func parseOptionalPrice(text string) (decimal.Decimal, error) {
	if strings.TrimSpace(text) == "" {
		return decimal.Zero, nil
	}
	return parsePrice(text)
}
