package models

import (
	"fmt"

	"github.com/go-faker/faker/v4"
)

// Recipient is the person a gift card is sent to
type Recipient struct {
	Name  string
	Email string
}

// NewRecipient generates a fresh fake recipient
func NewRecipient() Recipient {
	return Recipient{
		Name:  faker.FirstName(),
		Email: faker.Email(),
	}
}

// GiftCardField names the form field of a gift card product detail page
func GiftCardField(productID int, field string) string {
	return fmt.Sprintf("giftcard_%d.%s", productID, field)
}

// GiftCard holds the gift card attributes submitted with an add-to-cart call
type GiftCard struct {
	RecipientName  string
	RecipientEmail string
	SenderName     string
	SenderEmail    string
	Message        string
}

// Attributes renders the attribute lines shown under a cart row
func (g GiftCard) Attributes() []string {
	attrs := []string{
		fmt.Sprintf("For: %s <%s>", g.RecipientName, g.RecipientEmail),
	}
	if g.SenderName != "" || g.SenderEmail != "" {
		attrs = append(attrs, fmt.Sprintf("From: %s <%s>", g.SenderName, g.SenderEmail))
	}
	return attrs
}
