package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is an item of the demo shop catalogue
type Product struct {
	ID       int
	Name     string
	Slug     string
	Category string
	Price    decimal.Decimal
	GiftCard bool
	// OnCatalogPage is true when the category page offers a direct "Add to cart" button
	OnCatalogPage bool
	// RequiresDetails is true when the product page has to be filled in before adding
	RequiresDetails bool
}

// Path returns the product detail page path
func (p Product) Path() string {
	return "/" + p.Slug
}

// Catalogue entries of the live shop that the scenarios rely on.
var (
	ComputingAndInternet = Product{ID: 13, Name: "Computing and Internet", Slug: "computing-and-internet", Category: "books", Price: decimal.RequireFromString("10.00"), OnCatalogPage: true}
	HealthBook           = Product{ID: 22, Name: "Health Book", Slug: "health", Category: "books", Price: decimal.RequireFromString("10.00"), OnCatalogPage: true}
	Fiction              = Product{ID: 45, Name: "Fiction", Slug: "fiction", Category: "books", Price: decimal.RequireFromString("24.00"), OnCatalogPage: true}

	ThirdAlbum = Product{ID: 53, Name: "3rd Album", Slug: "3rd-album", Category: "digital-downloads", Price: decimal.RequireFromString("1.00")}
	Music2     = Product{ID: 51, Name: "Music 2", Slug: "music-2", Category: "digital-downloads", Price: decimal.RequireFromString("10.00")}
	Music2Copy = Product{ID: 52, Name: "Music 2", Slug: "music-2-2", Category: "digital-downloads", Price: decimal.RequireFromString("1.00")}

	VirtualGiftCard = Product{ID: 2, Name: "$25 Virtual Gift Card", Slug: "25-virtual-gift-card", Category: "gift-cards", Price: decimal.RequireFromString("25.00"), GiftCard: true, RequiresDetails: true}

	Laptop        = Product{ID: 31, Name: "14.1-inch Laptop", Slug: "141-inch-laptop", Category: "notebooks", Price: decimal.RequireFromString("1590.00"), OnCatalogPage: true}
	CheapComputer = Product{ID: 72, Name: "Build your own cheap computer", Slug: "build-your-cheap-own-computer", Category: "desktops", Price: decimal.RequireFromString("800.00"), RequiresDetails: true}
)

// Catalogue lists every known product
var Catalogue = []Product{
	ComputingAndInternet,
	HealthBook,
	Fiction,
	ThirdAlbum,
	Music2,
	Music2Copy,
	VirtualGiftCard,
	Laptop,
	CheapComputer,
}

// Option values selected on the cheap computer page: processor, RAM, HDD radios and a software checkbox
var (
	CheapComputerRadioOptions    = []int{65, 55, 58}
	CheapComputerCheckboxOptions = []int{94}
)

// ProductByID looks a product up in the catalogue
func ProductByID(id int) (Product, bool) {
	for _, p := range Catalogue {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsInCategory returns the catalogue entries of a category in catalogue order
func ProductsInCategory(category string) []Product {
	var products []Product
	for _, p := range Catalogue {
		if p.Category == category {
			products = append(products, p)
		}
	}
	return products
}

// CatalogAddPath is the path used by the "Add to cart" buttons of category pages
func CatalogAddPath(productID int, cartType CartType, quantity int) string {
	return fmt.Sprintf("/addproducttocart/catalog/%d/%d/%d", productID, cartType, quantity)
}

// DetailsAddPath is the path used by the add buttons of product detail pages
func DetailsAddPath(productID int, cartType CartType) string {
	return fmt.Sprintf("/addproducttocart/details/%d/%d", productID, cartType)
}
