package models

// Product is the storefront's flat view of a platform product.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Price            float64         `json:"price"`
	OriginalPrice    float64         `json:"originalPrice"`
	Category         string          `json:"category"`
	Image            *string         `json:"image"`
	Images           []string        `json:"images"`
	Handle           string          `json:"handle"`
	AvailableForSale bool            `json:"availableForSale"`
	Variants         []Variant       `json:"variants"`
	Options          []ProductOption `json:"options"`
	Tags             []string        `json:"tags"`
	Vendor           string          `json:"vendor"`
	ProductType      string          `json:"productType"`
	TotalInventory   int             `json:"totalInventory"`
	CreatedAt        string          `json:"createdAt,omitempty"`
	UpdatedAt        string          `json:"updatedAt,omitempty"`
	Collections      []CollectionRef `json:"collections"`
	Metafields       []Metafield     `json:"metafields"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Price             float64          `json:"price"`
	AvailableForSale  bool             `json:"availableForSale"`
	QuantityAvailable int              `json:"quantityAvailable"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Image             *Image           `json:"image"`
}

// SelectedOption is a name/value pair such as Size=1.5L.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is a platform image reference.
type Image struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// ProductOption lists the values of one option axis.
type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Metafield is a custom product attribute. Value is already resolved to
// display text.
type Metafield struct {
	ID          string `json:"id"`
	Namespace   string `json:"namespace"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Collection is a curated group of products.
type Collection struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// CollectionRef is the short form of a collection used for cross-links.
type CollectionRef struct {
	ID     string `json:"id,omitempty"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// PageInfo is the cursor state of a paginated listing.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// ProductPage is one page of products.
type ProductPage struct {
	Products   []Product `json:"products"`
	PageInfo   PageInfo  `json:"pageInfo"`
	TotalCount int       `json:"totalCount"`
}

// CollectionPage is one page of a collection's products.
type CollectionPage struct {
	Products   []Product     `json:"products"`
	PageInfo   PageInfo      `json:"pageInfo"`
	TotalCount int           `json:"totalCount"`
	Collection CollectionRef `json:"collection"`
}
