package services

import (
	"strings"
	"unicode"

	"tupperstock/internal/models"
)

// CheckoutConfig holds the shop's fixed checkout parameters.
type CheckoutConfig struct {
	DeliveryFeeProductID int64
	PickupAddress1       string
	PickupCity           string
	PickupZip            string
}

const (
	regionAzores     = "Açores"
	provinceCodeAzor = "PT-20"
	countryPortugal  = "Portugal"
	countryCodePT    = "PT"
	defaultZip       = "9500-445"
)

// postalPrefixes maps delivery towns to their postal code prefix.
var postalPrefixes = map[string]string{
	"Ponta Delgada":  "9500",
	"Ribeira Grande": "9600",
	"Lagoa":          "9560",
}

// InternationalPhone rewrites a Portuguese phone number with the +351 prefix.
func InternationalPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 9 && strings.HasPrefix(digits, "9"):
		return "+351" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "351"):
		return "+" + digits
	default:
		return "+351" + digits
	}
}

// SplitName returns the first word of name and the rest.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return strings.TrimSpace(name), ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// postalPrefix returns the postal code prefix of a delivery town.
func postalPrefix(town string) string {
	if p, ok := postalPrefixes[town]; ok {
		return p
	}
	return "9500"
}

// deliveryZip builds a full postal code such as 9600-123.
func deliveryZip(town, postalCode string) string {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return defaultZip
	}
	return postalPrefix(town) + "-" + postalCode
}

// shippingAddress builds the address sent with the order. Pickup orders use
// the shop's own address since the platform requires one.
func (c CheckoutConfig) shippingAddress(req *models.OrderRequest, contact models.ContactDetails) *models.ShippingAddress {
	first, last := SplitName(contact.Name)
	addr := &models.ShippingAddress{
		FirstName:    first,
		LastName:     last,
		Region:       regionAzores,
		State:        regionAzores,
		Province:     regionAzores,
		ProvinceCode: provinceCodeAzor,
		Country:      countryPortugal,
		CountryCode:  countryCodePT,
		Phone:        InternationalPhone(contact.Phone),
	}

	if req.DeliveryOption == models.DeliveryDelivery {
		town := req.SelectedLocation
		if town == "" {
			town = req.DeliveryForm.City
		}
		addr.Address1 = req.DeliveryForm.Street
		addr.Address2 = req.DeliveryForm.Number
		addr.City = town
		addr.Zip = deliveryZip(town, req.DeliveryForm.PostalCode)
		return addr
	}

	addr.Address1 = c.PickupAddress1
	addr.City = c.PickupCity
	addr.Zip = c.PickupZip
	return addr
}

// orderNote describes the delivery choice for the shop staff.
func orderNote(req *models.OrderRequest) string {
	if req.DeliveryOption == models.DeliveryPickup {
		note := "Tipo de entrega: Levantamento Local"
		if req.PickupForm != nil && (req.PickupForm.Date != "" || req.PickupForm.Time != "") {
			note += "\nData: " + req.PickupForm.Date + " | Hora: " + req.PickupForm.Time
		}
		return note
	}
	note := "Tipo de entrega: Entrega ao Domicílio"
	town := req.SelectedLocation
	if town == "" && req.DeliveryForm != nil {
		town = req.DeliveryForm.City
	}
	if town != "" {
		note += "\nCidade: " + town
	}
	return note
}
