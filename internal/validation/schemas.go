package validation

import (
	"encoding/json"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Profile field names, matching the persisted JSON keys.
const (
	FieldCity          = "city"
	FieldEmail         = "email"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldPhone         = "phone"
	FieldState         = "state"
	FieldStreetAddress = "street_address"
	FieldZipCode       = "zip_code"
)

// Payment field names.
const (
	FieldCardCVV    = "card_cvv"
	FieldCardNumber = "card_number"
	FieldExpDate    = "exp_date"
	FieldNameOnCard = "name_on_card"
)

// ProfileLabels and PaymentLabels are the display names used in messages.
var (
	ProfileLabels = map[string]string{
		FieldCity:          "City",
		FieldEmail:         "Email",
		FieldFirstName:     "First Name",
		FieldLastName:      "Last Name",
		FieldPhone:         "Phone",
		FieldState:         "State",
		FieldStreetAddress: "Street Address",
		FieldZipCode:       "Zip Code",
	}
	PaymentLabels = map[string]string{
		FieldCardCVV:    "Card verification value",
		FieldCardNumber: "Card number",
		FieldExpDate:    "Expiration date",
		FieldNameOnCard: "Name on card",
	}
)

// ProfileSchema validates a shopper profile. Every field is required and
// only the email has a format rule.
func ProfileSchema() Schema[types.ShopperProfile] {
	field := func(name string, ref func(*types.ShopperProfile) **string, rule Rule) Field[types.ShopperProfile] {
		return Bind(name, ProfileLabels[name], ref, rule)
	}
	return NewSchema(
		field(FieldCity, func(p *types.ShopperProfile) **string { return &p.City }, nil),
		field(FieldEmail, func(p *types.ShopperProfile) **string { return &p.Email }, Email),
		field(FieldFirstName, func(p *types.ShopperProfile) **string { return &p.FirstName }, nil),
		field(FieldLastName, func(p *types.ShopperProfile) **string { return &p.LastName }, nil),
		field(FieldPhone, func(p *types.ShopperProfile) **string { return &p.Phone }, nil),
		field(FieldState, func(p *types.ShopperProfile) **string { return &p.State }, nil),
		field(FieldStreetAddress, func(p *types.ShopperProfile) **string { return &p.StreetAddress }, nil),
		field(FieldZipCode, func(p *types.ShopperProfile) **string { return &p.ZipCode }, nil),
	)
}

// PaymentSchema validates a payment instrument. strict anchors the expiration
// and CVV patterns to the whole value.
func PaymentSchema(strict bool) Schema[types.PaymentInstrument] {
	expRule, cvvRule := Rule(ExpDate), Rule(CVV)
	if strict {
		expRule, cvvRule = ExpDateStrict, CVVStrict
	}
	field := func(name string, ref func(*types.PaymentInstrument) **string, rule Rule) Field[types.PaymentInstrument] {
		return Bind(name, PaymentLabels[name], ref, rule)
	}
	return NewSchema(
		field(FieldCardCVV, func(p *types.PaymentInstrument) **string { return &p.CardCVV }, cvvRule),
		field(FieldCardNumber, func(p *types.PaymentInstrument) **string { return &p.CardNumber }, CardNumber),
		field(FieldExpDate, func(p *types.PaymentInstrument) **string { return &p.ExpDate }, expRule),
		field(FieldNameOnCard, func(p *types.PaymentInstrument) **string { return &p.NameOnCard }, nil),
	)
}

// LooksLikeProfile reports whether raw is a JSON object carrying every
// profile key. Values are not checked.
func LooksLikeProfile(raw string) bool {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return false
	}
	for name := range ProfileLabels {
		if _, ok := decoded[name]; !ok {
			return false
		}
	}
	return true
}
