package types

// ShopperProfile holds the shopper's contact and shipping details. A nil
// field has never been entered; an empty string has.
type ShopperProfile struct {
	City          *string `json:"city"`
	Email         *string `json:"email"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Phone         *string `json:"phone"`
	State         *string `json:"state"`
	StreetAddress *string `json:"street_address"`
	ZipCode       *string `json:"zip_code"`
}

// PaymentInstrument is the card entered at checkout. It is never persisted.
type PaymentInstrument struct {
	CardCVV    *string `json:"card_cvv"`
	CardNumber *string `json:"card_number"`
	ExpDate    *string `json:"exp_date"`
	NameOnCard *string `json:"name_on_card"`
}

// Clone returns a copy that shares no pointers with p.
func (p ShopperProfile) Clone() ShopperProfile {
	return ShopperProfile{
		City:          cloneString(p.City),
		Email:         cloneString(p.Email),
		FirstName:     cloneString(p.FirstName),
		LastName:      cloneString(p.LastName),
		Phone:         cloneString(p.Phone),
		State:         cloneString(p.State),
		StreetAddress: cloneString(p.StreetAddress),
		ZipCode:       cloneString(p.ZipCode),
	}
}

// Clone returns a copy that shares no pointers with p.
func (p PaymentInstrument) Clone() PaymentInstrument {
	return PaymentInstrument{
		CardCVV:    cloneString(p.CardCVV),
		CardNumber: cloneString(p.CardNumber),
		ExpDate:    cloneString(p.ExpDate),
		NameOnCard: cloneString(p.NameOnCard),
	}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
