package customers

// CustomerForm is the body of the create and update calls.
type CustomerForm struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
	Type  string `json:"type" validate:"omitempty,oneof=regular vip other"`
}

// QuickCreateForm is the POS modal form. It is posted form-encoded.
type QuickCreateForm struct {
	Name    string `validate:"required,max=200"`
	Phone   string `validate:"omitempty,max=50"`
	Type    string `validate:"omitempty,oneof=regular vip other"`
	Address string `validate:"omitempty,max=500"`
}

type searchResponse struct {
	Customers []Customer `json:"customers"`
}
