package customers

import "fmt"

// Customer types offered by the customer forms.
const (
	TypeRegular = "regular"
	TypeVIP     = "vip"
	TypeOther   = "other"
)

// Customer is a customer as the backend serialises it. Address is only
// populated by the POS quick-create reply and the select options built from it.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Type    string `json:"type,omitempty"`
	Address string `json:"address,omitempty"`
}

// Label is the text of the customer's entry in the POS customer selector.
func (c Customer) Label() string {
	if c.Type == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}
