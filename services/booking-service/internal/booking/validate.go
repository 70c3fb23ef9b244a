package booking

import (
	"regexp"
	"strings"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/cart"
)

var phonePattern = regexp.MustCompile(`^\(\d{2}\) \d{4,5}-\d{4}$`)

// Form is what the customer types at checkout.
type Form struct {
	Name  string
	Phone string
	Date  string
	Time  string
}

// Validator applies the checkout form rules against the shop's calendar day.
type Validator struct {
	Grid     availability.Grid
	Location *time.Location
	Now      func() time.Time
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Validate returns nil when every rule passes, otherwise all failures at once.
func (v Validator) Validate(f Form, c *cart.Cart) *ValidationError {
	verr := &ValidationError{}

	if strings.TrimSpace(f.Name) == "" {
		verr.add("name", "Nome é obrigatório")
	}

	switch {
	case f.Phone == "":
		verr.add("phone", "Telefone é obrigatório")
	case !ValidPhone(f.Phone):
		verr.add("phone", "Formato inválido (ex: (11) 91234-5678)")
	}

	if msg := v.checkDate(f.Date); msg != "" {
		verr.add("date", msg)
	}

	switch {
	case f.Time == "":
		verr.add("time", "Horário é obrigatório")
	case !v.Grid.Contains(f.Time):
		verr.add("time", "Horário inválido")
	}

	if c == nil || c.IsEmpty() {
		verr.add("cart", "Seu carrinho está vazio!")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func (v Validator) checkDate(raw string) string {
	if raw == "" {
		return "Data é obrigatória"
	}
	day, err := time.ParseInLocation(availability.DateLayout, raw, v.Location)
	if err != nil {
		return "Data inválida"
	}
	if day.Before(v.today()) {
		return "Data não pode ser anterior a hoje"
	}
	return ""
}

// today is midnight of the current calendar day in the shop time zone.
func (v Validator) today() time.Time {
	now := v.Now().In(v.Location)
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, v.Location)
}
