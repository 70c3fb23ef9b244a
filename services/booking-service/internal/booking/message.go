package booking

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount the way pt-BR shows reais: R$ 1.234,50.
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// BookingMessage is the summary the customer sends to the shop after booking.
func BookingMessage(a model.Appointment) string {
	var b strings.Builder
	b.WriteString("Olá! Gostaria de agendar um horário.\n\n")
	b.WriteString("*Nome:* " + a.ClientName + "\n")
	b.WriteString("*Telefone:* " + a.ClientPhone + "\n")
	b.WriteString("*Data:* " + a.Date + "\n")
	b.WriteString("*Horário:* " + a.Time + "\n\n")
	b.WriteString("*Serviços:*\n")
	for _, l := range a.Services {
		b.WriteString("- " + l.Name + " (" + strconv.Itoa(l.Quantity) + "x) - " + FormatBRL(l.Price) + "\n")
	}
	b.WriteString("\n*Total:* " + FormatBRL(a.Total))
	return b.String()
}

// Messenger builds the outbound deep link that opens a chat with the shop.
type Messenger struct {
	Host          string
	CountryPrefix string
}

// Spaces are sent as %20 since not every client reads '+' as a space.
func (m Messenger) URL(shopPhone, text string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     m.Host,
		Path:     "/" + m.CountryPrefix + digits(shopPhone) + "/",
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20"),
	}
	return u.String()
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

