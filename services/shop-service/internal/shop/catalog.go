package shop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shopId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration"`
	Description     string          `json:"description"`
	Image           string          `json:"image"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ServiceInput is the add/edit form. Price and duration arrive either as
// JSON numbers or as strings typed into the form.
type ServiceInput struct {
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Duration    json.RawMessage `json:"duration"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}

// ServiceDraft is a validated ServiceInput.
type ServiceDraft struct {
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
	Description     string
	Image           string
}

var markupReplacer = strings.NewReplacer("<", "", ">", "", "&", "", "'", "", `"`, "")

// Sanitize strips markup characters and surrounding space.
func Sanitize(s string) string {
	return strings.TrimSpace(markupReplacer.Replace(s))
}

func (in ServiceInput) Validate() (ServiceDraft, *ValidationError) {
	d := ServiceDraft{
		Name:        Sanitize(in.Name),
		Description: Sanitize(in.Description),
		Image:       strings.TrimSpace(in.Image),
	}
	verr := &ValidationError{}
	if d.Name == "" {
		verr.add("name", "Nome é obrigatório")
	}

	switch raw, ok := scalar(in.Price); {
	case !ok || raw == "":
		verr.add("price", "Preço é obrigatório")
	default:
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.Round(2).IsPositive() {
			verr.add("price", "Preço deve ser um número positivo")
		} else {
			d.Price = price.Round(2)
		}
	}

	switch raw, ok := scalar(in.Duration); {
	case !ok || raw == "":
		verr.add("duration", "Duração é obrigatória")
	default:
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			verr.add("duration", "Duração deve ser um número inteiro positivo")
		} else {
			d.DurationMinutes = mins
		}
	}

	if verr := verr.orNil(); verr != nil {
		return ServiceDraft{}, verr
	}
	return d, nil
}

// scalar returns the text of a JSON scalar, unquoting strings. Null counts as missing.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	return string(raw), true
}
