// Package shop holds the owner-facing shop model: profile, weekly hours,
// logo constraints and the service catalog rules.
package shop

import (
	"regexp"
	"strings"
	"time"
)

type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

type Profile struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Address      string              `json:"address"`
	Phone        string              `json:"phone"`
	Logo         string              `json:"logo"`
	IsOpen       bool                `json:"isOpen"`
	OpeningHours map[string]DayHours `json:"openingHours"`
	Notes        string              `json:"notes"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

type ProfileInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

var phonePattern = regexp.MustCompile(`^\(\d{2}\) \d{4,5}-\d{4}$`)

// Normalize trims the input and validates it. An empty phone is allowed
// until the owner sets one.
func (in ProfileInput) Normalize() (ProfileInput, *ValidationError) {
	out := ProfileInput{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
	verr := &ValidationError{}
	if out.Name == "" {
		verr.add("name", "O nome da barbearia é obrigatório")
	}
	if out.Phone != "" && !phonePattern.MatchString(out.Phone) {
		verr.add("phone", "Formato inválido (ex: (11) 91234-5678)")
	}
	return out, verr.orNil()
}

const MaxLogoBytes = 2 << 20

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// LogoExtension returns the file extension for an accepted logo content type.
func LogoExtension(contentType string) (string, bool) {
	ext, ok := logoExtensions[contentType]
	return ext, ok
}

// LogoKey is the blob key for a new logo upload.
func LogoKey(shopID, id, ext string) string {
	return "shops/" + shopID + "/logo/" + id + ext
}
