package enums

import "fmt"

// PixKeyType identifies the kind of PIX addressing key a reseller registered.
type PixKeyType string

const (
	PixKeyTypeCPF   PixKeyType = "CPF"
	PixKeyTypeCNPJ  PixKeyType = "CNPJ"
	PixKeyTypeEmail PixKeyType = "EMAIL"
	PixKeyTypePhone PixKeyType = "PHONE"
	PixKeyTypeEVP   PixKeyType = "EVP"
)

var validPixKeyTypes = []PixKeyType{
	PixKeyTypeCPF,
	PixKeyTypeCNPJ,
	PixKeyTypeEmail,
	PixKeyTypePhone,
	PixKeyTypeEVP,
}

// String implements fmt.Stringer.
func (p PixKeyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PixKeyType.
func (p PixKeyType) IsValid() bool {
	for _, candidate := range validPixKeyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePixKeyType converts raw input into a PixKeyType.
func ParsePixKeyType(value string) (PixKeyType, error) {
	for _, candidate := range validPixKeyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pix key type %q", value)
}
