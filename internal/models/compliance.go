package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Compliance is the capability every KYC record variant offers: whether it
// authorizes gated transactions, its derived risk band, and its clearance
// flags. Gating code depends on this interface only, never on a concrete
// record shape.
type Compliance interface {
	IsValid() bool
	IsFullyCompliant() bool
	RiskLevel() RiskLevel
	Flags() ComplianceFlags
}

var (
	_ Compliance = (*SimpleKycAccount)(nil)
	_ Compliance = (*EnhancedKycAccount)(nil)
)

// ProviderList stores a set of providers as a JSON array column.
type ProviderList []KycProvider

// Value implements the driver.Valuer interface
func (l ProviderList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *ProviderList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}
