package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SocialLinks is stored as a jsonb column on listings.
type SocialLinks struct {
	Instagram *string `json:"instagram,omitempty"`
	Facebook  *string `json:"facebook,omitempty"`
	Telegram  *string `json:"telegram,omitempty"`
	WhatsApp  *string `json:"whatsapp,omitempty"`
	Website   *string `json:"website,omitempty"`
}

func (s SocialLinks) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("social links: marshal: %w", err)
	}
	return string(raw), nil
}

func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = SocialLinks{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("social links: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*s = SocialLinks{}
		return nil
	}
	return json.Unmarshal(raw, s)
}
