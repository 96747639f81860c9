package models

import "time"

// Versioned adds the optimistic-lock token. Embed it anonymously.
//
// The token is the row's last-modified timestamp; the database moves it
// forward on every write.
type Versioned struct {
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Versioned) GetVersionToken() time.Time  { return v.UpdatedAt }
func (v *Versioned) SetVersionToken(t time.Time) { v.UpdatedAt = t }
