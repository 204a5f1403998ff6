package user

import "time"

type User struct {
	Username           string    `json:"username" db:"username"`
	Email              string    `json:"email" db:"email"`
	Language           string    `json:"language" db:"language"`
	GeolocationEnabled bool      `json:"geolocation_enabled" db:"geolocation_enabled"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProfileRequest struct {
	Email              string `json:"email"`
	Language           string `json:"language"`
	GeolocationEnabled *bool  `json:"geolocation_enabled,omitempty"`
}

// ProfileStats are the derived numbers shown on a user's profile.
type ProfileStats struct {
	PostCount         int `json:"post_count"`
	PostCharacters    int `json:"post_characters"`
	AveragePostLength int `json:"average_post_length"`
	Streak            int `json:"streak"`
}

type ProfileResponse struct {
	User  *User         `json:"user"`
	Stats *ProfileStats `json:"stats"`
}
