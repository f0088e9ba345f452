package entity

// Player is a participant as shown in a snapshot.
type Player struct {
	ID   string `json:"id"`
	Mark string `json:"mark,omitempty"`
}
