package models

// User is the minimal profile the client keeps after authentication.
type User struct {
	ID   string `json:"userId"`
	Name string `json:"userName"`
}
