package domain

// User is an account that can log in to the API.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Address      string
}

// House is a metered house and its owner.
type House struct {
	ID     int
	UserID int
}
