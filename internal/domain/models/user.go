package models

// User представляет покупателя магазина
type User struct {
	ID       int64
	Username string
	PassHash []byte
}
