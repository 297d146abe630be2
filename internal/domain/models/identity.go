package models

// Identity — пользователь запроса: либо аутентифицированный (с идентификатором), либо анонимный.
// Нулевое значение соответствует анонимному пользователю.
type Identity struct {
	userID        int64
	authenticated bool
}

// Authenticated возвращает идентичность аутентифицированного пользователя
func Authenticated(userID int64) Identity {
	return Identity{userID: userID, authenticated: true}
}

// Anonymous возвращает идентичность анонимного пользователя
func Anonymous() Identity {
	return Identity{}
}

// UserID возвращает идентификатор пользователя; ok == false для анонимного
func (i Identity) UserID() (id int64, ok bool) {
	return i.userID, i.authenticated
}

func (i Identity) IsAnonymous() bool {
	return !i.authenticated
}
