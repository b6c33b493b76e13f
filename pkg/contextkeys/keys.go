package contextkeys

type contextKey string

const (
	UserIDKey    contextKey = "UserID"
	UserNivelKey contextKey = "UserNivel"
)
