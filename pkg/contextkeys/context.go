package contextkeys

type contextKey string

// DBContextKey stores the request-scoped *gorm.DB (pool or transaction).
const DBContextKey = contextKey("db")

// CallerContextKey stores the resolved *auth.Claims of the session caller.
const CallerContextKey = contextKey("caller")
