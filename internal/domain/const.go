package domain

type ctxKey string

const (
	RequesterIdCtxKey ctxKey = "weird-requesterId"
	SessionCtxKey     ctxKey = "weird-session"
)
