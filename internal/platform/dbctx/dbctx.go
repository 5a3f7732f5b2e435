package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context is the first argument of every repo and service call: the caller's
// context plus the transaction to join, if any.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func Background() Context {
	return Context{Ctx: context.Background()}
}
