// Package repomanager ties the individual repositories together behind one
// interface so services can run them on a plain *sql.DB or inside a
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/calendartokens"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/records"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Records(db dbx.DBTX) records.Repository
	CalendarTokens(db dbx.DBTX) calendartokens.Repository
}
