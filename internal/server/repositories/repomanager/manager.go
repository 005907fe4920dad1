package repomanager

import (
	"context"
	"database/sql"

	"github.com/basekit-io/basekit/internal/dbx"
	"github.com/basekit-io/basekit/internal/server/repositories/refreshtokens"
	"github.com/basekit-io/basekit/internal/server/repositories/resettokens"
	"github.com/basekit-io/basekit/internal/server/repositories/roles"
	"github.com/basekit-io/basekit/internal/server/repositories/settings"
	"github.com/basekit-io/basekit/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX (a *sql.DB or a
// *sql.Tx), so services can run the same repository code both inside and
// outside transactions. Tests substitute a fake manager returning fakes.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Settings(db dbx.DBTX) settings.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
