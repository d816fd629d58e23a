// Command bookkeeper serves the session ledger HTTP API.
//
//	@title						Bookkeeper API
//	@version					1.0
//	@description				Session ledger for small sellers: sales, expenses, debts and analytics.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ledgerbook/bookkeeper/cmd/bookkeeper/internal/commands"
	_ "github.com/ledgerbook/bookkeeper/docs"
)

var (
	version = "dev"
	cli     struct {
		Version kong.VersionFlag
		Serve   commands.ServeCmd `cmd:"" default:"1" help:"Start the HTTP API."`
		Init    commands.InitCmd  `cmd:"" help:"Create the ledger document and the bootstrap admin."`
		Token   commands.TokenCmd `cmd:"" help:"Print a signed bearer token for a user."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("bookkeeper"),
		kong.Description("Session ledger with sales analytics."),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}
