package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/daybook/internal/client/api"
	"github.com/dmitrijs2005/daybook/internal/client/config"
)

// App is the interactive Daybook CLI. It wraps the API client with the
// terminal prompts and the REPL.
type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api.IsLoggedIn()
}
