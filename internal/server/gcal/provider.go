// Package gcal adapts Google Calendar to the reconciler's CalendarClient.
// OAuth tokens are stored per user; a client is resolved per call so token
// refreshes always use the latest stored blob.
package gcal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daybook/internal/sync"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Provider owns the OAuth flow and resolves per-user calendar clients.
type Provider struct {
	oauth       *oauth2.Config
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	calendarID  string
}

// NewProvider builds a Provider from the server config.
func NewProvider(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		db:          db,
		repomanager: m,
		calendarID:  cfg.CalendarID,
	}
}

// AuthURL returns the consent page URL. state round-trips through Google
// and is verified by the callback handler.
func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the authorization code for a token and stores it for
// userID.
func (p *Provider) Exchange(ctx context.Context, userID, code string) error {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: exchanging authorization code: %v", common.ErrorRemoteUnavailable, err)
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}
	return p.repomanager.CalendarTokens(p.db).Save(ctx, userID, raw)
}

// Disconnect drops the stored token for userID.
func (p *Provider) Disconnect(ctx context.Context, userID string) error {
	return p.repomanager.CalendarTokens(p.db).Delete(ctx, userID)
}

// ClientFor returns a calendar client backed by the user's stored token.
// A user without a stored token gets common.ErrorRemoteUnavailable.
func (p *Provider) ClientFor(ctx context.Context, userID string) (sync.CalendarClient, error) {
	raw, err := p.repomanager.CalendarTokens(p.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: calendar not connected", common.ErrorRemoteUnavailable)
		}
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("%w: stored token unreadable", common.ErrorRemoteUnavailable)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(p.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("%w: building calendar service: %v", common.ErrorRemoteUnavailable, err)
	}
	return NewClient(svc, p.calendarID), nil
}
