package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/rekordsync/internal/server"
	"github.com/desertthunder/rekordsync/internal/services"
	"github.com/desertthunder/rekordsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server on the configured redirect address, opens the browser for
// user authorization, and saves the resulting tokens back to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	spotify := r.config.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify.client_id and spotify.client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	srv, err := services.NewSpotifyService(spotify.Credentials())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, srv)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now run: rekordsync sync\n")

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, srv *services.SpotifyService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	addr, callbackPath, err := callbackAddr(r.config.Spotify.RedirectURI)
	if err != nil {
		return nil, err
	}

	authURL := srv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(srv.OAuthConfig(), state, callbackPath)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(oauthHandler)

	httpServer := &http.Server{Addr: addr, Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically: %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warnf("error shutting down server: %v", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// callbackAddr derives the local listen address and callback path from the configured
// redirect URI.
func callbackAddr(redirectURI string) (addr, path string, err error) {
	if redirectURI == "" {
		return "127.0.0.1:8888", "/callback", nil
	}

	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid spotify.redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: spotify.redirect_uri has no host", shared.ErrInvalidConfig)
	}

	path = u.Path
	if path == "" {
		path = "/callback"
	}
	return u.Host, path, nil
}
