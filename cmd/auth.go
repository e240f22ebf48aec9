package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/desertthunder/kiosk/internal/server"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the authorization code flow.
//
// Starts a local HTTP server for the redirect, opens the browser and waits for the callback, which
// exchanges the code and stores the tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(r.auth, state)
	router := server.NewBasicRouter()
	router.Use(server.Recoverer(r.logger), server.RequestLogger(r.logger))
	router.Handler(handler)

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := r.auth.AuthCodeURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openURL(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("\n⚠ Could not open browser automatically.\n")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.loginTimeout)

	timeout := time.NewTimer(r.loginTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		handler.Send(server.OAuthResult{Err: shared.ErrTimeout})
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, r.loginTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Err != nil {
		return fmt.Errorf("authorization failed: %w", result.Err)
	}

	r.writePlain("\n✓ Authorization successful\n")
	r.writePlain("You can now use: kiosk player status\n")
	return nil
}

// AuthStatus prints the token lifecycle state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	expiry, ok := r.auth.Expiry()
	if err := r.writeBytes(formatter.AuthStatus(r.auth.State().String(), expiry, ok, r.clock.Now())); err != nil {
		return err
	}
	if err := r.auth.LastError(); err != nil {
		return r.writePlain("Last error: %v\n", err)
	}
	return nil
}

// AuthLogout clears stored tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.auth.Logout()
	r.player.FlushPlaylists()
	return r.writePlain("✓ Logged out of Spotify\n")
}
