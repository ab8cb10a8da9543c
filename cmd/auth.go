package main

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/playsync/internal/server"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 2 * time.Minute

// AuthSpotify runs the OAuth2 authorization code flow and saves the token to the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()

	spotify, err := r.newSpotify()
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	callback := server.NewCallbackServer(addr, spotify.GetOAuthConfig(), state, r.logger)
	if err := callback.Start(); err != nil {
		return err
	}
	defer callback.Shutdown()

	authURL := spotify.GetAuthURL(state)
	r.logger.Info("waiting for authorization", "callback", callback.Addr())

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to authorize playsync:\n%s\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to authorize playsync:\n%s\n", authURL)
	}

	token, err := callback.Wait(ctx, authTimeout)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if err := shared.SaveConfig(r.configPath, config); err != nil {
		return err
	}

	r.logger.Info("spotify token saved", "path", r.configPath, "expiry", token.Expiry)
	return r.writePlain("✓ Spotify authorization complete\n")
}

type authStatus struct {
	Spotify struct {
		Configured    bool      `json:"configured"`
		Authenticated bool      `json:"authenticated"`
		Expiry        time.Time `json:"expiry,omitzero"`
	} `json:"spotify"`
	YouTube struct {
		ProxyURL    string `json:"proxy_url"`
		HeadersPath string `json:"headers_path,omitempty"`
	} `json:"youtube"`
}

// AuthStatus reports which credentials are configured and whether a Spotify token is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()
	creds := config.Credentials

	var status authStatus
	status.Spotify.Configured = creds.Spotify.ClientID != "" && creds.Spotify.ClientSecret != ""
	if tok := creds.Spotify.Token(); tok != nil {
		status.Spotify.Authenticated = true
		status.Spotify.Expiry = tok.Expiry
	}
	status.YouTube.ProxyURL = creds.YouTube.ProxyURL
	status.YouTube.HeadersPath = creds.YouTube.HeadersPath

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	r.writePlainHeader("Authentication")
	r.writePlain("%s Spotify credentials configured\n", mark(status.Spotify.Configured))
	r.writePlain("%s Spotify token stored", mark(status.Spotify.Authenticated))
	if status.Spotify.Authenticated && !status.Spotify.Expiry.IsZero() {
		r.writePlain(" (expires %s)", status.Spotify.Expiry.Local().Format(time.RFC1123))
	}
	r.writePlain("\n")
	r.writePlain("%s YouTube Music proxy: %s\n", mark(status.YouTube.ProxyURL != ""), status.YouTube.ProxyURL)
	if status.YouTube.HeadersPath != "" {
		r.writePlain("  headers: %s\n", status.YouTube.HeadersPath)
	}

	if !status.Spotify.Authenticated {
		return r.writePlainln("Run `playsync auth spotify` to authorize.")
	}
	return nil
}
