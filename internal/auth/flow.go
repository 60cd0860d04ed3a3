package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvasen/spotnow/internal/server"
	"github.com/kvasen/spotnow/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	defaultWaitBound = 5 * time.Minute
	connectTimeout   = 15 * time.Second
	requestTimeout   = 20 * time.Second
)

// Scopes is the authorization scope set requested during the flow.
var Scopes = []string{
	"user-read-currently-playing",
	"user-read-playback-state",
	"playlist-read-private",
}

// Endpoint returns Spotify's OAuth2 endpoint. AuthStyleInParams keeps the
// client_id in the POST body, which is what Spotify expects from public
// PKCE clients.
func Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   spotifyAuthURL,
		TokenURL:  spotifyTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// TokenSaver persists the refresh token after a successful exchange or
// refresh. Persistence failures are logged, never fatal to the session.
type TokenSaver interface {
	SaveRefreshToken(token string) error
}

// TokenSaverFunc adapts a function to the [TokenSaver] interface.
type TokenSaverFunc func(token string) error

func (f TokenSaverFunc) SaveRefreshToken(token string) error { return f(token) }

// Flow drives one Authorization Code + PKCE attempt.
//
// Each Flow owns a fresh verifier/challenge/state triple created at
// construction; the triple is immutable for the lifetime of the flow and
// discarded once tokens are obtained.
type Flow struct {
	cfg        *oauth2.Config
	verifier   string
	challenge  string
	state      string
	listenAddr string
	waitBound  time.Duration
	client     *http.Client
	saver      TokenSaver
	logger     *log.Logger
}

// FlowOpts contains configuration options for creating a Flow.
type FlowOpts struct {
	ClientID    string
	RedirectURI string
	ListenAddr  string           // host:port for the callback listener
	Scopes      []string         // defaults to [Scopes]
	Endpoint    oauth2.Endpoint  // defaults to [Endpoint]; override in tests
	WaitBound   time.Duration    // max time to wait for the redirect
	HTTPClient  *http.Client     // client for the token endpoint
	Saver       TokenSaver       // optional refresh token persistence
	Logger      *log.Logger
}

// NewFlow creates a Flow with freshly generated PKCE and CSRF material.
func NewFlow(opts FlowOpts) (*Flow, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id must be set", shared.ErrMissingCredentials)
	}

	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	if opts.RedirectURI == "" {
		opts.RedirectURI = "http://127.0.0.1:8888/callback"
	}
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:8888"
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = Scopes
	}
	if opts.Endpoint.TokenURL == "" {
		opts.Endpoint = Endpoint()
	}
	if opts.WaitBound <= 0 {
		opts.WaitBound = defaultWaitBound
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Flow{
		cfg: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURI,
			Scopes:      opts.Scopes,
			Endpoint:    opts.Endpoint,
		},
		verifier:   verifier,
		challenge:  ChallengeS256(verifier),
		state:      state,
		listenAddr: opts.ListenAddr,
		waitBound:  opts.WaitBound,
		client:     opts.HTTPClient,
		saver:      opts.Saver,
		logger:     opts.Logger,
	}, nil
}

// NewHTTPClient builds the http.Client used for token endpoint calls,
// with a 15s connect timeout and 20s overall request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}
}

// State returns the flow's CSRF state token.
func (f *Flow) State() string { return f.state }

// AuthURL builds the authorization URL to open in a browser.
func (f *Flow) AuthURL() string {
	return f.cfg.AuthCodeURL(f.state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", f.challenge),
	)
}

// Await binds the local callback listener and blocks until the
// authorization redirect arrives, the wait bound elapses, or ctx is done.
// The listener is torn down on every exit path.
func (f *Flow) Await(ctx context.Context) (string, error) {
	callbackPath := "/callback"
	if u, err := url.Parse(f.cfg.RedirectURL); err == nil && u.Path != "" {
		callbackPath = u.Path
	}

	handler := server.NewCallbackHandler(callbackPath, f.state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return "", fmt.Errorf("failed to bind callback listener on %s: %w", f.listenAddr, err)
	}

	httpServer := &http.Server{Handler: router}
	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			f.logger.Warnf("error shutting down callback server: %v", err)
		}
	}()

	f.logger.Infof("waiting for authorization redirect at %v%v", f.listenAddr, callbackPath)

	timer := time.NewTimer(f.waitBound)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return "", result.Error()
		}
		return result.Code, nil
	case err := <-serverErrors:
		return "", fmt.Errorf("callback server error: %w", err)
	case <-timer.C:
		return "", fmt.Errorf("%w: no authorization redirect within %v", shared.ErrTimeout, f.waitBound)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Exchange trades an authorization code for a token pair, sending the
// flow's code verifier in place of a client secret.
func (f *Flow) Exchange(ctx context.Context, code string) (TokenPair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)

	tok, err := f.cfg.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return TokenPair{}, tokenError(shared.ErrAuthFailed, err)
	}

	pair := pairFromToken(tok)
	f.persist(pair)
	return pair, nil
}

// Refresh trades a refresh token for a fresh token pair. When the
// response omits a refresh token the prior one is retained.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, shared.ErrNoRefreshToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)

	tok, err := f.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return TokenPair{}, tokenError(shared.ErrRefreshFailed, err)
	}

	pair := pairFromToken(tok)
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	f.persist(pair)
	return pair, nil
}

func (f *Flow) persist(pair TokenPair) {
	if f.saver == nil || pair.RefreshToken == "" {
		return
	}
	if err := f.saver.SaveRefreshToken(pair.RefreshToken); err != nil {
		f.logger.Warnf("failed to persist refresh token: %v", err)
	}
}

// tokenError maps a token endpoint failure onto a sentinel, carrying the
// status code and a truncated response body when the provider answered.
func tokenError(sentinel error, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return fmt.Errorf("%w: token endpoint returned %d: %s",
			sentinel, rerr.Response.StatusCode, shared.Snippet(string(rerr.Body)))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func pairFromToken(tok *oauth2.Token) TokenPair {
	expires := 0
	if !tok.Expiry.IsZero() {
		if d := time.Until(tok.Expiry); d > 0 {
			expires = int(d.Round(time.Second).Seconds())
		}
	}

	scope, _ := tok.Extra("scope").(string)

	return TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expires,
		TokenType:    tok.Type(),
		Scope:        scope,
	}
}
