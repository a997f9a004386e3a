// Package auth is the identity boundary: it turns an incoming request
// into an opaque owner id. The core attaches no behavior to identity
// beyond scoping records.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	ErrNoCredentials = errors.New("no credentials provided")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingOwner  = errors.New("missing owner header")
)

// Verifier resolves the owner behind a request.
type Verifier interface {
	VerifyOwner(ctx context.Context, r *http.Request) (string, error)
}

// FirebaseVerifier checks bearer tokens against a Firebase project and
// uses the token UID as the owner id.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier builds the verifier from a project id plus an
// optional service-account credentials file. Without a file the SDK
// falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	config := &firebase.Config{ProjectID: projectID}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, config, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyOwner(ctx context.Context, r *http.Request) (string, error) {
	idToken := bearerToken(r.Header.Get("Authorization"))
	if idToken == "" {
		return "", ErrNoCredentials
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return token.UID, nil
}

// HeaderVerifier trusts the X-Owner-ID header. Development only; it
// performs no verification at all.
type HeaderVerifier struct{}

func (HeaderVerifier) VerifyOwner(_ context.Context, r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get("X-Owner-ID"))
	if owner == "" {
		return "", ErrMissingOwner
	}
	return owner, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
