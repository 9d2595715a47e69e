package otf_api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Cognito user pool the mobile app authenticates against.
const (
	cognitoEndpoint = "https://cognito-idp.us-east-1.amazonaws.com/"
	cognitoClientID = "1457d19r0pcjgmp5agooi0rb1b"

	// Tokens are refreshed this long before their actual expiry.
	tokenExpiryMargin = 5 * time.Minute
)

type authParameters struct {
	Username     string `json:"USERNAME,omitempty"`
	Password     string `json:"PASSWORD,omitempty"`
	RefreshToken string `json:"REFRESH_TOKEN,omitempty"`
}

type initiateAuthRequest struct {
	AuthParameters authParameters `json:"AuthParameters"`
	AuthFlow       string         `json:"AuthFlow"`
	ClientID       string         `json:"ClientId"`
}

type initiateAuthResponse struct {
	AuthenticationResult struct {
		IDToken      string `json:"IdToken"`
		AccessToken  string `json:"AccessToken"`
		RefreshToken string `json:"RefreshToken"`
		ExpiresIn    int    `json:"ExpiresIn"`
	} `json:"AuthenticationResult"`
}

// CognitoSession is the standard Session implementation: it logs in with the
// member's username and password and refreshes the token pair when it is
// about to expire. It is safe for concurrent use.
type CognitoSession struct {
	httpClient *http.Client
	clientID   string
	endpoint   string

	mu           sync.RWMutex
	idToken      string
	refreshToken string
	expiresAt    time.Time
	memberUUID   string
	email        string
	cognitoID    string
}

// Login authenticates a member with username and password and returns a
// ready session. The Cognito client id can be overridden with OTF_CLIENT_ID.
func Login(ctx context.Context, username, password string) (*CognitoSession, error) {
	if username == "" || password == "" {
		return nil, &ConfigurationError{Message: "username and password are required"}
	}

	s := &CognitoSession{
		httpClient: &http.Client{Timeout: responseTimeout},
		clientID:   cognitoClientID,
		endpoint:   cognitoEndpoint,
	}
	if v := getEnvVar("OTF_CLIENT_ID"); v != "" {
		s.clientID = v
	}
	if v := getEnvVar("OTF_COGNITO_ENDPOINT"); v != "" {
		s.endpoint = v
	}

	if err := s.initiateAuth(ctx, initiateAuthRequest{
		AuthParameters: authParameters{Username: username, Password: password},
		AuthFlow:       "USER_PASSWORD_AUTH",
		ClientID:       s.clientID,
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// LoginFromEnv authenticates with the OTF_EMAIL and OTF_PASSWORD environment
// variables.
func LoginFromEnv(ctx context.Context) (*CognitoSession, error) {
	return Login(ctx, getEnvVar("OTF_EMAIL"), getEnvVar("OTF_PASSWORD"))
}

func (s *CognitoSession) initiateAuth(ctx context.Context, reqBody initiateAuthRequest) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed marshaling auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("error preparing auth request: %w", err)
	}
	req.Header = http.Header{
		"Content-Type": {"application/x-amz-json-1.1"},
		"X-Amz-Target": {"AWSCognitoIdentityProviderService.InitiateAuth"},
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error authenticating: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return &RequestError{Status: res.StatusCode, Path: "InitiateAuth", Body: body, Message: "authentication failed"}
	}

	var parsed initiateAuthResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("error parsing auth response: %w", err)
	}
	if parsed.AuthenticationResult.IDToken == "" {
		return &ConfigurationError{Message: "authentication returned no token"}
	}

	return s.applyTokens(parsed)
}

func (s *CognitoSession) applyTokens(resp initiateAuthResponse) error {
	idClaims, err := parseJWTClaims(resp.AuthenticationResult.IDToken)
	if err != nil {
		return fmt.Errorf("error parsing id token: %w", err)
	}
	accessClaims, err := parseJWTClaims(resp.AuthenticationResult.AccessToken)
	if err != nil {
		return fmt.Errorf("error parsing access token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.idToken = resp.AuthenticationResult.IDToken
	// A refresh response omits the refresh token; keep the one we have.
	if resp.AuthenticationResult.RefreshToken != "" {
		s.refreshToken = resp.AuthenticationResult.RefreshToken
	}
	s.expiresAt = time.Unix(idClaims.Exp, 0)
	s.memberUUID = idClaims.CognitoUsername
	s.email = idClaims.Email
	s.cognitoID = accessClaims.Sub
	return nil
}

// BearerToken implements Session.
func (s *CognitoSession) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken
}

// ExpiresSoon implements Session.
func (s *CognitoSession) ExpiresSoon() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().After(s.expiresAt.Add(-tokenExpiryMargin))
}

// Refresh implements Session, exchanging the refresh token for a new token
// pair.
func (s *CognitoSession) Refresh(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return &ConfigurationError{Message: "session has no refresh token"}
	}

	return s.initiateAuth(ctx, initiateAuthRequest{
		AuthParameters: authParameters{RefreshToken: refreshToken},
		AuthFlow:       "REFRESH_TOKEN_AUTH",
		ClientID:       s.clientID,
	})
}

// MemberUUID implements Session; the member UUID is the pool's username
// claim.
func (s *CognitoSession) MemberUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memberUUID
}

// Email implements Session.
func (s *CognitoSession) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// CognitoID implements Session; this is the access token's subject.
func (s *CognitoSession) CognitoID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cognitoID
}

var _ Session = (*CognitoSession)(nil)

type jwtClaims struct {
	Sub             string `json:"sub"`
	CognitoUsername string `json:"cognito:username"`
	Email           string `json:"email"`
	Exp             int64  `json:"exp"`
}

// parseJWTClaims decodes a token's claims without verifying the signature.
// The token came straight from Cognito over TLS; only the claims are needed.
func parseJWTClaims(token string) (jwtClaims, error) {
	var claims jwtClaims
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, fmt.Errorf("malformed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("malformed token payload: %w", err)
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("malformed token claims: %w", err)
	}
	return claims, nil
}
