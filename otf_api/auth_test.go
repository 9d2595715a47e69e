package otf_api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// makeJWT builds an unsigned token carrying the given claims, enough for
// parseJWTClaims which never checks the signature.
func makeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestParseJWTClaims(t *testing.T) {
	token := makeJWT(t, map[string]any{
		"sub":              "cognito-sub-1",
		"cognito:username": "member-uuid-1",
		"email":            "member@example.com",
		"exp":              1790000000,
	})

	claims, err := parseJWTClaims(token)
	if err != nil {
		t.Fatalf("parseJWTClaims() error = %v", err)
	}
	if claims.Sub != "cognito-sub-1" {
		t.Errorf("Sub = %q, want %q", claims.Sub, "cognito-sub-1")
	}
	if claims.CognitoUsername != "member-uuid-1" {
		t.Errorf("CognitoUsername = %q, want %q", claims.CognitoUsername, "member-uuid-1")
	}
	if claims.Email != "member@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "member@example.com")
	}
	if claims.Exp != 1790000000 {
		t.Errorf("Exp = %d, want %d", claims.Exp, 1790000000)
	}
}

func TestParseJWTClaimsRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{
		"",
		"only-one-part",
		"two.parts",
		"a.!!!not-base64!!!.c",
		"a." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".c",
	} {
		if _, err := parseJWTClaims(token); err == nil {
			t.Errorf("parseJWTClaims(%q) error = nil, want error", token)
		}
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	for _, tt := range []struct {
		name     string
		username string
		password string
	}{
		{"no username", "", "secret"},
		{"no password", "member@example.com", ""},
		{"neither", "", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Login(context.Background(), tt.username, tt.password)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Login() error = %v, want *ConfigurationError", err)
			}
		})
	}
}

// cognitoStub fakes the InitiateAuth endpoint and records each request body.
func cognitoStub(t *testing.T, requests *[]initiateAuthRequest, refreshToken string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/x-amz-json-1.1" {
			t.Errorf("Content-Type = %q, want %q", got, "application/x-amz-json-1.1")
		}
		if got := r.Header.Get("X-Amz-Target"); got != "AWSCognitoIdentityProviderService.InitiateAuth" {
			t.Errorf("X-Amz-Target = %q, want InitiateAuth target", got)
		}

		var req initiateAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode auth request: %v", err)
		}
		*requests = append(*requests, req)

		exp := time.Now().Add(time.Hour).Unix()
		id := makeJWT(t, map[string]any{
			"cognito:username": "member-uuid-1",
			"email":            "member@example.com",
			"exp":              exp,
		})
		access := makeJWT(t, map[string]any{"sub": "cognito-sub-1", "exp": exp})

		writeJSON(t, w, map[string]any{
			"AuthenticationResult": map[string]any{
				"IdToken":      id,
				"AccessToken":  access,
				"RefreshToken": refreshToken,
				"ExpiresIn":    3600,
			},
		})
	}
}

func TestLogin(t *testing.T) {
	var requests []initiateAuthRequest
	server := httptest.NewServer(cognitoStub(t, &requests, "refresh-1"))
	t.Cleanup(server.Close)
	t.Setenv("OTF_COGNITO_ENDPOINT", server.URL)
	t.Setenv("OTF_CLIENT_ID", "test-client-id")

	session, err := Login(context.Background(), "member@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("auth requests = %d, want 1", len(requests))
	}
	req := requests[0]
	if req.AuthFlow != "USER_PASSWORD_AUTH" {
		t.Errorf("AuthFlow = %q, want USER_PASSWORD_AUTH", req.AuthFlow)
	}
	if req.ClientID != "test-client-id" {
		t.Errorf("ClientId = %q, want test-client-id", req.ClientID)
	}
	if req.AuthParameters.Username != "member@example.com" || req.AuthParameters.Password != "secret" {
		t.Errorf("AuthParameters = %+v, want the submitted credentials", req.AuthParameters)
	}

	if session.MemberUUID() != "member-uuid-1" {
		t.Errorf("MemberUUID() = %q, want member-uuid-1", session.MemberUUID())
	}
	if session.Email() != "member@example.com" {
		t.Errorf("Email() = %q, want member@example.com", session.Email())
	}
	if session.CognitoID() != "cognito-sub-1" {
		t.Errorf("CognitoID() = %q, want cognito-sub-1", session.CognitoID())
	}
	if session.BearerToken() == "" {
		t.Error("BearerToken() is empty after login")
	}
	if session.ExpiresSoon() {
		t.Error("ExpiresSoon() = true for a token valid another hour")
	}
}

func TestLoginSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"__type":"NotAuthorizedException","message":"Incorrect username or password."}`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("OTF_COGNITO_ENDPOINT", server.URL)

	_, err := Login(context.Background(), "member@example.com", "wrong")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Login() error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", reqErr.Status, http.StatusBadRequest)
	}
}

func TestRefresh(t *testing.T) {
	var requests []initiateAuthRequest
	server := httptest.NewServer(cognitoStub(t, &requests, "refresh-1"))
	t.Cleanup(server.Close)
	t.Setenv("OTF_COGNITO_ENDPOINT", server.URL)

	session, err := Login(context.Background(), "member@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("auth requests = %d, want 2", len(requests))
	}
	req := requests[1]
	if req.AuthFlow != "REFRESH_TOKEN_AUTH" {
		t.Errorf("AuthFlow = %q, want REFRESH_TOKEN_AUTH", req.AuthFlow)
	}
	if req.AuthParameters.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q, want refresh-1", req.AuthParameters.RefreshToken)
	}
	if req.AuthParameters.Username != "" || req.AuthParameters.Password != "" {
		t.Errorf("AuthParameters = %+v, want credentials omitted on refresh", req.AuthParameters)
	}
}

func TestRefreshKeepsTokenWhenResponseOmitsIt(t *testing.T) {
	var requests []initiateAuthRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First call answers the login with a refresh token, later calls
		// omit it the way Cognito does on refresh.
		token := ""
		if len(requests) == 0 {
			token = "refresh-1"
		}
		cognitoStub(t, &requests, token)(w, r)
	}))
	t.Cleanup(server.Close)
	t.Setenv("OTF_COGNITO_ENDPOINT", server.URL)

	session, err := Login(context.Background(), "member@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if got := requests[2].AuthParameters.RefreshToken; got != "refresh-1" {
		t.Errorf("second refresh sent token %q, want the one from login", got)
	}
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	session := &CognitoSession{}
	err := session.Refresh(context.Background())
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Refresh() error = %v, want *ConfigurationError", err)
	}
}
