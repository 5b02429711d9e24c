// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/apiresponses"
	"github.com/telekom/notification-service/pkg/config"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/system"
)

const (
	AuthHeaderKey = "Authorization"
)

// Authenticator produces the middleware that establishes the caller identity.
type Authenticator interface {
	Middleware() gin.HandlerFunc
}

// AuthHandler verifies bearer tokens against the JWKS of the authorization
// server and stores username, email and properties in the gin context.
type AuthHandler struct {
	jwks     *keyfunc.JWKS
	resolver *identity.Resolver
	log      *zap.SugaredLogger
}

// NewAuth fetches the JWKS at <authorizationServer.url>/<jwksEndpoint>.
func NewAuth(log *zap.SugaredLogger, cfg config.Config) (*AuthHandler, error) {
	log = log.Named("auth")
	options := keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshTimeout:  time.Second * 10,
		RefreshErrorHandler: func(err error) {
			log.Errorf("failed to refresh JWKS configuration: %v", err)
		},
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(cfg.AuthorizationServer.URL, "/"), strings.TrimLeft(cfg.AuthorizationServer.JWKSEndpoint, "/"))

	// A configured CA wins; InsecureSkipVerify is for development only.
	if cfg.AuthorizationServer.CertificateAuthority != "" {
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM([]byte(cfg.AuthorizationServer.CertificateAuthority)); !ok {
			return nil, errors.New("could not parse authorizationServer.certificateAuthority PEM")
		}
		transport := &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}}
		options.Client = &http.Client{Transport: transport}
	} else if cfg.AuthorizationServer.InsecureSkipVerify {
		transport := &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec
		options.Client = &http.Client{Transport: transport}
		log.Warn("authorizationServer.insecureSkipVerify=true: TLS certificate verification is DISABLED (dev only)")
	}

	jwks, err := keyfunc.Get(url, options)
	if err != nil {
		return nil, fmt.Errorf("could not get JWKS from %s: %w", url, err)
	}
	log.Infow("Loaded JWKS", "url", url)

	return newAuthHandler(jwks, identity.NewResolver(cfg.Authorization), log), nil
}

func newAuthHandler(jwks *keyfunc.JWKS, resolver *identity.Resolver, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{jwks: jwks, resolver: resolver, log: log}
}

// Close stops the background JWKS refresh.
func (a *AuthHandler) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func (a *AuthHandler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		authHeader := c.GetHeader(AuthHeaderKey)
		// delete the header to avoid logging it by accident
		c.Request.Header.Del(AuthHeaderKey)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			apiresponses.RespondUnauthorized(c, "No Bearer token provided in Authorization header")
			c.Abort()
			return
		}
		bearer := authHeader[7:]

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(bearer, &claims, a.jwks.Keyfunc)
		if err != nil && strings.Contains(err.Error(), "key ID") {
			// Unknown kid: the IdP may have rotated its keys.
			if rErr := a.jwks.Refresh(context.Background(), keyfunc.RefreshOptions{}); rErr == nil {
				claims = jwt.MapClaims{}
				_, err = jwt.ParseWithClaims(bearer, &claims, a.jwks.Keyfunc)
			}
		}
		if err != nil {
			apiresponses.RespondUnauthorized(c, err.Error())
			c.Abort()
			return
		}

		username := claimString(claims, "preferred_username")
		if username == "" {
			username = claimString(claims, "sub")
		}
		if username == "" {
			apiresponses.RespondUnauthorized(c, "token carries neither preferred_username nor sub")
			c.Abort()
			return
		}

		groups := extractGroups(claims)
		properties := a.resolver.Properties(claims, groups)

		c.Set(system.EmailKey, claimString(claims, "email"))
		identity.IntoContext(c, identity.Identity{Username: username, Properties: properties})
		if len(groups) > 0 {
			c.Set("groups", groups)
		}
		if l := system.GetReqLogger(c, nil); l != nil {
			c.Set(system.ReqLoggerKey, system.EnrichReqLoggerWithAuth(c, l))
		}

		c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

// extractGroups reads the "groups" claim or, failing that, Keycloak's
// realm_access.roles. Group paths are reduced to their last segment.
func extractGroups(claims jwt.MapClaims) []string {
	var raw []string
	appendAll := func(v interface{}) {
		switch g := v.(type) {
		case []interface{}:
			for _, item := range g {
				if s, ok := item.(string); ok {
					raw = append(raw, s)
				}
			}
		case []string:
			raw = append(raw, g...)
		}
	}
	if rawGroups, ok := claims["groups"]; ok {
		appendAll(rawGroups)
	} else if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		appendAll(realm["roles"])
	}

	seen := make(map[string]struct{}, len(raw))
	groups := make([]string, 0, len(raw))
	for _, g := range raw {
		g = strings.TrimLeft(strings.TrimSpace(g), "/")
		if idx := strings.LastIndex(g, "/"); idx != -1 {
			g = g[idx+1:]
		}
		if g == "" {
			continue
		}
		if _, exists := seen[g]; exists {
			continue
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}
	return groups
}

// StaticAuth authenticates every request as one fixed identity. Only for
// --disable-auth development setups and tests.
type StaticAuth struct {
	Identity identity.Identity
}

func (s StaticAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity.IntoContext(c, s.Identity)
		if l := system.GetReqLogger(c, nil); l != nil {
			c.Set(system.ReqLoggerKey, system.EnrichReqLoggerWithAuth(c, l))
		}
		c.Next()
	}
}
