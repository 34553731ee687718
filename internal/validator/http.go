package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

const (
	LoginPath = "/auth/login"
	QueuePath = "/admin/queues"

	maxBodySize = 1 << 20
)

// Placeholder credentials. The auth and queue checks only need the endpoints to answer,
// a 401 is as good as a 200.
var (
	loginBody = map[string]string{"email": "admin@chatia.io", "password": "admin123"}

	queueUser     = "admin"
	queuePassword = "senha"
)

func (v *Validator) checkBackendHTTP(ctx context.Context) bool {
	status, err := v.get(ctx, v.dep.BackendURL, v.timeouts.HTTP, true)
	if err != nil {
		v.fail("Backend HTTP is not reachable: %v", err)
		return false
	}
	// a backend without a route on / answers 404
	if status != http.StatusOK && status != http.StatusNotFound {
		v.fail("Backend HTTP returned status %d", status)
		return false
	}
	v.pass("Backend HTTP is responding")
	return true
}

// checkFrontendHTTP never fails: backend-only installs have no frontend.
func (v *Validator) checkFrontendHTTP(ctx context.Context) bool {
	status, err := v.get(ctx, v.dep.FrontendURL, v.timeouts.HTTP, true)
	switch {
	case err != nil:
		v.warn("Frontend HTTP is not reachable: %v (non-critical)", err)
	case status != http.StatusOK:
		v.warn("Frontend HTTP returned status %d (non-critical)", status)
	default:
		v.pass("Frontend HTTP is responding")
	}
	return true
}

func (v *Validator) checkAuth(ctx context.Context) bool {
	payload, err := json.Marshal(loginBody)
	if err != nil {
		v.warn("Authentication check could not build its request: %v (non-critical)", err)
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.dep.BackendURL+LoginPath, bytes.NewReader(payload))
	if err != nil {
		v.warn("Authentication check could not build its request: %v (non-critical)", err)
		return true
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := v.do(req, v.timeouts.HTTP, true)
	if err != nil {
		v.warn("Authentication is not reachable: %v (non-critical)", err)
		return true
	}
	if !slices.Contains([]int{http.StatusOK, http.StatusUnauthorized, http.StatusNotFound}, status) {
		v.warn("Authentication returned unexpected status %d (non-critical)", status)
		return true
	}

	v.pass("Authentication is responding")
	if status == http.StatusOK {
		v.inspectToken(body)
	}
	return true
}

// inspectToken checks that a successful login hands out something shaped like a JWT. The
// signature cannot be verified here, the secret lives in the backend's .env.
func (v *Validator) inspectToken(body []byte) {
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		v.lg.Debug().Msg("login response carries no token field")
		return
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{}); err != nil {
		v.warn("Login returned a token that is not a JWT: %v (non-critical)", err)
	}
}

func (v *Validator) checkBullQueue(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.dep.BackendURL+QueuePath, nil)
	if err != nil {
		v.warn("Bull queue check could not build its request: %v (non-critical)", err)
		return true
	}
	req.SetBasicAuth(queueUser, queuePassword)

	status, _, err := v.do(req, v.timeouts.HTTP, true)
	switch {
	case err != nil:
		v.warn("Bull queue board is not reachable (non-critical): %v", err)
	case slices.Contains([]int{http.StatusOK, http.StatusUnauthorized, http.StatusNotFound}, status):
		v.pass("Bull queue board is responding")
	default:
		v.warn("Bull queue board returned status %d (non-critical)", status)
	}
	return true
}

func (v *Validator) get(ctx context.Context, url string, timeout time.Duration, follow bool) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "failed to build request for %s", url)
	}
	status, _, err := v.do(req, timeout, follow)
	return status, err
}

// do sends req within timeout and returns the status code and the start of the body.
func (v *Validator) do(req *http.Request, timeout time.Duration, follow bool) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()

	client := v.http
	if !follow {
		noRedirect := *v.http
		noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &noRedirect
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		v.lg.Debug().Err(err).Str("url", req.URL.String()).Msg("failed to read response body")
	}
	return resp.StatusCode, body, nil
}
