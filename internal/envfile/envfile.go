// Package envfile reads the KEY=VALUE .env files the backend is configured with.
package envfile

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Values is a parsed .env file.
type Values map[string]string

// Get returns the value of key, or fallback when the key is absent.
func (v Values) Get(key, fallback string) string {
	if val, ok := v[key]; ok {
		return val
	}
	return fallback
}

// Parse reads KEY=VALUE lines. Empty lines, lines starting with '#' and lines without '='
// are skipped. The value is trimmed and surrounding quotes are removed. The last
// occurrence of a key wins.
func Parse(r io.Reader) (Values, error) {
	values := Values{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.Trim(strings.TrimSpace(value), `"`), `'`)
		values[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to scan env file")
	}
	return values, nil
}

// Read parses the file at path. A missing file yields an empty set.
func Read(path string) (Values, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Values{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open env file %q", path)
	}
	defer f.Close()
	return Parse(f)
}

// DatabaseParams are the connection settings of the application database.
type DatabaseParams struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// URL renders the parameters as a postgres connection URL.
func (p DatabaseParams) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + strconv.Itoa(p.Port),
		Path:   "/" + p.Name,
	}
	return u.String()
}

// DatabaseParams reads DB_HOST, DB_PORT, DB_NAME, DB_USER and DB_PASS with the installer's
// fallbacks. defaultName is used when DB_NAME is not set.
func (v Values) DatabaseParams(defaultName string) DatabaseParams {
	port, err := strconv.Atoi(v.Get("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	return DatabaseParams{
		Host:     v.Get("DB_HOST", "localhost"),
		Port:     port,
		Name:     v.Get("DB_NAME", defaultName),
		User:     v.Get("DB_USER", "atuar_pay"),
		Password: v.Get("DB_PASS", "123456"),
	}
}

// CacheParams are the connection settings of the Redis server the backend uses.
type CacheParams struct {
	// URI is set when the backend is configured with REDIS_URI and wins over the rest.
	URI      string
	Addr     string
	Password string
	DB       int
}

// CacheParams reads REDIS_URI, or REDIS_HOST, REDIS_PORT, REDIS_PASSWORD and REDIS_DB.
func (v Values) CacheParams() CacheParams {
	db, err := strconv.Atoi(v.Get("REDIS_DB", "0"))
	if err != nil {
		db = 0
	}
	return CacheParams{
		URI:      v.Get("REDIS_URI", ""),
		Addr:     v.Get("REDIS_HOST", "127.0.0.1") + ":" + v.Get("REDIS_PORT", "6379"),
		Password: v.Get("REDIS_PASSWORD", ""),
		DB:       db,
	}
}
