// Package roster fetches the authoritative enrollment list from the course
// platform's CSV export endpoint.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/enrollment-verifier/internal/config"
	"github.com/enrollment-verifier/internal/validation"
	"github.com/rs/zerolog"
)

// Roster is the set of authoritative emails for one batch run. When the
// upstream export could not be fetched or parsed the set is empty and Err
// carries the cause; callers must surface that to the operator rather than
// treating everyone as unmatched.
type Roster struct {
	emails map[string]struct{}
	// Err is set when the roster is unavailable for this run
	Err error
}

// Contains reports membership, case-insensitively and whitespace-trimmed
func (r *Roster) Contains(email string) bool {
	if r == nil || r.emails == nil {
		return false
	}
	_, ok := r.emails[validation.NormalizeEmail(email)]
	return ok
}

// Size returns the number of loaded emails
func (r *Roster) Size() int {
	if r == nil {
		return 0
	}
	return len(r.emails)
}

// Available reports whether the roster was fetched and parsed successfully
func (r *Roster) Available() bool {
	return r != nil && r.Err == nil
}

// FromEmails builds an in-memory roster, normalizing each entry. Used by
// tests and manual tooling.
func FromEmails(emails ...string) *Roster {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if normalized := validation.NormalizeEmail(e); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &Roster{emails: set}
}

func unavailable(err error) *Roster {
	return &Roster{emails: map[string]struct{}{}, Err: err}
}

// Loader fetches and parses the roster CSV
type Loader struct {
	url         string
	emailColumn string
	client      *http.Client
	log         zerolog.Logger
}

// NewLoader creates a roster loader from configuration
func NewLoader(cfg *config.RosterConfig, log zerolog.Logger) *Loader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		url:         cfg.URL,
		emailColumn: cfg.EmailColumn,
		client:      &http.Client{Timeout: timeout},
		log:         log.With().Str("component", "roster").Logger(),
	}
}

// Load downloads and parses the roster. It never returns a nil roster and
// never fails hard: every error degrades to an empty, unavailable set.
func (l *Loader) Load(ctx context.Context) *Roster {
	if l.url == "" {
		err := fmt.Errorf("roster URL is not configured")
		l.log.Error().Msg("ROSTER_URL is not set; roster unavailable")
		return unavailable(err)
	}

	l.log.Info().Str("url", l.url).Msg("Downloading authorized emails")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return l.failed(fmt.Errorf("build roster request: %w", err))
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return l.failed(fmt.Errorf("download roster: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return l.failed(fmt.Errorf("download roster: unexpected status %d", resp.StatusCode))
	}

	roster, err := l.parse(resp.Body)
	if err != nil {
		return l.failed(err)
	}

	l.log.Info().Int("emails", roster.Size()).Msg("Roster loaded")
	return roster
}

func (l *Loader) failed(err error) *Roster {
	l.log.Error().Err(err).Msg("Roster unavailable for this run")
	return unavailable(err)
}

// parse reads the CSV stream and collects the configured email column. The
// header is matched exactly as provided (trimmed); a missing column makes
// the whole roster unavailable instead of silently matching nothing.
func (l *Loader) parse(body io.Reader) (*Roster, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("parse roster header: %w", err)
	}

	emailIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == strings.TrimSpace(l.emailColumn) {
			emailIdx = i
			break
		}
	}
	if emailIdx == -1 {
		return nil, fmt.Errorf("roster is missing email column %q", l.emailColumn)
	}

	emails := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse roster row: %w", err)
		}
		if emailIdx >= len(record) {
			continue
		}
		if email := validation.NormalizeEmail(record[emailIdx]); email != "" {
			emails[email] = struct{}{}
		}
	}

	return &Roster{emails: emails}, nil
}
