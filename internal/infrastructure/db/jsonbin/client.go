// Package jsonbin stores the ledger in a JSONBin.io bin.
//
// JSONBin has no conditional write. Versions are tracked in process, so
// writers sharing one Store are serialised but separate processes can still
// overwrite each other.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
	"github.com/ledgerbook/bookkeeper/internal/core/ports"
)

const (
	// DefaultBaseURL is the JSONBin v3 bins endpoint.
	DefaultBaseURL = "https://api.jsonbin.io/v3/b"

	defaultTimeout = 10 * time.Second
	readAttempts   = 3
	maxBody        = 16 << 20
)

// Config holds the bin coordinates and credentials.
type Config struct {
	BaseURL   string
	BinID     string
	MasterKey string
	Timeout   time.Duration
}

// Store implements ports.DocumentStore over the JSONBin REST API.
type Store struct {
	cfg        Config
	client     *http.Client
	log        zerolog.Logger
	newBackOff func() backoff.BackOff

	mu      sync.Mutex
	version int64
}

var _ ports.DocumentStore = (*Store)(nil)

// New returns a Store. A nil client gets a default one with cfg.Timeout.
func New(cfg Config, client *http.Client, log zerolog.Logger) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Store{
		cfg:        cfg,
		client:     client,
		log:        log.With().Str("backend", "jsonbin").Logger(),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

type latestResponse struct {
	Record json.RawMessage `json:"record"`
}

// Load fetches the latest record. A 404 means the bin is still empty.
func (s *Store) Load(ctx context.Context) ([]byte, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		return s.fetch(ctx)
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(readAttempts))
	if err != nil {
		return nil, 0, err
	}
	if len(data) > 0 && s.version == 0 {
		s.version = 1
	}
	return data, s.version, nil
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.cfg.BaseURL+"/"+s.cfg.BinID+"/latest", nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("load failed")
		return nil, fmt.Errorf("%w: jsonbin get: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		s.log.Warn().Int("status", resp.StatusCode).Msg("load failed")
		return nil, fmt.Errorf("%w: jsonbin get: status %d", domain.ErrStoreUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: jsonbin get: status %d", domain.ErrStoreUnavailable, resp.StatusCode))
	}

	var body latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: jsonbin body: %v", domain.ErrStoreUnavailable, err))
	}
	if len(body.Record) == 0 || string(body.Record) == "null" {
		return nil, nil
	}
	return body.Record, nil
}

// Save replaces the bin contents. Only the in-process version is checked.
func (s *Store) Save(ctx context.Context, data []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expectedVersion != s.version {
		return 0, domain.ErrVersionConflict
	}

	req, err := s.newRequest(ctx, http.MethodPut, s.cfg.BaseURL+"/"+s.cfg.BinID, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Msg("save failed")
		return 0, fmt.Errorf("%w: jsonbin put: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode != http.StatusOK {
		s.log.Error().Int("status", resp.StatusCode).Msg("save failed")
		return 0, fmt.Errorf("%w: jsonbin put: status %d", domain.ErrStoreUnavailable, resp.StatusCode)
	}
	s.version++
	return s.version, nil
}

// Ping loads the bin once.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

func (s *Store) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("jsonbin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", s.cfg.MasterKey)
	return req, nil
}
