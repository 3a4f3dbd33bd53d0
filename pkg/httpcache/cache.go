// Package httpcache memoizes responses of deterministic API calls.
package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

// Memo holds response bodies keyed by request URL and body. Entries expire
// after the configured TTL so a changed timezone database is eventually
// picked up.
type Memo struct {
	cache  *otter.Cache[string, []byte]
	logger *slog.Logger
}

// NewMemo returns a memo holding at most size entries for ttl each.
func NewMemo(size int, ttl time.Duration, logger *slog.Logger) *Memo {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Memo{
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      size,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](ttl),
		}),
		logger: logger,
	}
}

func key(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored response for url and body.
func (m *Memo) Get(url string, body []byte) ([]byte, bool) {
	data, ok := m.cache.GetIfPresent(key(url, body))
	if !ok {
		m.logger.Debug("memo miss", "url", url)
		return nil, false
	}
	m.logger.Debug("memo hit", "url", url, "size", len(data))
	return data, true
}

// Set stores resp as the answer to url and body.
func (m *Memo) Set(url string, body, resp []byte) {
	m.cache.Set(key(url, body), resp)
	m.logger.Debug("memo set", "url", url, "size", len(resp))
}

// Len reports the approximate number of stored entries.
func (m *Memo) Len() int {
	return m.cache.EstimatedSize()
}
