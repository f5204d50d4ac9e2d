// Package domainlist manages the email-domain allow and deny lists.
// Allow-listed domains bypass analysis entirely; deny-listed domains
// seed every analysis with a spam score. Both lists are persisted
// through the settings store and any change flushes cached results.
package domainlist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/settings"
)

const (
	allowlistKey = "domains.allowlist"
	denylistKey  = "domains.denylist"

	// ModeMerge adds imported domains to the existing lists.
	ModeMerge = "merge"
	// ModeReplace discards the existing lists before importing.
	ModeReplace = "replace"
)

// Reject bare labels and anything that is not a plausible registered
// domain. Leading/trailing hyphens in a label are rejected too.
var domainRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// Export is the portable JSON form of both lists.
type Export struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Allowlist  []string  `json:"allowlist"`
	Denylist   []string  `json:"denylist"`
}

// Manager owns the in-memory view of both lists.
type Manager struct {
	mu     sync.RWMutex
	store  *settings.Store
	logger *zap.Logger
	allow  map[string]bool
	deny   map[string]bool
}

// NewManager loads both lists from the settings store.
func NewManager(store *settings.Store, logger *zap.Logger) *Manager {
	m := &Manager{store: store, logger: logger}
	m.allow = toSet(store.GetStringSlice(allowlistKey))
	m.deny = toSet(store.GetStringSlice(denylistKey))
	return m
}

// IsValidDomain reports whether s looks like a registrable domain.
func IsValidDomain(s string) bool {
	return len(s) <= 253 && domainRe.MatchString(s)
}

// Allowed reports whether domain is on the allow list.
func (m *Manager) Allowed(domain string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allow[strings.ToLower(domain)]
}

// Denied reports whether domain is on the deny list.
func (m *Manager) Denied(domain string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deny[strings.ToLower(domain)]
}

// Allowlist returns the allow list sorted for display.
func (m *Manager) Allowlist() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.allow)
}

// Denylist returns the deny list sorted for display.
func (m *Manager) Denylist() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.deny)
}

// AddToAllowlist adds a domain to the allow list. It returns false
// without error when the domain was already present.
func (m *Manager) AddToAllowlist(ctx context.Context, domain string) (bool, error) {
	return m.add(ctx, domain, allowlistKey, func(m *Manager) map[string]bool { return m.allow })
}

// AddToDenylist adds a domain to the deny list.
func (m *Manager) AddToDenylist(ctx context.Context, domain string) (bool, error) {
	return m.add(ctx, domain, denylistKey, func(m *Manager) map[string]bool { return m.deny })
}

// RemoveFromAllowlist removes a domain from the allow list.
func (m *Manager) RemoveFromAllowlist(ctx context.Context, domain string) (bool, error) {
	return m.remove(ctx, domain, allowlistKey, func(m *Manager) map[string]bool { return m.allow })
}

// RemoveFromDenylist removes a domain from the deny list.
func (m *Manager) RemoveFromDenylist(ctx context.Context, domain string) (bool, error) {
	return m.remove(ctx, domain, denylistKey, func(m *Manager) map[string]bool { return m.deny })
}

// ExportJSON serialises both lists.
func (m *Manager) ExportJSON() ([]byte, error) {
	m.mu.RLock()
	export := Export{
		Version:    1,
		ExportedAt: time.Now().UTC(),
		Allowlist:  sorted(m.allow),
		Denylist:   sorted(m.deny),
	}
	m.mu.RUnlock()
	return json.MarshalIndent(export, "", "  ")
}

// ImportJSON loads lists from an export. ModeMerge unions the imported
// domains into the current lists, ModeReplace discards the current
// lists first. Invalid domains are skipped and counted, not fatal.
func (m *Manager) ImportJSON(ctx context.Context, data []byte, mode string) (imported, skipped int, err error) {
	if mode != ModeMerge && mode != ModeReplace {
		return 0, 0, fmt.Errorf("unknown import mode %q", mode)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return 0, 0, fmt.Errorf("decode domain list export: %w", err)
	}

	m.mu.Lock()
	allow := m.allow
	deny := m.deny
	if mode == ModeReplace {
		allow = map[string]bool{}
		deny = map[string]bool{}
	}
	for _, domain := range export.Allowlist {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if !IsValidDomain(domain) {
			skipped++
			continue
		}
		if !allow[domain] {
			allow[domain] = true
			imported++
		}
	}
	for _, domain := range export.Denylist {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if !IsValidDomain(domain) {
			skipped++
			continue
		}
		if !deny[domain] {
			deny[domain] = true
			imported++
		}
	}
	m.allow = allow
	m.deny = deny
	allowSnap := sorted(allow)
	denySnap := sorted(deny)
	m.mu.Unlock()

	if err := m.persist(ctx, allowSnap, denySnap); err != nil {
		return imported, skipped, err
	}

	m.logger.Info("Imported domain lists",
		zap.String("mode", mode),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped))
	return imported, skipped, nil
}

func (m *Manager) add(ctx context.Context, domain, key string, pick func(*Manager) map[string]bool) (bool, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !IsValidDomain(domain) {
		return false, fmt.Errorf("invalid domain %q", domain)
	}

	m.mu.Lock()
	set := pick(m)
	if set[domain] {
		m.mu.Unlock()
		return false, nil
	}
	set[domain] = true
	snapshot := sorted(set)
	m.mu.Unlock()

	if err := m.store.SetMany(ctx, map[string]interface{}{key: snapshot}); err != nil {
		return false, err
	}
	m.logger.Info("Domain list updated", zap.String("list", key), zap.String("domain", domain), zap.String("op", "add"))
	return true, nil
}

func (m *Manager) remove(ctx context.Context, domain, key string, pick func(*Manager) map[string]bool) (bool, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	m.mu.Lock()
	set := pick(m)
	if !set[domain] {
		m.mu.Unlock()
		return false, nil
	}
	delete(set, domain)
	snapshot := sorted(set)
	m.mu.Unlock()

	if err := m.store.SetMany(ctx, map[string]interface{}{key: snapshot}); err != nil {
		return false, err
	}
	m.logger.Info("Domain list updated", zap.String("list", key), zap.String("domain", domain), zap.String("op", "remove"))
	return true, nil
}

// persist writes both lists in one settings batch, which also flushes
// cached analysis results.
func (m *Manager) persist(ctx context.Context, allow, deny []string) error {
	return m.store.SetMany(ctx, map[string]interface{}{
		allowlistKey: allow,
		denylistKey:  deny,
	})
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = true
		}
	}
	return set
}

func sorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
