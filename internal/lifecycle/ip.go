package lifecycle

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ClientIP extracts the originating client address from proxy headers,
// falling back to the connection's remote address. X-Forwarded-For may
// carry a chain; the first valid address wins.
func ClientIP(headers http.Header, remoteAddr string) string {
	if forwarded := headers.Get("X-Forwarded-For"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ",") {
			candidate := strings.TrimSpace(part)
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	if realIP := strings.TrimSpace(headers.Get("X-Real-IP")); realIP != "" {
		if net.ParseIP(realIP) != nil {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return ""
}

// RecordRegistrationIP validates and stores the IP an account
// registered from, feeding the IP-velocity analyzer.
func (m *Manager) RecordRegistrationIP(ctx context.Context, id int64, ip string) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid registration ip %q", ip)
	}
	if err := m.repo.SetRegistrationIP(ctx, id, ip); err != nil {
		return fmt.Errorf("store registration ip: %w", err)
	}
	m.logger.Debug("Recorded registration IP", zap.Int64("account_id", id), zap.String("ip", ip))
	return nil
}
