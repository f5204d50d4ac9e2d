package lifecycle

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientIP(t *testing.T) {
	assert := assert.New(t)

	headers := http.Header{}
	headers.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal("203.0.113.7", ClientIP(headers, "192.0.2.1:4321"))

	// Garbage in the chain is skipped, not returned.
	headers.Set("X-Forwarded-For", "unknown, 203.0.113.8")
	assert.Equal("203.0.113.8", ClientIP(headers, "192.0.2.1:4321"))

	headers = http.Header{}
	headers.Set("X-Real-IP", "2001:db8::1")
	assert.Equal("2001:db8::1", ClientIP(headers, "192.0.2.1:4321"))

	assert.Equal("192.0.2.1", ClientIP(http.Header{}, "192.0.2.1:4321"))
	assert.Equal("192.0.2.1", ClientIP(http.Header{}, "192.0.2.1"))
	assert.Equal("", ClientIP(http.Header{}, "not-an-address"))
}

func TestRecordRegistrationIP(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &stubRepo{}
	m := NewManager(repo, nil, testConfig(), zap.NewNop())

	require.NoError(t, m.RecordRegistrationIP(ctx, 7, "203.0.113.9"))
	assert.Equal("203.0.113.9", repo.ips[7])

	assert.Error(m.RecordRegistrationIP(ctx, 7, "not-an-ip"))
	assert.Error(m.RecordRegistrationIP(ctx, 7, ""))
}
