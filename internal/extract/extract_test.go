package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func textOf(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out
}

func TestExtractFromLineFindsDomain(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("visit example.com for details"))
	require.Contains(t, textOf(matches), "example.com")
}

func TestExtractFromLineFindsSubdomain(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("host mail.corp.example.co.uk responded"))
	require.Contains(t, textOf(matches), "mail.corp.example.co.uk")
}

func TestExtractFromLineRejectsBareTLD(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("just .com alone"))
	for _, m := range matches {
		require.NotEqual(t, KindDomain, m.Kind)
	}
}

func TestExtractFromLineEnforcesMinLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDomainLabels = 3
	e, err := WithConfig(cfg)
	require.NoError(t, err)

	matches := e.ExtractFromLine([]byte("short example.com here"))
	for _, m := range matches {
		require.NotEqual(t, KindDomain, m.Kind)
	}

	matches = e.ExtractFromLine([]byte("long www.example.com here"))
	require.Contains(t, textOf(matches), "www.example.com")
}

func TestExtractFromLineFindsEmail(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("contact user.name+tag@example.com today"))
	require.Contains(t, textOf(matches), "user.name+tag@example.com")
}

func TestExtractFromLineRejectsEmailWithoutDomainDot(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("ping user@localhost now"))
	for _, m := range matches {
		require.NotEqual(t, KindEmail, m.Kind)
	}
}

func TestExtractFromLineFindsIPv4(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("connection from 192.168.1.100 refused"))
	require.Contains(t, textOf(matches), "192.168.1.100")
}

func TestExtractFromLineRejectsIPv4OutOfRangeOctet(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("bad addr 999.168.1.100 seen"))
	for _, m := range matches {
		require.NotEqual(t, KindIPv4, m.Kind)
	}
}

func TestExtractFromLineFindsIPv6(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("source 2001:db8::1 detected"))
	require.Contains(t, textOf(matches), "2001:db8::1")
}

func TestExtractFromLineDisabledKindSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtractIPv4 = false
	e, err := WithConfig(cfg)
	require.NoError(t, err)

	matches := e.ExtractFromLine([]byte("addr 10.0.0.1 and example.com"))
	for _, m := range matches {
		require.NotEqual(t, KindIPv4, m.Kind)
	}
	require.Contains(t, textOf(matches), "example.com")
}

func TestExtractFromLineWordBoundaryRejectsEmbedded(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("xexample.comx"))
	for _, m := range matches {
		require.NotEqual(t, "example.com", m.Text)
	}
}

func TestWithConfigRejectsInvalidMinLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDomainLabels = 0
	_, err := WithConfig(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExtractFromLineMultipleKindsInOneLine(t *testing.T) {
	e := New()
	matches := e.ExtractFromLine([]byte("alert from 10.1.2.3 user bob@example.com host sub.example.org"))
	texts := textOf(matches)
	require.Contains(t, texts, "10.1.2.3")
	require.Contains(t, texts, "bob@example.com")
	require.Contains(t, texts, "sub.example.org")
}
