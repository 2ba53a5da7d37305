package provider

import (
	"testing"

	"github.com/dnsscience/dnsriskscan/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DetectsEachCanonicalHeader(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name   string
		header []string
		wantID string
	}{
		{"cloudflare", []string{"Name", "Type", "Content", "TTL", "Proxied", "Created", "Modified"}, "cloudflare"},
		{"route53", []string{"Name", "Type", "Value", "TTL", "RoutingPolicy"}, "route53"},
		{"google-dns", []string{"dns_name", "record_type", "ttl", "rrdatas"}, "google-dns"},
		{"azure-dns", []string{"Name", "Type", "TTL", "Value"}, "azure-dns"},
		{"onamae", []string{"ホスト名", "TYPE", "VALUE", "優先度", "TTL"}, "onamae"},
		{"namecheap", []string{"Host", "Type", "Value", "TTL", "Priority"}, "namecheap"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter, ambiguous := r.Detect(tc.header)
			assert.False(t, ambiguous, "expected a confident detection")
			assert.Equal(t, tc.wantID, adapter.ID())
		})
	}
}

func TestRegistry_AmbiguousHeaderFallsBackToGeneric(t *testing.T) {
	r := NewRegistry()

	adapter, ambiguous := r.Detect([]string{"col1", "col2", "col3"})
	assert.True(t, ambiguous)
	assert.Equal(t, "generic", adapter.ID())
}

func TestCloudflare_DecodeRow(t *testing.T) {
	header := []string{"Name", "Type", "Content", "TTL", "Proxied", "Created", "Modified"}
	c := Cloudflare{}

	result := c.Decode(header, []string{"old-api.example.com", "A", "192.0.2.1", "300", "false", "", ""}, "")
	require.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, "old-api.example.com", result.Record.Name)
	assert.Equal(t, record.TypeA, result.Record.Type)
	assert.NotNil(t, result.Record.Proxied)
	assert.False(t, *result.Record.Proxied)
}

func TestRoute53_StripsTrailingDot(t *testing.T) {
	header := []string{"Name", "Type", "Value", "TTL", "RoutingPolicy"}
	r := Route53{}

	result := r.Decode(header, []string{"example.com.", "A", "192.0.2.1", "300", "Simple"}, "")
	require.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, "example.com", result.Record.Name)
}

func TestAzureDNS_ApexWithZoneContext(t *testing.T) {
	header := []string{"Name", "Type", "TTL", "Value"}
	a := AzureDNS{}

	result := a.Decode(header, []string{"@", "A", "3600", "192.0.2.1"}, "example.net")
	require.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, "example.net", result.Record.Name)
}

func TestAzureDNS_ApexWithoutZoneContextStaysLiteral(t *testing.T) {
	header := []string{"Name", "Type", "TTL", "Value"}
	a := AzureDNS{}

	result := a.Decode(header, []string{"@", "A", "3600", "192.0.2.1"}, "")
	require.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, "@", result.Record.Name)
}

func TestDecode_UnsupportedTypeIsSkipped(t *testing.T) {
	header := []string{"Name", "Type", "Content", "TTL"}
	c := Cloudflare{}

	result := c.Decode(header, []string{"weird.example.com", "SOA", "v", "300"}, "")
	assert.Equal(t, OutcomeSkip, result.Outcome)
	assert.NotEmpty(t, result.Reason)
}

func TestOnamae_DecodesLocaleHeaders(t *testing.T) {
	header := []string{"ホスト名", "TYPE", "VALUE", "優先度", "TTL"}
	o := Onamae{}

	result := o.Decode(header, []string{"mail.example.jp", "MX", "mx.example.jp", "10", "3600"}, "")
	require.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, "mail.example.jp", result.Record.Name)
	assert.Equal(t, "10 mx.example.jp", result.Record.Content)
}

func TestParseTTLDefaultsWhenBlank(t *testing.T) {
	assert.Equal(t, uint32(record.DefaultTTL), parseTTL(""))
	assert.Equal(t, uint32(3600), parseTTL("3600"))
	assert.Equal(t, uint32(record.DefaultTTL), parseTTL("not-a-number"))
}
