// Package dnstxt looks up TXT records for sender domain verification.
package dnstxt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// TXTResolver queries a single DNS server for TXT records
type TXTResolver struct {
	server string
	client *dns.Client
}

// NewTXTResolver creates a resolver for server (host:port)
func NewTXTResolver(server string, timeout time.Duration) *TXTResolver {
	return &TXTResolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// LookupTXT returns the TXT strings published at name. A name with no
// records (NXDOMAIN or an empty answer) yields no records and no error.
// Multi-string TXT records are joined.
func (r *TXTResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("txt lookup for %s failed: %w", name, err)
	}
	if resp.Truncated {
		resp, err = r.retryTCP(ctx, msg)
		if err != nil {
			return nil, err
		}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("txt lookup for %s failed: %s", name, dns.RcodeToString[resp.Rcode])
	}

	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records, nil
}

func (r *TXTResolver) retryTCP(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
	tcp := &dns.Client{Net: "tcp", Timeout: r.client.Timeout}
	resp, _, err := tcp.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("txt lookup over tcp failed: %w", err)
	}
	return resp, nil
}
