package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// ClientInfo identifies the browser behind a request for audit logs
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Proxies holds the CIDR ranges whose forwarding headers are honored
type Proxies struct {
	trusted []*net.IPNet
}

// NewProxies parses trusted proxy CIDRs, skipping entries that do not parse
func NewProxies(cidrs []string) *Proxies {
	p := &Proxies{}
	for _, cidr := range cidrs {
		if _, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr)); err == nil {
			p.trusted = append(p.trusted, ipNet)
		}
	}
	return p
}

// ExtractClient returns the client IP and user agent. Forwarding headers are
// read only when the peer is a trusted proxy.
func (p *Proxies) ExtractClient(r *http.Request) ClientInfo {
	return ClientInfo{IP: p.ClientIP(r), UserAgent: r.UserAgent()}
}

// ClientIP resolves the real client address
func (p *Proxies) ClientIP(r *http.Request) string {
	peer := remoteIP(r)

	if !p.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, hop := range strings.Split(xff, ",") {
			hop = strings.TrimSpace(hop)
			if net.ParseIP(hop) != nil {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	return peer
}

func (p *Proxies) isTrusted(ip string) bool {
	if p == nil || len(p.trusted) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipNet := range p.trusted {
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}

func remoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// MaxJSONBody bounds JSON request bodies
const MaxJSONBody = 1 << 20

// ErrEmptyBody is returned by DecodeJSON for a missing request body
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes a bounded JSON body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}
