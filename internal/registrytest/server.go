// Package registrytest serves a fake Open Register platform for tests.
//
// Every host under openregister.org is answered by a single httptest server.
// The client returned by HTTPClient rewrites outgoing requests to that server
// while preserving the Host header, so the code under test keeps building
// production URLs.
package registrytest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"
)

// Domain is the base domain served by the fake platform.
const Domain = "openregister.org"

type registerDef struct {
	name   string
	fields []string
}

// Server is a fake Open Register platform.
type Server struct {
	srv *httptest.Server

	// tlsSrv serves hosts whose certificate clients must reject.
	tlsSrv       *httptest.Server
	tlsTransport *http.Transport

	mu          sync.Mutex
	routes      map[string]string // host+path -> JSON body
	hits        map[string]int    // host+path -> request count
	unreachable map[string]bool   // host
	untrusted   map[string]bool   // host
	registers   map[string][]registerDef
}

// NewServer starts a fake platform that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		routes:      make(map[string]string),
		hits:        make(map[string]int),
		unreachable: make(map[string]bool),
		untrusted:   make(map[string]bool),
		registers:   make(map[string][]registerDef),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	s.tlsSrv = httptest.NewTLSServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.tlsSrv.Close)
	s.tlsTransport = &http.Transport{}
	t.Cleanup(s.tlsTransport.CloseIdleConnections)
	return s
}

// Host returns the platform hostname for a register or meta type on a phase.
func Host(name, phase string) string {
	return name + "." + phase + "." + Domain
}

// Handle serves body for GET host+path, ignoring scheme and query.
func (s *Server) Handle(host, path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[host+path] = body
}

// AddRegister declares a register: its metadata, string-typed metadata for
// any field not already declared, and an entry in the phase's register index.
func (s *Server) AddRegister(phase, name string, fields ...string) {
	meta, _ := json.Marshal(map[string]any{
		"register": name,
		"phase":    phase,
		"fields":   fields,
	})
	s.Handle(Host("register", phase), "/record/"+name+".json", string(meta))

	for _, field := range fields {
		s.mu.Lock()
		_, exists := s.routes[Host("field", phase)+"/record/"+field+".json"]
		s.mu.Unlock()
		if !exists {
			s.AddField(phase, field, "string")
		}
	}

	s.mu.Lock()
	s.registers[phase] = append(s.registers[phase], registerDef{name: name, fields: fields})
	s.mu.Unlock()
}

// AddField declares (or replaces) a field's metadata.
func (s *Server) AddField(phase, name, datatype string) {
	meta, _ := json.Marshal(map[string]any{
		"field":       name,
		"phase":       phase,
		"datatype":    datatype,
		"cardinality": "1",
	})
	s.Handle(Host("field", phase), "/record/"+name+".json", string(meta))
}

// AddRecords serves a register's records.json.
func (s *Server) AddRecords(phase, name, body string) {
	s.Handle(Host(name, phase), "/records.json", body)
}

// Unreachable makes every connection to host fail as refused.
func (s *Server) Unreachable(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreachable[host] = true
}

// UntrustedTLS serves host over TLS with a certificate no client trusts, so
// requests to it fail certificate verification.
func (s *Server) UntrustedTLS(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.untrusted[host] = true
}

// Hits returns how many requests reached host+path.
func (s *Server) Hits(host, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[host+path]
}

// TotalHits returns the number of requests served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// HTTPClient returns a client that routes every request to the fake platform.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: &rewriteTransport{server: s}}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	key := host + r.URL.Path

	s.mu.Lock()
	s.hits[key]++
	body, ok := s.routes[key]
	if !ok && r.URL.Path == "/records.json" && strings.HasPrefix(host, "register.") {
		phase := strings.TrimSuffix(strings.TrimPrefix(host, "register."), "."+Domain)
		body, ok = s.indexLocked(phase)
	}
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// indexLocked renders the register index from AddRegister calls, in order.
func (s *Server) indexLocked(phase string) (string, bool) {
	defs := s.registers[phase]
	if len(defs) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("{")
	for i, def := range defs {
		if i > 0 {
			b.WriteString(",")
		}
		name, _ := json.Marshal(def.name)
		entry, _ := json.Marshal(map[string]any{
			"register": def.name,
			"phase":    phase,
			"fields":   def.fields,
		})
		b.Write(name)
		b.WriteString(":")
		b.Write(entry)
	}
	b.WriteString("}")
	return b.String(), true
}

type rewriteTransport struct {
	server *Server
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()

	t.server.mu.Lock()
	down := t.server.unreachable[host]
	untrusted := t.server.untrusted[host]
	t.server.mu.Unlock()
	if down {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	}
	if untrusted {
		out := req.Clone(req.Context())
		out.Host = host
		out.URL.Scheme = "https"
		out.URL.Host = strings.TrimPrefix(t.server.tlsSrv.URL, "https://")
		return t.server.tlsTransport.RoundTrip(out)
	}

	out := req.Clone(req.Context())
	out.Host = host
	out.URL.Scheme = "http"
	out.URL.Host = strings.TrimPrefix(t.server.srv.URL, "http://")
	return http.DefaultTransport.RoundTrip(out)
}
