package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the proxy resolver for outbound HTTP clients
// (registry node probes, provider endpoints). With no configured proxy
// URLs it falls back to the standard environment variables. Hosts
// matching an entry in the comma-separated noProxy list connect
// directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostBypassed(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseNoProxy(noProxy string) []string {
	var entries []string
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.TrimPrefix(strings.TrimSpace(entry), ".")
		if entry != "" {
			entries = append(entries, strings.ToLower(entry))
		}
	}
	return entries
}

// hostBypassed matches a host against no-proxy entries by exact name
// or domain suffix.
func hostBypassed(host string, bypass []string) bool {
	host = strings.ToLower(host)
	for _, entry := range bypass {
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}
