package http

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v3"
)

// createListener builds the net.Listener up front so a bind failure
// surfaces before the serve goroutine starts.
func createListener(addr string, config fiber.ListenConfig) (net.Listener, error) {
	network := config.ListenerNetwork
	if network == "" {
		network = "tcp4"
	}

	if config.CertFile != "" && config.CertKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.CertKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		if config.TLSMinVersion > 0 {
			tlsConfig.MinVersion = config.TLSMinVersion
		}
		if config.CertClientFile != "" {
			tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		}

		return tls.Listen(network, addr, tlsConfig)
	}

	return net.Listen(network, addr)
}
