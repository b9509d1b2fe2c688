package api

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Server struct {
	API *API
}

func NewServer(api *API) *Server {
	return &Server{API: api}
}

// Start registers the gateway routes and serves until the listener
// fails. The write timeout must outlast a full transaction flow, which
// blocks on confirmation, so it is derived from tx_confirm_timeout
// rather than a fixed handler budget.
func (s *Server) Start() error {
	limiter := rate.NewLimiter(
		rate.Limit(viper.GetFloat64("rate_limit_rps")),
		viper.GetInt("rate_limit_burst"),
	)

	readChain := func(h http.HandlerFunc) http.HandlerFunc {
		return ApplyMiddleware(h,
			ErrorMiddleware,
			RequestIDMiddleware,
			LoggingMiddleware,
			s.API.CORSMiddleware,
			RateLimitMiddleware(limiter),
		)
	}
	writeChain := func(h http.HandlerFunc) http.HandlerFunc {
		return ApplyMiddleware(h,
			ErrorMiddleware,
			RequestIDMiddleware,
			LoggingMiddleware,
			s.API.CORSMiddleware,
			RateLimitMiddleware(limiter),
			s.API.JWTMiddleware,
			JSONContentTypeMiddleware,
		)
	}

	http.HandleFunc("/bounties", readChain(s.API.HandleBounties))
	http.HandleFunc("/bounty/", readChain(s.API.HandleBounty))
	http.HandleFunc("/stats", readChain(s.API.HandleStats))
	http.HandleFunc("/prices", readChain(s.API.HandlePrices))
	http.HandleFunc("/health", readChain(s.API.HandleHealth))

	// Route for exchanging the gateway API key for a JWT
	http.HandleFunc("/auth", readChain(s.API.HandleAuth))

	http.HandleFunc("/bounty/create", writeChain(s.API.HandleCreateBounty))
	http.HandleFunc("/bounty/claim", writeChain(s.API.HandleClaimBounty))

	confirmTimeout := viper.GetDuration("tx_confirm_timeout")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", viper.GetInt("api_port")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: confirmTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if viper.GetBool("use_https") {
		server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
			CipherSuites: []uint16{
				tls.TLS_AES_128_GCM_SHA256,
				tls.TLS_AES_256_GCM_SHA384,
				tls.TLS_CHACHA20_POLY1305_SHA256,
			},
		}

		log.Printf("Starting HTTPS server on %s", server.Addr)
		return server.ListenAndServeTLS(viper.GetString("cert_file"), viper.GetString("key_file"))
	}

	log.Printf("Starting HTTP server on %s", server.Addr)
	return server.ListenAndServe()
}
