// Package constants defines values shared by the tzapi server, client and CLI.
package constants

// API paths served by the POST endpoints. Every GET path is a current-time query.
const (
	ConvertPath  = "/api/v1/convert"
	DateDiffPath = "/api/v1/datediff"
)

// DefaultPort is where tzserver listens unless configured otherwise.
const DefaultPort = "8000"

// DefaultServerURL is the base URL the CLI talks to by default.
const DefaultServerURL = "http://localhost:" + DefaultPort

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 << 10
