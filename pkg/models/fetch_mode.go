package models

import (
	"fmt"
	"strings"
)

// FetchMode selects how pages are downloaded.
type FetchMode int

const (
	HTTP FetchMode = iota
	Browser
)

func (m FetchMode) String() string {
	switch m {
	case HTTP:
		return "http"
	case Browser:
		return "browser"
	default:
		return "unknown"
	}
}

func ParseFetchMode(s string) (FetchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "http":
		return HTTP, nil
	case "browser", "chrome":
		return Browser, nil
	default:
		return HTTP, fmt.Errorf("unknown fetch mode %q", s)
	}
}

// Decode lets envconfig parse FETCH_MODE directly.
func (m *FetchMode) Decode(value string) error {
	mode, err := ParseFetchMode(value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
