package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
	"golang.org/x/mod/semver"
)

// HeaderName identifies calling agents on every MCP request.
const HeaderName = "Storefront-Agent"

// ServedMajor is the newest agent contract major this server speaks.
// Agents declaring a newer major are rejected.
const ServedMajor = "v1"

// Identity is a parsed Storefront-Agent header.
type Identity struct {
	Profile string
	Version string
}

// ParseHeader extracts the agent profile and version from a
// Storefront-Agent header. Format (RFC 8941 Dictionary):
//
//	profile="https://agent.example/profile";version="v1.2.0"
//
// The profile key is required; version is optional and defaults to the
// served major.
func ParseHeader(header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, errors.New("empty Storefront-Agent header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid Storefront-Agent header: %w", err)
	}

	member, ok := dict.Get("profile")
	if !ok {
		return Identity{}, errors.New("profile key not found in Storefront-Agent header")
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return Identity{}, errors.New("profile value must be an item")
	}
	profile, ok := item.Value.(string)
	if !ok {
		return Identity{}, errors.New("profile value must be a string")
	}

	id := Identity{Profile: profile, Version: ServedMajor}
	if raw, ok := item.Params.Get("version"); ok {
		version, ok := raw.(string)
		if !ok {
			return Identity{}, errors.New("version parameter must be a string")
		}
		id.Version = version
	}
	return id, nil
}

// CheckVersion rejects agents whose declared contract major is newer
// than what this server speaks. Older majors are accepted; the surface
// is additive within a major.
func CheckVersion(version string) error {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid agent version %q", version)
	}
	if semver.Compare(semver.Major(v), ServedMajor) > 0 {
		return fmt.Errorf("agent version %s is newer than served major %s", version, ServedMajor)
	}
	return nil
}
