package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Info is what the auth service records about the client that logged in.
type Info struct {
	DisplayName string
	Fingerprint string
}

// FromUserAgent derives a stable fingerprint and a human-readable name from
// a User-Agent header. Unknown agents still produce a usable record.
func FromUserAgent(rawUA string) Info {
	ua := useragent.New(rawUA)

	browser, version := ua.Browser()
	os := ua.OS()

	major := version
	if idx := strings.Index(version, "."); idx > 0 {
		major = version[:idx]
	}

	name := "Unknown device"
	switch {
	case browser != "" && os != "":
		name = fmt.Sprintf("%s on %s", browser, os)
	case browser != "":
		name = browser
	case os != "":
		name = os
	}

	// Major version only, so routine browser updates keep the fingerprint.
	seed := fmt.Sprintf("%s|%s|%s|%s", browser, major, os, ua.Platform())
	sum := sha256.Sum256([]byte(seed))

	return Info{
		DisplayName: name,
		Fingerprint: hex.EncodeToString(sum[:]),
	}
}
