// Package gravatar builds avatar image URLs from email addresses.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const (
	httpBase  = "http://www.gravatar.com/avatar/"
	httpsBase = "https://secure.gravatar.com/avatar/"
)

type Options struct {
	Size         int
	Rating       string
	Default      string
	ForceDefault bool
	ForceLower   bool
	UseSSL       bool
	// BaseURL overrides the gravatar host, e.g. for a self-hosted mirror.
	BaseURL string
}

// Defaults are 100px, "g" rated, retro fallback over plain http.
func Defaults() Options {
	return Options{Size: 100, Rating: "g", Default: "retro"}
}

type Builder struct {
	opts Options
}

func New(opts Options) *Builder {
	return &Builder{opts: opts}
}

// URL returns the avatar URL for email. The email is hashed as given unless
// ForceLower is set.
func (b *Builder) URL(email string) string {
	if b.opts.ForceLower {
		email = strings.ToLower(email)
	}
	sum := md5.Sum([]byte(email))

	base := httpBase
	if b.opts.UseSSL {
		base = httpsBase
	}
	if b.opts.BaseURL != "" {
		base = strings.TrimRight(b.opts.BaseURL, "/") + "/avatar/"
	}

	// Parameters keep the order s, d, r, f.
	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}
	if b.opts.Size > 0 {
		add("s", strconv.Itoa(b.opts.Size))
	}
	if b.opts.Default != "" {
		add("d", b.opts.Default)
	}
	if b.opts.Rating != "" {
		add("r", b.opts.Rating)
	}
	if b.opts.ForceDefault {
		add("f", "y")
	}
	u := base + hex.EncodeToString(sum[:])
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}
