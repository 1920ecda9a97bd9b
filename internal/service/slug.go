package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// Slugify lowercases the title and reduces it to hyphen-separated
// alphanumeric runs. It returns "" when nothing usable remains.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

type slugChecker func(ctx context.Context, slug string) (bool, error)

// uniqueSlug derives a slug from title and appends a random suffix until it
// no longer collides. Returns "" when the title yields no usable slug.
func uniqueSlug(ctx context.Context, title string, exists slugChecker) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", nil
	}
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := make([]byte, 3)
		if _, err := rand.Read(suffix); err != nil {
			return "", err
		}
		candidate = base + "-" + hex.EncodeToString(suffix)
	}
	return candidate, nil
}
