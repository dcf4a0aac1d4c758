package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("folio:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}

func PostUUID(slug string) uuid.UUID {
	return UUID("folio:post:" + strings.ToLower(strings.TrimSpace(slug)))
}

func PageUUID(slug string) uuid.UUID {
	return UUID("folio:page:" + strings.ToLower(strings.TrimSpace(slug)))
}

func ProjectUUID(slug string) uuid.UUID {
	return UUID("folio:project:" + strings.ToLower(strings.TrimSpace(slug)))
}

func TagUUID(tag string) uuid.UUID {
	return UUID("folio:tag:" + strings.ToLower(strings.TrimSpace(tag)))
}

func TranslationUUID(locale, key string) uuid.UUID {
	return UUID("folio:translation:" + strings.ToLower(strings.TrimSpace(locale)) + ":" + strings.TrimSpace(key))
}

func DocumentUUID(slug, locale string) uuid.UUID {
	return UUID("folio:document:" + strings.ToLower(strings.TrimSpace(slug)) + ":" + strings.ToLower(strings.TrimSpace(locale)))
}
