package i18n

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// VerifyIssue reports a single catalogue gap.
type VerifyIssue struct {
	Locale string
	Key    string
	Reason string
}

// VerifyError aggregates catalogue gaps found during verification.
type VerifyError struct {
	Issues []VerifyIssue
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("i18n: %d translation issue(s)", len(e.Issues))
}

// Verify checks that every key in the default catalogue resolves to a
// non-empty value for every configured locale, and flags keys that exist only
// outside the default catalogue.
func (s *service) Verify(ctx context.Context) error {
	defaultLocale := s.DefaultLocale()
	defaultCatalog, ok := s.catalogs[defaultLocale]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocaleNotFound, defaultLocale)
	}

	keys := make([]string, 0, len(defaultCatalog))
	for key := range defaultCatalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	issues := []VerifyIssue{}
	for _, locale := range s.Locales() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, key := range keys {
			res := s.Lookup(locale, key)
			if res.Missing || strings.TrimSpace(res.Value) == "" {
				issues = append(issues, VerifyIssue{
					Locale: locale,
					Key:    key,
					Reason: "resolves to an empty value",
				})
			}
		}

		if locale == defaultLocale {
			continue
		}
		for _, key := range s.Keys(locale) {
			if _, ok := defaultCatalog[key]; !ok {
				issues = append(issues, VerifyIssue{
					Locale: locale,
					Key:    key,
					Reason: "missing from the default locale",
				})
			}
		}
	}

	if len(issues) > 0 {
		s.logger.Warn("i18n.verify.issues", "count", len(issues))
		return &VerifyError{Issues: issues}
	}
	return nil
}
