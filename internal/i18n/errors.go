package i18n

import "errors"

// ErrTranslationNotFound indicates a key that resolved through the whole
// fallback chain without a hit.
var ErrTranslationNotFound = errors.New("i18n: translation not found")

// ErrLocaleNotFound indicates a catalogue that has never been loaded.
var ErrLocaleNotFound = errors.New("i18n: locale not found")

// ErrDefaultLocaleRequired indicates a service constructed without a default locale.
var ErrDefaultLocaleRequired = errors.New("i18n: default locale is required")

// NotFoundError carries the key and locale that failed to resolve.
type NotFoundError struct {
	Locale string
	Key    string
}

func (e *NotFoundError) Error() string {
	return "i18n: no translation for key " + e.Key + " in locale " + e.Locale
}

func (e *NotFoundError) Unwrap() error {
	return ErrTranslationNotFound
}
