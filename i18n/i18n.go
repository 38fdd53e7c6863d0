// Package i18n resolves per-locale content fields and negotiates the viewer's locale.
package i18n

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

const (
	LocaleArabic  = "ar"
	LocaleEnglish = "en"
	LocaleTurkish = "tr"
)

// SupportedLocales lists the locales content is stored in, in column order.
var SupportedLocales = []string{LocaleArabic, LocaleEnglish, LocaleTurkish}

var (
	mutex       sync.RWMutex
	fallback    = LocaleArabic
	matcher     = language.NewMatcher([]language.Tag{language.Arabic, language.English, language.Turkish})
	rtlLocales  = map[string]bool{LocaleArabic: true}
	localeNames = map[string]string{
		LocaleArabic:  "العربية",
		LocaleEnglish: "English",
		LocaleTurkish: "Türkçe",
	}
)

// IsSupported reports whether content is stored for the locale
func IsSupported(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// SetFallback changes the deployment-wide fallback locale. It is meant to be called once at startup.
func SetFallback(locale string) error {
	if !IsSupported(locale) {
		return fmt.Errorf("unsupported fallback locale %q", locale)
	}
	mutex.Lock()
	defer mutex.Unlock()
	fallback = locale
	return nil
}

// Fallback returns the locale substituted when a translation is missing
func Fallback() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return fallback
}

// IsRTL reports whether the locale is written right-to-left
func IsRTL(locale string) bool {
	return rtlLocales[locale]
}

// DisplayName returns the native name of a supported locale
func DisplayName(locale string) string {
	return localeNames[locale]
}

// LocalizedText holds one logical text value in every stored locale.
type LocalizedText map[string]string

// Text builds a LocalizedText from the three stored columns.
func Text(ar, en, tr string) LocalizedText {
	return LocalizedText{
		LocaleArabic:  ar,
		LocaleEnglish: en,
		LocaleTurkish: tr,
	}
}

// Resolve returns the value for locale, the value for fallback when that is empty,
// and "" when both are empty.
func (t LocalizedText) Resolve(locale, fallback string) string {
	if v := t[locale]; v != "" {
		return v
	}
	return t[fallback]
}

// Multilingual is implemented by every entity with per-locale columns.
// The returned table is keyed by logical attribute name.
type Multilingual interface {
	LocalizedFields() map[string]LocalizedText
}

// UnknownAttributeError is returned when an attribute is not declared by the entity type.
type UnknownAttributeError struct {
	Entity    string
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("%s has no localized attribute %q", e.Entity, e.Attribute)
}

// Resolve selects the value of attribute for the viewer's locale.
// Unknown attributes fail; untranslated ones resolve to the fallback value or "".
func Resolve(entity Multilingual, attribute, locale, fallback string) (string, error) {
	text, ok := entity.LocalizedFields()[attribute]
	if !ok {
		return "", &UnknownAttributeError{
			Entity:    strings.TrimPrefix(fmt.Sprintf("%T", entity), "*"),
			Attribute: attribute,
		}
	}
	return text.Resolve(locale, fallback), nil
}

// Columns returns the stored column names of a logical attribute, e.g. title -> title_ar, title_en, title_tr.
func Columns(attribute string) []string {
	cols := make([]string, len(SupportedLocales))
	for i, l := range SupportedLocales {
		cols[i] = attribute + "_" + l
	}
	return cols
}

// Negotiate picks the best supported locale for an Accept-Language header value.
func Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Fallback()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Fallback()
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Fallback()
	}
	return SupportedLocales[idx]
}

// Keys for context storage
type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale stores the negotiated locale in a context.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, locale)
}

// GetLocale extracts the locale from the context, defaulting to the fallback locale.
func GetLocale(ctx context.Context) string {
	if val := ctx.Value(LocaleContextKey); val != nil {
		if str, ok := val.(string); ok && IsSupported(str) {
			return str
		}
	}
	return Fallback()
}
