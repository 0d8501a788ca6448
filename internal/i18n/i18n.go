// Package i18n localizes user-visible error messages. English and Indonesian ship embedded.
package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var (
	bundle   *goi18n.Bundle
	once     sync.Once
	fallback = language.Indonesian
)

// Init loads the embedded message files. Safe to call more than once.
func Init() {
	once.Do(func() {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
		for _, name := range []string{"locales/active.en.json", "locales/active.id.json"} {
			if _, err := bundle.LoadMessageFileFS(locales, name); err != nil {
				panic(err)
			}
		}
	})
}

// SetDefault sets the language used when the caller sends none.
func SetDefault(tag string) {
	if t, err := language.Parse(tag); err == nil {
		fallback = t
	}
}

// Translate renders messageID in the best match for the accept-language value lang.
// It returns "" when no message exists so callers can keep their own text.
func Translate(lang, messageID string, data map[string]interface{}) string {
	Init()
	langs := []string{lang, fallback.String()}
	loc := goi18n.NewLocalizer(bundle, langs...)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return ""
	}
	return msg
}
