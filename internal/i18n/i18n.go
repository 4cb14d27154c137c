// Package i18n resolves the visitor's locale and looks up UI strings.
package i18n

import (
	"embed"
	"encoding/json"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

type Locale string

const (
	English Locale = "en"
	Arabic  Locale = "ar"

	Default = English
)

// Supported lists the locales in display order.
var Supported = []Locale{English, Arabic}

func IsSupported(l string) bool {
	for _, s := range Supported {
		if string(s) == l {
			return true
		}
	}
	return false
}

// Dir is the text direction of the locale.
func (l Locale) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

func (l Locale) String() string { return string(l) }

// Resolve picks the locale for a request. A cookie, when present, wins even
// if its value is unsupported. Otherwise only the most preferred
// Accept-Language entry counts: its base language if supported, else Default.
func Resolve(cookie, acceptLanguage string) Locale {
	if cookie != "" {
		if IsSupported(cookie) {
			return Locale(cookie)
		}
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return Default
	}
	if len(tags) == 0 {
		return Default
	}
	base, _ := tags[0].Base()
	if IsSupported(base.String()) {
		return Locale(base.String())
	}
	return Default
}

//go:embed locales/*.json
var files embed.FS

// Bundle holds flattened messages per locale.
type Bundle struct {
	messages map[Locale]map[string]string
}

// Load reads the embedded message files.
func Load() (*Bundle, error) {
	b := &Bundle{messages: map[Locale]map[string]string{}}
	for _, l := range Supported {
		raw, err := files.ReadFile(path.Join("locales", string(l)+".json"))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s messages", l)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, errors.Wrapf(err, "parse %s messages", l)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		b.messages[l] = flat
	}
	return b, nil
}

// MustLoad is Load for package-level initialisation.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		}
	}
}

// T returns the message for key, falling back to the default locale and
// then to the key itself. Each "{name}" in the message is replaced by the
// matching arg pair.
func (b *Bundle) T(l Locale, key string, args ...string) string {
	msg, ok := b.messages[l][key]
	if !ok {
		msg, ok = b.messages[Default][key]
	}
	if !ok {
		return key
	}
	for i := 0; i+1 < len(args); i += 2 {
		msg = strings.ReplaceAll(msg, "{"+args[i]+"}", args[i+1])
	}
	return msg
}

// Has reports whether the locale defines key itself.
func (b *Bundle) Has(l Locale, key string) bool {
	_, ok := b.messages[l][key]
	return ok
}

// Translator binds the bundle to one locale for templates.
func (b *Bundle) Translator(l Locale) func(key string, args ...string) string {
	return func(key string, args ...string) string { return b.T(l, key, args...) }
}
