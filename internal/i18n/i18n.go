// Package i18n переводит ключи сообщений бота на язык пользователя.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lang — код поддерживаемого языка
type Lang string

const (
	English  Lang = "en"
	Hindi    Lang = "hi"
	Gujarati Lang = "gu"
)

// DefaultLang используется, пока пользователь не выбрал язык
const DefaultLang = English

// Languages — порядок совпадает с пунктами меню выбора языка
var Languages = []Lang{English, Hindi, Gujarati}

// ParseLang принимает код языка; неизвестный код заменяется на английский
func ParseLang(raw string) Lang {
	switch l := Lang(strings.ToLower(strings.TrimSpace(raw))); l {
	case English, Hindi, Gujarati:
		return l
	default:
		return DefaultLang
	}
}

// Params — значения подстановок {name} в шаблоне
type Params map[string]string

//go:embed messages.yaml
var defaultMessages []byte

// Bundle хранит шаблоны сообщений: ключ -> язык -> текст
type Bundle struct {
	messages map[string]map[Lang]string
}

type bundleFile struct {
	Messages map[string]map[Lang]string `yaml:"messages"`
}

// Load читает встроенный набор сообщений
func Load() (*Bundle, error) {
	return Parse(defaultMessages)
}

// MustLoad — Load для инициализации в main и тестах
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Parse разбирает YAML с сообщениями и проверяет наличие английского варианта
func Parse(data []byte) (*Bundle, error) {
	var file bundleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse message bundle: %w", err)
	}
	if len(file.Messages) == 0 {
		return nil, fmt.Errorf("message bundle is empty")
	}
	for key, variants := range file.Messages {
		if _, ok := variants[English]; !ok {
			return nil, fmt.Errorf("message %q has no %q variant", key, English)
		}
	}
	return &Bundle{messages: file.Messages}, nil
}

// Has сообщает, есть ли ключ в наборе
func (b *Bundle) Has(key string) bool {
	_, ok := b.messages[key]
	return ok
}

// Keys возвращает отсортированный список ключей
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.messages))
	for k := range b.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text возвращает сообщение на языке lang с подставленными параметрами.
// Отсутствующий перевод заменяется английским, отсутствующий ключ возвращается как есть.
func (b *Bundle) Text(key string, lang Lang, params Params) string {
	variants, ok := b.messages[key]
	if !ok {
		return key
	}
	tmpl, ok := variants[lang]
	if !ok {
		tmpl = variants[English]
	}
	return substitute(tmpl, params)
}

// substitute заменяет {name} за один проход, поэтому значения параметров не разворачиваются повторно
func substitute(tmpl string, params Params) string {
	if len(params) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	var out strings.Builder
	out.Grow(len(tmpl))
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			out.WriteString(rest)
			break
		}
		name := rest[open+1 : open+end]
		out.WriteString(rest[:open])
		if value, ok := params[name]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(rest[open : open+end+1])
		}
		rest = rest[open+end+1:]
	}
	return out.String()
}
