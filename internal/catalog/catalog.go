// Package catalog — справочник категорий жалоб, подтипов и рекомендаций.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherSubIssue — подтип, для которого вместо фото и геолокации нужно описание
const OtherSubIssue = "Other"

type SubIssue struct {
	Name     string `yaml:"name"`
	Solution string `yaml:"solution"`
}

type Category struct {
	Key             string            `yaml:"key"`
	Name            map[string]string `yaml:"name"`
	MenuTitle       map[string]string `yaml:"menu_title"`
	MenuDescription string            `yaml:"menu_description"`
	SubIssues       []SubIssue        `yaml:"sub_issues"`
}

// DisplayName — название категории на языке lang (по умолчанию английское)
func (c Category) DisplayName(lang string) string {
	return localized(c.Name, lang, c.Key)
}

// Title — короткое название для строки меню
func (c Category) Title(lang string) string {
	return localized(c.MenuTitle, lang, c.DisplayName(lang))
}

func localized(m map[string]string, lang, fallback string) string {
	if v, ok := m[lang]; ok && v != "" {
		return v
	}
	if v, ok := m["en"]; ok && v != "" {
		return v
	}
	return fallback
}

// Catalog — неизменяемая таблица категорий
type Catalog struct {
	categories      []Category
	byKey           map[string]int
	defaultSolution string
}

type catalogFile struct {
	DefaultSolution string     `yaml:"default_solution"`
	Categories      []Category `yaml:"categories"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

// Load читает встроенный справочник
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse разбирает YAML и проверяет, что каждая категория заканчивается подтипом "Other"
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse complaint catalog: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("complaint catalog is empty")
	}

	c := &Catalog{
		categories:      file.Categories,
		byKey:           make(map[string]int, len(file.Categories)),
		defaultSolution: file.DefaultSolution,
	}
	for i, cat := range file.Categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("category #%d has no key", i+1)
		}
		if _, dup := c.byKey[cat.Key]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Key)
		}
		if len(cat.SubIssues) == 0 {
			return nil, fmt.Errorf("category %q has no sub-issues", cat.Key)
		}
		if last := cat.SubIssues[len(cat.SubIssues)-1]; !IsOther(last.Name) {
			return nil, fmt.Errorf("category %q must end with %q", cat.Key, OtherSubIssue)
		}
		c.byKey[cat.Key] = i
	}
	return c, nil
}

// Categories возвращает категории в порядке меню
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Len — число категорий (пунктов меню до "налога на недвижимость")
func (c *Catalog) Len() int {
	return len(c.categories)
}

// ByIndex возвращает категорию по номеру пункта меню, начиная с 1
func (c *Catalog) ByIndex(n int) (Category, bool) {
	if n < 1 || n > len(c.categories) {
		return Category{}, false
	}
	return c.categories[n-1], true
}

func (c *Catalog) Category(key string) (Category, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// SubIssues возвращает упорядоченные названия подтипов категории
func (c *Catalog) SubIssues(key string) []string {
	cat, ok := c.Category(key)
	if !ok {
		return nil
	}
	names := make([]string, len(cat.SubIssues))
	for i, s := range cat.SubIssues {
		names[i] = s.Name
	}
	return names
}

// SubIssueByIndex возвращает подтип по номеру в списке, начиная с 1
func (c *Catalog) SubIssueByIndex(key string, n int) (string, bool) {
	names := c.SubIssues(key)
	if n < 1 || n > len(names) {
		return "", false
	}
	return names[n-1], true
}

// Solution возвращает рекомендации для подтипа или общий текст
func (c *Catalog) Solution(key, subIssue string) string {
	cat, ok := c.Category(key)
	if ok {
		for _, s := range cat.SubIssues {
			if s.Name == subIssue && s.Solution != "" {
				return s.Solution
			}
		}
	}
	return c.defaultSolution
}

// IsOther сообщает, является ли подтип служебным "Other"
func IsOther(subIssue string) bool {
	return strings.EqualFold(strings.TrimSpace(subIssue), OtherSubIssue)
}
