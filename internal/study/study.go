// Package study defines the vocabulary shared by every part of Mirror
// Sensei: study categories, difficulty levels, display languages and the
// records the stores persist.
package study

import (
	"fmt"
	"regexp"
	"time"
)

// Category is a top-level study subject.
type Category string

const (
	CategoryPoem       Category = "Poem"
	CategoryDrama      Category = "Drama"
	CategoryLiterature Category = "Literature"
	CategoryExam       Category = "Exam"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPoem, CategoryDrama, CategoryLiterature, CategoryExam}

// ParseCategory returns the Category named s.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Level is a difficulty tier, applied orthogonally to Category.
type Level string

const (
	Level1 Level = "Level 1"
	Level2 Level = "Level 2"
	Level3 Level = "Level 3"
)

// Levels lists every level in display order.
var Levels = []Level{Level1, Level2, Level3}

// ParseLevel returns the Level named s.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Language is the language content is displayed in.
type Language string

const (
	English Language = "EN"
	Bengali Language = "BN"
)

// ParseLanguage returns the Language with code s.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case English, Bengali:
		return Language(s), nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// Other returns the language that is not l.
func (l Language) Other() Language {
	if l == English {
		return Bengali
	}
	return English
}

// DisplayName is the name used when instructing the model.
func (l Language) DisplayName() string {
	if l == English {
		return "English"
	}
	return "Bengali (Bangla)"
}

// AdminPrompt is an admin-authored instruction scoped to a category and a
// free-text sub-category.
type AdminPrompt struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	SubCategory string    `json:"subCategory"`
	Prompt      string    `json:"prompt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LevelPrompt is an admin-authored instruction for one difficulty level.
type LevelPrompt struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Prompt    string    `json:"prompt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryItem is one answered query. Items are immutable once stored.
type HistoryItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Category  Category  `json:"category"`
	Level     Level     `json:"level"`
}

var whitespace = regexp.MustCompile(`\s+`)

// CategoryPromptKey is the storage key of the prompt for (c, subCategory).
// Whitespace runs become a single underscore.
func CategoryPromptKey(c Category, subCategory string) string {
	return whitespace.ReplaceAllString(string(c)+"_"+subCategory, "_")
}

// LevelPromptKey is the storage key of the prompt for l.
func LevelPromptKey(l Level) string {
	return whitespace.ReplaceAllString(string(l), "_")
}
