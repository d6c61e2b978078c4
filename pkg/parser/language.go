package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source dialect for parsing.
type Language int

const (
	// LanguagePHP represents PHP (.php, .phtml files)
	LanguagePHP Language = iota
	// LanguageJavaScript represents JavaScript (.js files, including requirejs-config.js)
	LanguageJavaScript
	// LanguageXML represents XML configuration and layout files, parsed with the HTML grammar
	LanguageXML
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguagePHP:
		return "php"
	case LanguageJavaScript:
		return "javascript"
	case LanguageXML:
		return "xml"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the dialect from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".php", ".phtml":
		return LanguagePHP
	case ".js":
		return LanguageJavaScript
	case ".xml":
		return LanguageXML
	default:
		return LanguageUnknown
	}
}

// ParseLanguageString converts a language string to a Language type.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "php":
		return LanguagePHP
	case "javascript", "js":
		return LanguageJavaScript
	case "xml":
		return LanguageXML
	default:
		return LanguageUnknown
	}
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{LanguagePHP, LanguageJavaScript, LanguageXML}
}
