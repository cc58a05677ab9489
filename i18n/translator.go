package i18n

import (
	"sync"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	exp, key := data["expected"], data["key"]
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			if exp == "" {
				return "どの型も受け付けません"
			}
			return "型が不正です (期待: " + exp + ")"
		case "invalid_literal":
			return "値が不正です (期待: " + exp + ")"
		case "missing_key":
			return "必須キーが不足しています: " + key
		case "unrecognized_key":
			return "未知のキーです: " + key
		case "invalid_union":
			return "どの候補にも一致しません"
		case "custom_error":
			return "検証に失敗しました"
		case "parse_error":
			return "解析エラー"
		case "duplicate_key":
			return "キーが重複しています"
		case "max_depth":
			return "ネストが深すぎます"
		case "truncated":
			return "打ち切られました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			if exp == "" {
				return "no value is accepted here"
			}
			return "expected " + exp
		case "invalid_literal":
			return "expected one of " + exp
		case "missing_key":
			return "missing key " + key
		case "unrecognized_key":
			return "unrecognized key " + key
		case "invalid_union":
			return "value matches none of the union branches"
		case "custom_error":
			return "validation failed"
		case "parse_error":
			return "parse error"
		case "duplicate_key":
			return "duplicate key"
		case "max_depth":
			return "max depth exceeded"
		case "truncated":
			return "truncated"
		}
	}
	return code
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator. lang is a BCP 47 tag or an
// Accept-Language style list; unsupported languages fall back to English.
func SetLanguage(lang string) {
	tr := dictTranslator{lang: Match(lang)}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Match returns the supported base language ("en" or "ja") closest to lang.
func Match(lang string) string {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
