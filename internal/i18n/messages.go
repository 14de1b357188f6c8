// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package i18n

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

// MessageKey is the english translation text
type MessageKey string

// Expand for use in docs and logging - returns a translated message, translated the language of the context
func Expand(ctx context.Context, key MessageKey, inserts ...interface{}) string {
	return fmt.Sprintf(translate(ctx, key), inserts...)
}

// ExpandWithCode for use in error scenarios - returns a translated message with a "AL012345:" prefix, translated the language of the context
func ExpandWithCode(ctx context.Context, key MessageKey, inserts ...interface{}) string {
	return string(key) + ": " + Expand(ctx, key, inserts...)
}

// WithLang sets the language on the context
func WithLang(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, ctxLangKey{}, lang)
}

type (
	ctxLangKey struct{}
)

var serverLangs = []language.Tag{
	language.English, // Only English currently supported
}

var langMatcher = language.NewMatcher(serverLangs)

// Inserts are formatted with fmt, so ids, slots and error codes are never digit-grouped
var translations = map[language.Tag]map[MessageKey]string{
	language.English: {},
}

var statusHints = map[string]int{}
var msgIDUniq = map[string]bool{}

var defaultLang = language.English

// ffm registers an english translation, and an optional HTTP status hint for the API server
func ffm(key, enTranslation string, statusHint ...int) MessageKey {
	if _, exists := msgIDUniq[key]; exists {
		panic(fmt.Sprintf("Message ID %s re-used", key))
	}
	msgIDUniq[key] = true
	translations[language.English][MessageKey(key)] = enTranslation
	if len(statusHint) > 0 {
		statusHints[key] = statusHint[0]
	}
	return MessageKey(key)
}

// GetStatusHint returns the HTTP status code hint registered for an error code, if any
func GetStatusHint(code string) (int, bool) {
	i, ok := statusHints[code]
	return i, ok
}

// StatusHintOrDefault returns the status hint, falling back to a 500
func StatusHintOrDefault(code string) int {
	if i, ok := statusHints[code]; ok {
		return i
	}
	return http.StatusInternalServerError
}

// SetLang sets the default language for all contexts that do not carry one
func SetLang(lang string) {
	defaultLang = matchLang(language.Make(lang))
}

func matchLang(tag language.Tag) language.Tag {
	_, i, _ := langMatcher.Match(tag)
	return serverLangs[i]
}

func translate(ctx context.Context, key MessageKey) string {
	lang := defaultLang
	if tag, ok := ctx.Value(ctxLangKey{}).(language.Tag); ok {
		lang = matchLang(tag)
	}
	if s, ok := translations[lang][key]; ok {
		return s
	}
	return string(key)
}
