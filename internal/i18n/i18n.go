// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n holds the English message catalog for pages and mails.
package i18n

import (
	"embed"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

var (
	mu        sync.RWMutex
	localizer *i18n.Localizer
)

// Init loads the embedded catalog. It is safe to call more than once.
func Init() error {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if _, err := bundle.LoadMessageFileFS(translationFS, "translations/active.en.toml"); err != nil {
		return err
	}

	mu.Lock()
	localizer = i18n.NewLocalizer(bundle, language.English.String())
	mu.Unlock()
	return nil
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func T(messageID string) string {
	return TData(messageID, nil)
}

// TData translates a message with template data.
func TData(messageID string, data map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		return messageID
	}

	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
