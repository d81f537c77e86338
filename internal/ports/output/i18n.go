package output

import (
	"context"

	"golang.org/x/text/language"

	"macros/internal/domain/entities"
)

// Messages exposes the localized message contract.
// Implementations look up the template for key and substitute args into its
// numbered placeholders.
type Messages interface {
	// Message renders key with args. Failures yield visibly broken text,
	// never an empty string.
	Message(key string, args ...any) string
	// Lookup renders key with args and reports failures as errors.
	Lookup(key string, args ...any) (string, error)
}

// Catalog is a read-only view over the loaded resource table.
type Catalog interface {
	DefaultLanguage() language.Tag
	Languages() []language.Tag
	Keys(tag language.Tag) []string
	// Arity returns the number of arguments the template for key expects in
	// tag. ok is false when tag has no such key.
	Arity(tag language.Tag, key string) (n int, ok bool)
}

// CallSiteSource finds message lookups in source code.
type CallSiteSource interface {
	CallSites(ctx context.Context) ([]entities.CallSite, error)
}
