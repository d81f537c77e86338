package entities

import (
	"go/token"

	"golang.org/x/text/language"
)

// CallSite is a lookup call found in Go source.
type CallSite struct {
	Pos      token.Position
	Func     string
	Key      string
	Args     int
	Variadic bool // the call ends in args...
}

type FindingKind string

const (
	FindingMissingKey       FindingKind = "missing_key"
	FindingArgCount         FindingKind = "arg_count"
	FindingOrphan           FindingKind = "orphan_translation"
	FindingTranslationArity FindingKind = "translation_arity"
)

// Finding is a problem reported by the message checker. Text is localized.
type Finding struct {
	Kind     FindingKind
	Pos      token.Position // zero for table findings
	Language language.Tag   // und for call-site findings
	Key      string
	Text     string
}

func (f Finding) IsTableFinding() bool {
	return !f.Pos.IsValid()
}

// Report is the outcome of a checker run.
type Report struct {
	Findings  []Finding
	CallSites int
	Languages int
	Summary   string
}

func (r *Report) OK() bool {
	return len(r.Findings) == 0
}
