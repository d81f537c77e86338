package application

import (
	"context"
	"fmt"

	"macros/internal/domain/entities"
	"macros/internal/ports/input"
	"macros/internal/ports/output"
)

var _ input.CheckUseCase = (*CheckService)(nil)

// CheckService validates the message table and the lookups made in source
// code against it. Findings are rendered through messages.
type CheckService struct {
	catalog  output.Catalog
	messages output.Messages
	source   output.CallSiteSource
}

func NewCheckService(
	catalog output.Catalog,
	messages output.Messages,
	source output.CallSiteSource,
) *CheckService {
	return &CheckService{
		catalog:  catalog,
		messages: messages,
		source:   source,
	}
}

// CheckTable reports translations without a default-language template and
// translations whose placeholder count differs from it.
func (s *CheckService) CheckTable(ctx context.Context) []entities.Finding {
	def := s.catalog.DefaultLanguage()
	var findings []entities.Finding
	for _, tag := range s.catalog.Languages() {
		if tag == def {
			continue
		}
		for _, key := range s.catalog.Keys(tag) {
			if ctx.Err() != nil {
				return findings
			}
			n, _ := s.catalog.Arity(tag, key)
			want, ok := s.catalog.Arity(def, key)
			switch {
			case !ok:
				findings = append(findings, entities.Finding{
					Kind:     entities.FindingOrphan,
					Language: tag,
					Key:      key,
					Text:     s.messages.Message("check.translation.orphan", tag.String(), key, def.String()),
				})
			case n != want:
				findings = append(findings, entities.Finding{
					Kind:     entities.FindingTranslationArity,
					Language: tag,
					Key:      key,
					Text:     s.messages.Message("check.translation.arity", tag.String(), key, n, def.String(), want),
				})
			}
		}
	}
	return findings
}

// CheckCallSites reports lookups of unknown keys and lookups whose argument
// count differs from the template. Calls spreading a slice are only checked
// for the key.
func (s *CheckService) CheckCallSites(ctx context.Context) ([]entities.Finding, int, error) {
	sites, err := s.source.CallSites(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("call sites: %w", err)
	}
	def := s.catalog.DefaultLanguage()
	var findings []entities.Finding
	for _, site := range sites {
		want, ok := s.catalog.Arity(def, site.Key)
		switch {
		case !ok:
			findings = append(findings, entities.Finding{
				Kind: entities.FindingMissingKey,
				Pos:  site.Pos,
				Key:  site.Key,
				Text: s.messages.Message("check.key.missing", site.Pos.String(), site.Key),
			})
		case !site.Variadic && site.Args != want:
			findings = append(findings, entities.Finding{
				Kind: entities.FindingArgCount,
				Pos:  site.Pos,
				Key:  site.Key,
				Text: s.messages.Message("check.arg.count", site.Pos.String(), site.Key, want, site.Args),
			})
		}
	}
	return findings, len(sites), nil
}

// Run checks the table, then the call sites, and summarizes.
func (s *CheckService) Run(ctx context.Context) (*entities.Report, error) {
	findings := s.CheckTable(ctx)
	siteFindings, sites, err := s.CheckCallSites(ctx)
	if err != nil {
		return nil, err
	}
	report := &entities.Report{
		Findings:  append(findings, siteFindings...),
		CallSites: sites,
		Languages: len(s.catalog.Languages()),
	}
	if report.OK() {
		report.Summary = s.messages.Message("check.summary.ok", report.CallSites, report.Languages)
	} else {
		report.Summary = s.messages.Message("check.summary.failed", len(report.Findings))
	}
	return report, nil
}
