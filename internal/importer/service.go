package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

// Report is the outcome of importing one file.
type Report struct {
	Profile  string
	Imported []*item.Item
	Rejected []Rejected
}

type Service struct {
	items  *item.Service
	parser *Parser
}

func NewService(items *item.Service, parser *Parser) *Service {
	if parser == nil {
		parser = NewParser()
	}

	return &Service{items: items, parser: parser}
}

// Import parses r and appends every readable row for username. Rows the
// store rejects are reported alongside the ones the parser rejected; only a
// file with no recognisable header fails outright.
func (s *Service) Import(ctx context.Context, r io.Reader, username string) (*Report, error) {
	res, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Profile:  res.Profile,
		Imported: make([]*item.Item, 0, len(res.Rows)),
		Rejected: res.Rejected,
	}

	for _, row := range res.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		params := row.Params
		params.Username = username

		saved, err := s.items.Append(ctx, params)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejected{Line: row.Line, Reason: err.Error()})
			continue
		}

		report.Imported = append(report.Imported, saved)
	}

	return report, nil
}
