// Package nextclade provides parsing of Nextclade results tables
// (CSV/TSV, optionally gzipped) into mutation records.
package nextclade

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/inodb/vibe-voc/internal/mutation"
)

// Standard Nextclade column names
const (
	ColSeqName         = "seqName"
	ColClade           = "clade"
	ColPangoLineage    = "Nextclade_pango"
	ColAASubstitutions = "aaSubstitutions"
)

// Alternative header names accepted for the same columns.
var columnAliases = map[string]string{
	"seq_name":          ColSeqName,
	"pango_lineage":     ColPangoLineage,
	"lineage":           ColPangoLineage,
	"aa_substitutions":  ColAASubstitutions,
	"raw_substitutions": ColAASubstitutions,
}

// ColumnIndices holds the indices of known Nextclade columns.
type ColumnIndices struct {
	SeqName         int
	Clade           int
	PangoLineage    int
	AASubstitutions int
}

// Parser reads records from a Nextclade results table.
type Parser struct {
	reader     *csv.Reader
	file       *os.File
	gzipReader *pgzip.Reader
	columns    ColumnIndices
	header     []string
	delimiter  rune
	lineNumber int
	logger     *zap.Logger
}

// Options configures a Parser.
type Options struct {
	// Delimiter overrides delimiter detection when non-zero.
	Delimiter rune
	Logger    *zap.Logger
}

// NewParser creates a parser for the given file. "-" reads stdin.
// Gzipped input is detected from its magic bytes.
func NewParser(path string, opts Options) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nextclade file: %w", err)
	}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("read nextclade header: %w", err)
	}

	var r io.Reader = br
	var gz *pgzip.Reader
	// gzip magic number (0x1f, 0x8b)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err = pgzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r = gz
	}

	p, err := NewParserFromReader(r, opts)
	if err != nil {
		if gz != nil {
			gz.Close()
		}
		file.Close()
		return nil, err
	}
	p.file = file
	p.gzipReader = gz
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader, opts Options) (*Parser, error) {
	p := &Parser{logger: opts.Logger}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}

	br := bufio.NewReader(r)
	headerLine, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(headerLine) == "" {
		return nil, &ParseError{Line: 1, Message: "no header line found"}
	}

	p.delimiter = opts.Delimiter
	if p.delimiter == 0 {
		p.delimiter = DetectDelimiter(headerLine)
	}

	p.reader = csv.NewReader(io.MultiReader(strings.NewReader(headerLine), br))
	p.reader.Comma = p.delimiter
	p.reader.FieldsPerRecord = -1
	p.reader.LazyQuotes = true

	header, err := p.reader.Read()
	if err != nil {
		return nil, p.wrapError(err)
	}
	p.lineNumber = 1
	if err := p.parseColumnIndices(header); err != nil {
		return nil, err
	}
	return p, nil
}

// DetectDelimiter picks the most frequent of ';', '\t' and ',' in a header
// line. Nextclade writes ';' by default, so it wins ties.
func DetectDelimiter(headerLine string) rune {
	best, bestCount := ';', strings.Count(headerLine, ";")
	for _, d := range []rune{'\t', ','} {
		if n := strings.Count(headerLine, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// parseColumnIndices maps header names to column indices.
func (p *Parser) parseColumnIndices(header []string) error {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	p.header = header

	p.columns = ColumnIndices{
		SeqName:         -1,
		Clade:           -1,
		PangoLineage:    -1,
		AASubstitutions: -1,
	}

	for i, col := range header {
		name := strings.TrimSpace(col)
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		switch name {
		case ColSeqName:
			if p.columns.SeqName < 0 {
				p.columns.SeqName = i
			}
		case ColClade:
			if p.columns.Clade < 0 {
				p.columns.Clade = i
			}
		case ColPangoLineage:
			if p.columns.PangoLineage < 0 {
				p.columns.PangoLineage = i
			}
		case ColAASubstitutions:
			if p.columns.AASubstitutions < 0 {
				p.columns.AASubstitutions = i
			}
		}
	}

	if p.columns.SeqName == -1 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("required column '%s' not found in header", ColSeqName),
		}
	}
	return nil
}

// Next reads the next record from the table.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*mutation.Record, error) {
	fields, err := p.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, p.wrapError(err)
	}
	p.lineNumber, _ = p.reader.FieldPos(0)

	if len(fields) != len(p.header) {
		p.logger.Debug("row width differs from header",
			zap.Int("line", p.lineNumber),
			zap.Int("fields", len(fields)),
			zap.Int("columns", len(p.header)))
	}

	r := &mutation.Record{
		SeqName:      field(fields, p.columns.SeqName),
		Clade:        field(fields, p.columns.Clade),
		PangoLineage: field(fields, p.columns.PangoLineage),
		Row:          fields,
	}
	r.RawSubstitutions = field(fields, p.columns.AASubstitutions)
	r.Mutations = mutation.ParseMutations(r.RawSubstitutions)
	return r, nil
}

// ReadAll reads every remaining record.
func (p *Parser) ReadAll() ([]*mutation.Record, error) {
	var records []*mutation.Record
	for {
		r, err := p.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			break
		}
		records = append(records, r)
	}
	if records == nil {
		records = []*mutation.Record{}
	}
	return records, nil
}

// HasSubstitutions reports whether the table has a substitution column.
// Without it every record is treated as carrying no mutations.
func (p *Parser) HasSubstitutions() bool {
	return p.columns.AASubstitutions >= 0
}

// Header returns the header column names.
func (p *Parser) Header() []string {
	return p.header
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// Delimiter returns the field delimiter in use.
func (p *Parser) Delimiter() rune {
	return p.delimiter
}

// LineNumber returns the line of the last record read.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

func (p *Parser) wrapError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Message: csvErr.Err.Error()}
	}
	return fmt.Errorf("read record: %w", err)
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// ParseError represents an error during parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nextclade parse error at line %d: %s", e.Line, e.Message)
}
