package kelime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CORPUS ROWS
// ═══════════════════════════════════════════════════════════════════════════════
// Both training corpora are tab-separated, one word per row:
//
//	# sent_id = 1               ← comment, also ends the previous sentence
//	1	Evlerden	ev	NOUN ...  ← ID FORM LEMMA UPOS ... (10 columns)
//	2-3	gelmişti	_	_ ...   ← multi-row token spanning rows 2..3
//	2	gelmiş	gel	VERB ...
//	3	ti	i	AUX ...
//	                            ← blank line ends the sentence
//
// PARSEME .cupt files add an 11th column with MWE membership ("1:VID;2:LVC",
// "*" or "_"). Empty-node ids such as "8.1" carry no surface and are skipped
// together with rows that are short of columns.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	conlluColumns = 10
	cuptColumns   = 11

	scannerBufferSize = 1 << 20
	ctxCheckInterval  = 1024
)

// ErrMultiRowRange is returned when a row inside a multi-row token carries
// an id outside the range the token declared.
var ErrMultiRowRange = errors.New("row id outside multi-row token range")

// conlluRow is one parsed word row.
type conlluRow struct {
	line  int // 1-based line number in the file
	start int
	end   int // equal to start for a single-id row
	form  string
	lemma string
	upos  string
	mwe   string // 11th column, empty for plain CoNLL-U
}

func (r conlluRow) isRange() bool {
	return r.end != r.start
}

// parseRow splits a row into columns. It reports false for rows that should
// be skipped: too few columns or an id that is not an integer or range.
func parseRow(text string, line, minColumns int) (conlluRow, bool) {
	columns := strings.Split(strings.TrimSpace(text), "\t")
	if len(columns) < minColumns {
		return conlluRow{}, false
	}
	start, end, ok := parseID(columns[0])
	if !ok {
		return conlluRow{}, false
	}
	row := conlluRow{
		line:  line,
		start: start,
		end:   end,
		form:  columns[1],
		lemma: columns[2],
		upos:  columns[3],
	}
	if len(columns) > cuptColumns-1 {
		row.mwe = columns[cuptColumns-1]
	}
	return row, true
}

func parseID(id string) (start, end int, ok bool) {
	first, last, isRange := strings.Cut(id, "-")
	start, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, false
	}
	if !isRange {
		return start, start, true
	}
	end, err = strconv.Atoi(last)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// isBoundary reports whether a raw line ends the current sentence.
func isBoundary(text string) bool {
	return strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#")
}

// readCorpus calls visit for every row of r, in file order. Sentence
// boundaries are reported with boundary set and a zero row; the end of the
// input is reported as a final boundary. Rows that parseRow rejects are
// dropped silently.
func readCorpus(ctx context.Context, r io.Reader, minColumns int, visit func(row conlluRow, boundary bool) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), scannerBufferSize)

	line := 0
	for scanner.Scan() {
		line++
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := scanner.Text()
		if isBoundary(text) {
			if err := visit(conlluRow{line: line}, true); err != nil {
				return err
			}
			continue
		}

		row, ok := parseRow(text, line, minColumns)
		if !ok {
			continue
		}
		if err := visit(row, false); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return visit(conlluRow{line: line + 1}, true)
}

// multiRow tracks an open multi-row token while its constituent rows are
// read.
type multiRow struct {
	open    bool
	start   int
	end     int
	surface string          // declared combined surface form
	lemma   string          // lemma of the first constituent
	built   strings.Builder // concatenated constituent surfaces
}

func (m *multiRow) begin(row conlluRow) {
	m.reset()
	m.open = true
	m.start = row.start
	m.end = row.end
	m.surface = row.form
}

func (m *multiRow) reset() {
	m.open = false
	m.start, m.end = 0, 0
	m.surface, m.lemma = "", ""
	m.built.Reset()
}

// check verifies that row belongs to the open range.
func (m *multiRow) check(path string, row conlluRow) error {
	if row.start < m.start || row.start > m.end {
		return fmt.Errorf("%s:%d: id %d not in %d-%d: %w", path, row.line, row.start, m.start, m.end, ErrMultiRowRange)
	}
	return nil
}

// ReadTokens returns the surface tokens of a CoNLL-U file in order. A
// multi-row token contributes its combined surface form once and its
// constituent rows are skipped.
func ReadTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		tokens []string
		group  multiRow
	)
	err = readCorpus(context.Background(), f, conlluColumns, func(row conlluRow, boundary bool) error {
		if boundary {
			return nil
		}
		if group.open {
			if err := group.check(path, row); err != nil {
				return err
			}
			if row.start == group.end {
				group.reset()
			}
			return nil
		}
		tokens = append(tokens, row.form)
		if row.isRange() {
			group.begin(row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
