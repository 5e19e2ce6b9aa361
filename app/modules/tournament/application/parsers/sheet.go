package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

// ScoreRow is one participant's score as read from the sheet. Line is 1-based.
type ScoreRow struct {
	Participant string
	Score       uint32
	Line        int
}

// ScoreSheet is a parsed score sheet.
type ScoreSheet struct {
	Rows []ScoreRow
}

var (
	participantHeaders = []string{"participant", "address", "player", "signer"}
	scoreHeaders       = []string{"score", "points", "total"}
)

func headerIndex(row []string, names []string) int {
	for i, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, n := range names {
			if cell == n {
				return i
			}
		}
	}
	return -1
}

// parseRows finds the header row and reads every following row. Blank rows are skipped and
// a participant listed twice is an error.
func parseRows(rows [][]string) (*ScoreSheet, error) {
	header, participantCol, scoreCol := -1, -1, -1
	for i, row := range rows {
		p, s := headerIndex(row, participantHeaders), headerIndex(row, scoreHeaders)
		if p >= 0 && s >= 0 {
			header, participantCol, scoreCol = i, p, s
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("no header row with participant and score columns")
	}

	sheet := &ScoreSheet{}
	seen := make(map[string]int)
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		participant := cell(row, participantCol)
		raw := cell(row, scoreCol)
		if participant == "" && raw == "" {
			continue
		}
		line := i + 1
		if participant == "" {
			return nil, fmt.Errorf("line %d: missing participant", line)
		}
		score, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid score %q", line, raw)
		}
		if prev, dup := seen[participant]; dup {
			return nil, fmt.Errorf("line %d: participant %s already listed on line %d", line, participant, prev)
		}
		seen[participant] = line
		sheet.Rows = append(sheet.Rows, ScoreRow{Participant: participant, Score: uint32(score), Line: line})
	}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("score sheet has no rows")
	}
	return sheet, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
