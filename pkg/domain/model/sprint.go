package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// OutOfSprintItem represents work added to a sprint after planning closed.
// The source column holds either a number or a free-text list; numbers land
// in Count and anything else in Note.
type OutOfSprintItem struct {
	Sprint     string `json:"sprint"`
	SprintDate string `json:"sprint_date,omitempty"`
	Team       string `json:"team"`
	Count      *int   `json:"count,omitempty"`
	Note       string `json:"note,omitempty"`
}

var (
	colSprint     = []string{"Sprint", "sprint"}
	colSprintDate = []string{"Sprint Tarihi /Sprinte Eklenme Tarihi", "sprint_date"}
	colSprintTeam = []string{"Takım", "team"}
	colSprintItem = []string{"Sprint Dışı Maddeler/Sprint Dışı Eklenen Madde sayısı", "count"}
	colSprintNote = []string{"note"}
)

// DecodeOutOfSprintItems parses an out-of-sprint file
func DecodeOutOfSprintItems(data []byte) ([]OutOfSprintItem, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	items := make([]OutOfSprintItem, 0, len(records))
	for i, r := range records {
		item, err := decodeOutOfSprintItem(r)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid out-of-sprint row", goerr.V("index", i))
		}
		items = append(items, *item)
	}
	return items, nil
}

func decodeOutOfSprintItem(r record) (*OutOfSprintItem, error) {
	var (
		item OutOfSprintItem
		err  error
	)

	if item.Sprint, err = r.str(colSprint...); err != nil {
		return nil, err
	}
	if item.SprintDate, err = r.str(colSprintDate...); err != nil {
		return nil, err
	}
	if item.Team, err = r.str(colSprintTeam...); err != nil {
		return nil, err
	}
	if item.Count, item.Note, err = r.countOrNote(colSprintItem...); err != nil {
		return nil, err
	}

	// Re-encoded records carry the note separately
	if item.Note == "" {
		if item.Note, err = r.str(colSprintNote...); err != nil {
			return nil, err
		}
	}

	if item.Count != nil && *item.Count < 0 {
		return nil, goerr.New("out-of-sprint count must not be negative",
			goerr.V("count", *item.Count),
			goerr.T(ErrTagMalformed))
	}

	return &item, nil
}
