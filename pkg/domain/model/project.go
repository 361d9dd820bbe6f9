package model

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Project represents a project row. Completed, ongoing, infrastructure and
// security files all share this shape; only the source column names differ.
type Project struct {
	Title    string `json:"title"`
	Update   string `json:"update,omitempty"`
	Progress string `json:"progress,omitempty"` // e.g. "75%"
	Status   string `json:"status,omitempty"`
	Group    string `json:"group,omitempty"` // owning team
	Tag      string `json:"tag,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Column aliases. Sheets exported with a trailing space in the title header
// are common, so both spellings are accepted.
var (
	colProjectTitle    = []string{"Başlık ", "Başlık", "title"}
	colProjectUpdate   = []string{"Güncellemesi", "update"}
	colProjectProgress = []string{"Progress", "İlerleme Durumu", "progress"}
	colProjectStatus   = []string{"Statu", "Statü", "status"}
	colProjectGroup    = []string{"Group", "group"}
	colProjectTag      = []string{"Tag", "tag"}
	colProjectLabel    = []string{"Label", "label"}
)

// HasTitle reports whether the row carries a non-blank title
func (p *Project) HasTitle() bool {
	return strings.TrimSpace(p.Title) != ""
}

// ProgressPercent parses the leading integer of Progress ("75%" -> 75).
// The second return value is false when no number is present.
func (p *Project) ProgressPercent() (int, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(p.Progress, "%", ""))

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && s[end] == '-')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DecodeProjects parses a project list file
func DecodeProjects(data []byte) ([]Project, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(records))
	for i, r := range records {
		p, err := decodeProject(r)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid project row", goerr.V("index", i))
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func decodeProject(r record) (*Project, error) {
	var (
		p   Project
		err error
	)

	fields := []struct {
		dst  *string
		keys []string
	}{
		{&p.Title, colProjectTitle},
		{&p.Update, colProjectUpdate},
		{&p.Progress, colProjectProgress},
		{&p.Status, colProjectStatus},
		{&p.Group, colProjectGroup},
		{&p.Tag, colProjectTag},
		{&p.Label, colProjectLabel},
	}
	for _, f := range fields {
		if *f.dst, err = r.str(f.keys...); err != nil {
			return nil, err
		}
	}

	return &p, nil
}
