package services

import (
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
)

type MatcherView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Required bool   `json:"required"`
}

func newMatcherView(m importers.ColumnMatcher) MatcherView {
	return MatcherView{ID: m.ID(), Name: m.Name(), Category: m.Category().String(), Required: m.Required()}
}

type ColumnView struct {
	Index     int      `json:"index"`
	Header    string   `json:"header"`
	Examples  []string `json:"examples"`
	MatcherID string   `json:"matcher_id"`
}

// SessionView is an import session as shown to clients.
type SessionView struct {
	entities.ImportSession
	Columns []ColumnView `json:"columns,omitempty"`
	Reports []ReportView `json:"reports,omitempty"`
}

type ReportView struct {
	Row   int    `json:"row"`
	Line  int    `json:"line"` // spreadsheet line, the header is line 1
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// MemberStatus tells what a previewed row will do.
type MemberStatus string

const (
	MemberStatusNew      MemberStatus = "new"
	MemberStatusExisting MemberStatus = "existing"
	MemberStatusProbable MemberStatus = "probable"
)

type MemberPreview struct {
	Row          int          `json:"row"`
	Name         string       `json:"name"`
	Status       MemberStatus `json:"status"`
	ExistingID   string       `json:"existing_id,omitempty"`
	ExistingName string       `json:"existing_name,omitempty"`
	Group        string       `json:"group,omitempty"`
	AutoAssigned bool         `json:"auto_assigned,omitempty"`
	Changes      bool         `json:"changes"`
}

type PreviewView struct {
	Errors  []importers.ImportError `json:"errors"`
	Members []MemberPreview         `json:"members"`
}

// ProbableCount returns the number of rows awaiting a duplicate decision.
func (v *PreviewView) ProbableCount() int {
	count := 0
	for _, m := range v.Members {
		if m.Status == MemberStatusProbable {
			count++
		}
	}
	return count
}

type CommitResult struct {
	TaskID  string       `json:"task_id,omitempty"`
	Reports []ReportView `json:"reports,omitempty"`
}

func (s *ImportService) view(session *entities.ImportSession, ws *Workspace) *SessionView {
	view := &SessionView{ImportSession: *session}
	if ws == nil {
		return view
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, column := range ws.Columns {
		view.Columns = append(view.Columns, ColumnView{
			Index:     column.Index,
			Header:    column.Header,
			Examples:  column.Examples,
			MatcherID: column.MatcherID(),
		})
	}
	view.Reports = newReportViews(ws.Reports)
	return view
}

func newPreviewView(preview *importers.Preview) *PreviewView {
	view := &PreviewView{
		Errors:  preview.Errors,
		Members: make([]MemberPreview, 0, len(preview.Results)),
	}
	if view.Errors == nil {
		view.Errors = []importers.ImportError{}
	}

	for _, result := range preview.Results {
		details := result.PatchedDetails()
		member := MemberPreview{
			Row:     result.Row,
			Name:    details.Name(),
			Status:  MemberStatusNew,
			Changes: result.HasChanges(),
		}

		if result.Row < len(preview.Identities) {
			if identity := preview.Identities[result.Row]; identity != nil && identity.Existing() != nil {
				existing := identity.Existing()
				switch {
				case identity.NeedsConfirmation():
					member.Status = MemberStatusProbable
				case identity.IsEqual():
					member.Status = MemberStatusExisting
				}
				if member.Status != MemberStatusNew {
					member.ExistingID = existing.ID
					member.ExistingName = existing.Details.Name()
				}
			}
		}

		if group := result.Registration.ResolvedGroup(); group != nil {
			member.Group = group.Name
			member.AutoAssigned = result.Registration.Group == nil
		}
		view.Members = append(view.Members, member)
	}
	return view
}

func newReportViews(reports []importers.MemberImportReport) []ReportView {
	if len(reports) == 0 {
		return nil
	}
	views := make([]ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, ReportView{
			Row:   r.Row,
			Line:  r.Row + 2,
			Name:  r.Name,
			Error: r.Error,
		})
	}
	return views
}
