package notification

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/events"
)

type leaveView struct {
	OwnerName string
	Type      string
	FirstDay  string
	LastDay   string
	Days      int
	Status    string
	Reason    string
	StepNote  string
	Link      string
}

const leaveRequestedText = `{{.OwnerName}} requested {{.Type}} from {{.FirstDay}} to {{.LastDay}} ({{.Days}} day(s)).
{{if .StepNote}}{{.StepNote}}
{{end}}
Review it here: {{.Link}}
`

const leaveRequestedHTML = `<p><strong>{{.OwnerName}}</strong> requested <strong>{{.Type}}</strong> from {{.FirstDay}} to {{.LastDay}} ({{.Days}} day(s)).</p>
{{if .StepNote}}<p>{{.StepNote}}</p>{{end}}
<p><a href="{{.Link}}">Open the approval queue</a></p>
`

const leaveDecidedText = `Your {{.Type}} request from {{.FirstDay}} to {{.LastDay}} was {{.Status}}.
{{if .Reason}}Reason: {{.Reason}}
{{end}}
Details: {{.Link}}
`

const leaveDecidedHTML = `<p>Your <strong>{{.Type}}</strong> request from {{.FirstDay}} to {{.LastDay}} was <strong>{{.Status}}</strong>.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p><a href="{{.Link}}">View your requests</a></p>
`

var (
	requestedText = texttemplate.Must(texttemplate.New("requested").Parse(leaveRequestedText))
	requestedHTML = htmltemplate.Must(htmltemplate.New("requested").Parse(leaveRequestedHTML))
	decidedText   = texttemplate.Must(texttemplate.New("decided").Parse(leaveDecidedText))
	decidedHTML   = htmltemplate.Must(htmltemplate.New("decided").Parse(leaveDecidedHTML))
)

func newLeaveView(ev events.CalendarEvent, ownerName, link string) leaveView {
	v := leaveView{
		OwnerName: ownerName,
		Type:      ev.Type,
		FirstDay:  ev.StartDate,
		LastDay:   ev.EndDate,
		Status:    ev.Status,
		Reason:    ev.RejectionReason,
		Link:      link,
	}
	if v.OwnerName == "" {
		v.OwnerName = "A colleague"
	}
	start, errStart := domain.ParseDay(ev.StartDate)
	end, errEnd := domain.ParseDay(ev.EndDate)
	if errStart == nil && errEnd == nil {
		v.Days = domain.DaysBetween(start, end)
		v.LastDay = domain.FormatDay(end.AddDate(0, 0, -1))
	}
	return v
}

// LeaveRequestedMessage asks approvers to review a request. It is also used
// to hand a two-step request over to the second approver.
func LeaveRequestedMessage(ev events.CalendarEvent, ownerName string, to []string, baseURL string) (Message, error) {
	v := newLeaveView(ev, ownerName, strings.TrimRight(baseURL, "/")+"/leave/requests?status=pending")
	subject := "Leave request from " + v.OwnerName
	if ev.EventType == events.TypeLeaveStepApproved {
		v.StepNote = "The first approver has signed off. Your approval completes the request."
		subject = "Final approval needed: " + v.OwnerName
	}
	return render(to, subject, v, requestedText, requestedHTML)
}

// LeaveDecidedMessage tells the owner the final outcome.
func LeaveDecidedMessage(ev events.CalendarEvent, to []string, baseURL string) (Message, error) {
	v := newLeaveView(ev, "", strings.TrimRight(baseURL, "/")+"/leave/requests")
	subject := "Your leave request was " + ev.Status
	return render(to, subject, v, decidedText, decidedHTML)
}

func render(to []string, subject string, v leaveView, text *texttemplate.Template, html *htmltemplate.Template) (Message, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, v); err != nil {
		return Message{}, err
	}
	if err := html.Execute(&hb, v); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, TextBody: tb.String(), HTMLBody: hb.String()}, nil
}
