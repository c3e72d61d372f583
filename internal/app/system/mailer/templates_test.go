package mailer

import (
	"strings"
	"testing"
)

func TestJoinLink(t *testing.T) {
	got := JoinLink("https://app.example.com", "course", "64f000000000000000000001", "64f000000000000000000002")
	want := "https://app.example.com/join/course/64f000000000000000000001/64f000000000000000000002"
	if got != want {
		t.Errorf("JoinLink = %q, want %q", got, want)
	}
}

func TestBuildAddedEmail(t *testing.T) {
	msg := BuildAddedEmail(AddedEmailData{
		SiteName:   "TopEdu",
		EntityKind: "institution",
		EntityName: "Springfield High",
		Role:       "learner",
	})

	if !strings.Contains(msg.Subject, "Springfield High") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "institution") || !strings.Contains(msg.TextBody, "learner") {
		t.Errorf("text body missing fields: %q", msg.TextBody)
	}
	if !strings.Contains(msg.HTMLBody, "Springfield High") {
		t.Error("html body missing entity name")
	}
}

func TestBuildInvitationEmail(t *testing.T) {
	link := "https://app.example.com/join/course/a/b"
	msg := BuildInvitationEmail(InvitationEmailData{
		SiteName:   "TopEdu",
		EntityKind: "course",
		EntityName: "Algebra 101",
		Role:       "assistant",
		JoinLink:   link,
	})

	if !strings.Contains(msg.Subject, "Algebra 101") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, link) {
		t.Error("text body missing join link")
	}
	if !strings.Contains(msg.HTMLBody, link) {
		t.Error("html body missing join link")
	}
}

func TestBuildInvitationEmail_EscapesEntityName(t *testing.T) {
	msg := BuildInvitationEmail(InvitationEmailData{
		SiteName:   "TopEdu",
		EntityKind: "course",
		EntityName: "<script>alert('xss')</script>",
		Role:       "learner",
		JoinLink:   "https://app.example.com/join/course/a/b",
	})

	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Error("entity name was not escaped in HTML body")
	}
}
