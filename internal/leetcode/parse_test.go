package leetcode

import (
	"testing"

	appErr "leetbridge/pkg/errors"
)

const sampleListing = `
        [queue]

      ✔ [   1] Two Sum                                           Easy   (46.71 %)
        [   2] Add Two Numbers                                   Medium (34.12 %)
     ✘  [   4] Median of Two Sorted Arrays                       Hard   (29.62 %)
   ★    [ 146] LRU Cache                                         Medium (35.01 %)
   🔒   [ 761] Special Binary String                             Hard   (52.80 %)
`

func TestParseProblems(t *testing.T) {
	problems, err := parseProblems(sampleListing)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(problems) != 5 {
		t.Fatalf("parsed %d problems, want 5", len(problems))
	}

	first := problems[0]
	if first.ID != 1 || first.Title != "Two Sum" || first.Difficulty != "Easy" {
		t.Fatalf("first = %+v", first)
	}
	if !first.Accepted {
		t.Fatal("first should be accepted")
	}
	if first.AcceptRate != 46.71 {
		t.Fatalf("rate = %v", first.AcceptRate)
	}

	if !problems[2].Attempted || problems[2].Accepted {
		t.Fatalf("median should be attempted only: %+v", problems[2])
	}
	if !problems[3].Starred {
		t.Fatalf("lru cache should be starred: %+v", problems[3])
	}
	if !problems[4].Locked {
		t.Fatalf("special binary string should be locked: %+v", problems[4])
	}
}

func TestParseProblemsTitleWithBrackets(t *testing.T) {
	problems, err := parseProblems(`  [ 12] Integer to Roman (classic)   Medium (51.00 %)`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if problems[0].Title != "Integer to Roman (classic)" {
		t.Fatalf("title = %q", problems[0].Title)
	}
}

func TestParseProblemsEmpty(t *testing.T) {
	if _, err := parseProblems("no rows here"); !appErr.Is(err, appErr.OutputParseFailed) {
		t.Fatalf("expected OutputParseFailed, got %v", err)
	}
}

const sampleSessions = `
      id                  name       ac      submit
  ----------------------------------------------------
    4750   ✔             master        3          5
    4751                 practice      0          0
`

func TestParseSessions(t *testing.T) {
	sessions, err := parseSessions(sampleSessions)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("parsed %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "4750" || sessions[0].Name != "master" || !sessions[0].Active {
		t.Fatalf("first = %+v", sessions[0])
	}
	if sessions[0].Accepted != 3 || sessions[0].Submitted != 5 {
		t.Fatalf("counts = %+v", sessions[0])
	}
	if sessions[1].Active {
		t.Fatalf("second should be inactive: %+v", sessions[1])
	}
}

func TestParseSessionsMultiWordName(t *testing.T) {
	sessions, err := parseSessions("    4752   ✔          daily drills      2          4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sessions[0].Name != "daily drills" {
		t.Fatalf("name = %q, want %q", sessions[0].Name, "daily drills")
	}
	if sessions[0].Accepted != 2 || sessions[0].Submitted != 4 {
		t.Fatalf("counts = %+v", sessions[0])
	}
}

func TestParseCurrentUser(t *testing.T) {
	user, err := parseCurrentUser(" ✔ You are now login as grace")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if user != "grace" {
		t.Fatalf("user = %q", user)
	}
}

func TestParseCurrentUserNotSignedIn(t *testing.T) {
	if _, err := parseCurrentUser("You are not login yet"); !appErr.Is(err, appErr.NotSignedIn) {
		t.Fatalf("expected NotSignedIn, got %v", err)
	}
	if _, err := parseCurrentUser("Login required!"); !appErr.Is(err, appErr.NotSignedIn) {
		t.Fatalf("expected NotSignedIn, got %v", err)
	}
}

func TestParseSourcePath(t *testing.T) {
	output := `
[1] Two Sum

* Source Code:       /home/dev/workspace/1.two-sum.go
`
	if got := parseSourcePath(output); got != "/home/dev/workspace/1.two-sum.go" {
		t.Fatalf("path = %q", got)
	}
	if got := parseSourcePath("nothing generated"); got != "" {
		t.Fatalf("path = %q, want empty", got)
	}
}

func TestProblemString(t *testing.T) {
	p := Problem{ID: 1, Title: "Two Sum", Difficulty: "Easy", AcceptRate: 46.71, Accepted: true}
	s := p.String()
	if s == "" || s[:len("✔")] != "✔" {
		t.Fatalf("rendered = %q", s)
	}
}
