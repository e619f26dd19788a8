package leetcode

import (
	"regexp"
	"strconv"
	"strings"

	appErr "leetbridge/pkg/errors"
)

// Problem is one row of the CLI problem listing.
type Problem struct {
	ID         int
	Title      string
	Difficulty string
	AcceptRate float64
	Accepted   bool
	Attempted  bool
	Starred    bool
	Locked     bool
}

// Session is one row of the CLI session listing.
type Session struct {
	ID        string
	Name      string
	Active    bool
	Accepted  int
	Submitted int
}

// listLineRe matches listing rows such as
//
//	✔ [  1] Two Sum                 Easy   (46.71 %)
//	🔒 [761] Special Binary String   Hard   (52.80 %)
var listLineRe = regexp.MustCompile(`^([^\[]*)\[\s*(\d+)\s*\]\s+(.+?)\s+(Easy|Medium|Hard)\s+\(\s*([\d.]+)\s*%\)\s*$`)

// parseProblems extracts problem rows from `list` output. Lines that do
// not look like rows (headers, rulers) are skipped.
func parseProblems(output string) ([]Problem, error) {
	var problems []Problem
	for _, line := range strings.Split(output, "\n") {
		match := listLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		id, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		rate, _ := strconv.ParseFloat(match[5], 64)
		marks := match[1]
		problems = append(problems, Problem{
			ID:         id,
			Title:      strings.TrimSpace(match[3]),
			Difficulty: match[4],
			AcceptRate: rate,
			Accepted:   strings.Contains(marks, "✔"),
			Attempted:  strings.Contains(marks, "✘") || strings.Contains(marks, "✖"),
			Starred:    strings.Contains(marks, "★") || strings.Contains(marks, "*"),
			Locked:     strings.Contains(marks, "🔒"),
		})
	}
	if len(problems) == 0 {
		return nil, appErr.New(appErr.OutputParseFailed).
			WithMessage("no problem rows in listing output").
			WithDetail("output", head(output))
	}
	return problems, nil
}

// sessionLineRe matches session rows such as
//
//	4750   ✔        master        3          5
var sessionLineRe = regexp.MustCompile(`^\s*(\d+)\s+(✔\s+)?(\S.*?)\s+(\d+)\s+(\d+)\s*$`)

// parseSessions extracts session rows from `session` output.
func parseSessions(output string) ([]Session, error) {
	var sessions []Session
	for _, line := range strings.Split(output, "\n") {
		match := sessionLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		accepted, _ := strconv.Atoi(match[4])
		submitted, _ := strconv.Atoi(match[5])
		sessions = append(sessions, Session{
			ID:        match[1],
			Name:      match[3],
			Active:    strings.Contains(match[2], "✔"),
			Accepted:  accepted,
			Submitted: submitted,
		})
	}
	if len(sessions) == 0 {
		return nil, appErr.New(appErr.OutputParseFailed).
			WithMessage("no session rows in output").
			WithDetail("output", head(output))
	}
	return sessions, nil
}

var (
	signedInAsRe = regexp.MustCompile(`login(?:\s+in)?\s+as\s+(\S+)`)
	// sourcePathRe matches the generated file line of `show -g -o`.
	sourcePathRe = regexp.MustCompile(`(?m)^\s*\*?\s*Source Code:\s+(.+?)\s*$`)
)

// parseCurrentUser extracts the signed-in username from `user` output.
func parseCurrentUser(output string) (string, error) {
	if match := signedInAsRe.FindStringSubmatch(output); match != nil {
		return match[1], nil
	}
	if strings.Contains(output, "not login") || strings.Contains(output, "Login required") {
		return "", appErr.NotSignedInError()
	}
	return "", appErr.New(appErr.OutputParseFailed).
		WithMessage("cannot find username in output").
		WithDetail("output", head(output))
}

// parseSourcePath extracts the generated solution file path, if present.
func parseSourcePath(output string) string {
	if match := sourcePathRe.FindStringSubmatch(output); match != nil {
		return match[1]
	}
	return ""
}

const headLimit = 512

func head(s string) string {
	if len(s) <= headLimit {
		return s
	}
	return s[:headLimit] + "..."
}
