package command

import "fmt"

// Registry returns all adapter commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service: "problem",
			Action:  "list",
			Fields: []Field{
				{Name: "query", Aliases: []string{"q"}, Prompt: "filter letters", Type: FieldString, Required: false},
				{Name: "tag", Prompt: "topic tag", Type: FieldString, Required: false},
			},
		},
		{
			Service:         "problem",
			Action:          "show",
			RequiresSession: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"problem_id"}, Prompt: "problem id", Type: FieldInt, Required: true},
				{Name: "lang", Aliases: []string{"language"}, Prompt: "language", Type: FieldString, Required: false},
				{Name: "out", Aliases: []string{"outdir"}, Prompt: "output dir", Type: FieldString, Required: false},
				{Name: "code", Prompt: "code only (true/false)", Type: FieldString, Required: false},
			},
		},
		{
			Service:         "problem",
			Action:          "star",
			RequiresSession: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"problem_id"}, Prompt: "problem id", Type: FieldInt, Required: true},
			},
		},
		{
			Service:         "problem",
			Action:          "unstar",
			RequiresSession: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"problem_id"}, Prompt: "problem id", Type: FieldInt, Required: true},
			},
		},
		{
			Service:         "submit",
			Action:          "create",
			RequiresSession: true,
			Fields: []Field{
				{Name: "file", Aliases: []string{"source_file"}, Prompt: "solution file", Type: FieldFile, Required: true},
			},
		},
		{
			Service:         "submit",
			Action:          "test",
			RequiresSession: true,
			Fields: []Field{
				{Name: "file", Aliases: []string{"source_file"}, Prompt: "solution file", Type: FieldFile, Required: true},
				{Name: "cases", Prompt: "test cases", Type: FieldString, Required: false},
			},
		},
		{
			Service:         "session",
			Action:          "list",
			RequiresSession: true,
		},
		{
			Service:         "session",
			Action:          "create",
			RequiresSession: true,
			Fields: []Field{
				{Name: "name", Prompt: "session name", Type: FieldString, Required: true},
			},
		},
		{
			Service:         "session",
			Action:          "enable",
			RequiresSession: true,
			Fields: []Field{
				{Name: "id", Aliases: []string{"session_id"}, Prompt: "session id", Type: FieldString, Required: true},
			},
		},
		{
			Service: "user",
			Action:  "whoami",
		},
		{
			Service:     "user",
			Action:      "login",
			Interactive: true,
			Fields: []Field{
				{Name: "method", Prompt: "method (account/cookie/github/linkedin)", Type: FieldString, Required: false},
				{Name: "username", Prompt: "username", Type: FieldString, Required: true},
				{Name: "password", Prompt: "password or cookie", Type: FieldSecret, Required: true},
			},
		},
		{
			Service: "user",
			Action:  "logout",
		},
		{
			Service: "plugin",
			Action:  "endpoint",
			Fields: []Field{
				{Name: "name", Prompt: "endpoint (leetcode/leetcode-cn)", Type: FieldString, Required: true},
			},
		},
		{
			Service: "cli",
			Action:  "version",
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		key := fmt.Sprintf("%s %s", cmd.Service, cmd.Action)
		result[key] = cmd
	}
	return result
}
