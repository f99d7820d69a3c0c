package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"slackaudit/auditlogs"
)

// logsCommand holds the parsed flags of "slackaudit logs".
type logsCommand struct {
	set     map[string]bool
	latest  int64
	oldest  int64
	limit   int
	action  string
	actor   string
	entity  string
	params  keyValueFlag
	headers keyValueFlag
	archive bool
}

func parseLogsCommand(args []string, stderr io.Writer) (*logsCommand, error) {
	cmd := &logsCommand{set: map[string]bool{}}

	fs := flag.NewFlagSet("slackaudit logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int64Var(&cmd.latest, "latest", 0, "unix timestamp of the most recent event to include")
	fs.Int64Var(&cmd.oldest, "oldest", 0, "unix timestamp of the least recent event to include")
	fs.IntVar(&cmd.limit, "limit", 0, "number of results to return (max 9999)")
	fs.StringVar(&cmd.action, "action", "", "action name, e.g. user_login")
	fs.StringVar(&cmd.actor, "actor", "", "user ID who initiated the action")
	fs.StringVar(&cmd.entity, "entity", "", "ID of the target entity")
	fs.Var(&cmd.params, "param", "extra query parameter as key=value (repeatable, overrides named filters)")
	fs.Var(&cmd.headers, "header", "extra request header as key=value (repeatable)")
	fs.BoolVar(&cmd.archive, "archive", false, "store fetched entries in the configured archive")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return nil, fmt.Errorf("unexpected arguments")
	}
	fs.Visit(func(f *flag.Flag) {
		cmd.set[f.Name] = true
	})
	return cmd, nil
}

// filter returns only the filters given on the command line.
func (c *logsCommand) filter() auditlogs.LogsFilter {
	var f auditlogs.LogsFilter
	if c.set["latest"] {
		f.Latest = auditlogs.Ptr(c.latest)
	}
	if c.set["oldest"] {
		f.Oldest = auditlogs.Ptr(c.oldest)
	}
	if c.set["limit"] {
		f.Limit = auditlogs.Ptr(c.limit)
	}
	if c.set["action"] {
		f.Action = auditlogs.Ptr(c.action)
	}
	if c.set["actor"] {
		f.Actor = auditlogs.Ptr(c.actor)
	}
	if c.set["entity"] {
		f.Entity = auditlogs.Ptr(c.entity)
	}
	return f
}

func (c *logsCommand) callOptions() []auditlogs.CallOption {
	var opts []auditlogs.CallOption
	if len(c.params) > 0 {
		params := make(auditlogs.Params, len(c.params))
		for _, kv := range c.params {
			params[kv.key] = auditlogs.String(kv.value)
		}
		opts = append(opts, auditlogs.WithQueryParams(params))
	}
	if len(c.headers) > 0 {
		headers := make(map[string]string, len(c.headers))
		for _, kv := range c.headers {
			headers[kv.key] = kv.value
		}
		opts = append(opts, auditlogs.WithHeaders(headers))
	}
	return opts
}

type keyValue struct {
	key   string
	value string
}

// keyValueFlag collects repeated key=value flags in order.
type keyValueFlag []keyValue

func (f *keyValueFlag) String() string {
	parts := make([]string, len(*f))
	for i, kv := range *f {
		parts[i] = kv.key + "=" + kv.value
	}
	return strings.Join(parts, ",")
}

func (f *keyValueFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	*f = append(*f, keyValue{key: key, value: value})
	return nil
}
