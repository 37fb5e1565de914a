package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/studorg/quorum/core"
	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
	emailsvc "github.com/studorg/quorum/services/email"
	"github.com/studorg/quorum/storage/database"
	inmemdb "github.com/studorg/quorum/storage/database/inmem"
	testutil "github.com/studorg/quorum/tests"
)

var (
	memberRepo   member.Repository
	electionRepo election.Repository
)

func TestMain(m *testing.M) {
	core.InitValidators(newTranslator())
	os.Exit(m.Run())
}

func setup(t *testing.T, now time.Time) (*commandLine, *bytes.Buffer) {
	t.Helper()

	conf := &core.Config{
		AppName:         "Quorum",
		TestMode:        true,
		WorkDir:         core.Getwd(),
		FrontendBaseURL: "http://localhost:3000",
	}
	db := inmemdb.Open()
	memberRepo = inmemdb.NewMemberRepository(db)
	electionRepo = inmemdb.NewElectionRepository(db)
	memberSvc := member.NewService(memberRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	electionSvc := election.NewService(electionRepo, memberSvc)

	out := new(bytes.Buffer)
	return &commandLine{
		memberSvc:   memberSvc,
		electionSvc: electionSvc,
		out:         out,
		nowFunc:     func() time.Time { return now },
	}, out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
				return
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("cli.run() output = %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t, date(2024, time.January, 1))

	var gotCommand string
	migrateRunFunc = func(command string, db *sql.DB, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "down", "status", "version", "reset":
			return nil
		default:
			return fmt.Errorf("%q: no such command", command)
		}
	}
	defer func() { migrateRunFunc = database.RunMigration }()

	runTests(t, cli, out, []cliTest{
		{name: "default is up", args: []string{"migrate"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
	if gotCommand != "status" {
		t.Errorf("migrate command = %q, want %q", gotCommand, "status")
	}

	if err := cli.run([]string{"admin", "migrate", "lol"}); err == nil {
		t.Error("cli.run() expected error for unknown migrate command")
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, out := setup(t, date(2024, time.January, 1))

	runTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_memberCommands(t *testing.T) {
	cli, out := setup(t, date(2024, time.January, 1))

	runTests(t, cli, out, []cliTest{
		{
			name:    "addmember",
			args:    []string{"addmember", "-username", "awe123", "-name", "Awe", "-email", "awe@test.cd"},
			wantOut: "member awe123 registered; can vote from 2024-05-01",
		},
		{
			name:    "duplicate username",
			args:    []string{"addmember", "-username", "awe123", "-name", "Other", "-email", "other@test.cd"},
			wantErr: member.ErrMemberExists,
		},
		{
			name:    "status while waiting",
			args:    []string{"status", "-username", "awe123"},
			wantOut: "awe123: regular",
		},
		{
			name:    "status of a stranger",
			args:    []string{"status", "-username", "nobody"},
			wantOut: "nobody: not_a_member",
		},
		{name: "status without username", args: []string{"status"}, wantErr: errHelp},
		{
			name:    "members",
			args:    []string{"members"},
			wantOut: "1 member(s)",
		},
		{
			name:    "removemember",
			args:    []string{"removemember", "-username", "awe123"},
			wantOut: "member awe123 removed",
		},
		{
			name:    "removemember unknown",
			args:    []string{"removemember", "-username", "nobody"},
			wantErr: member.ErrNotFound,
		},
	})
}

func Test_commandLine_renewMember(t *testing.T) {
	// renewal window is open: registered 2024-01-01, renewing 2025-02-01
	cli, out := setup(t, date(2025, time.February, 1))
	testutil.CreateMember(t, memberRepo, "awe123", "Awe", "awe@test.cd", date(2024, time.January, 1))

	runTests(t, cli, out, []cliTest{
		{name: "no username", args: []string{"renewmember"}, wantErr: errHelp},
		{
			name:    "unknown member",
			args:    []string{"renewmember", "-username", "nobody"},
			wantErr: member.ErrNotFound,
		},
		{
			name:    "timely renewal keeps voting rights",
			args:    []string{"renewmember", "-username", "awe123", "-courses", "CS102"},
			wantOut: "member awe123 renewed; can vote from 2025-02-01, renewal window ends 2026-08-01",
		},
	})
}

func Test_commandLine_warnings(t *testing.T) {
	cli, out := setup(t, date(2025, time.February, 1))
	testutil.CreateMember(t, memberRepo, "awe123", "Awe", "awe@test.cd", date(2024, time.January, 1))

	runTests(t, cli, out, []cliTest{
		{name: "no username", args: []string{"warnmember"}, wantErr: errHelp},
		{
			name:    "warnmember",
			args:    []string{"warnmember", "-username", "awe123"},
			wantOut: "member awe123 warned to renew",
		},
		{
			name:    "warnmember twice",
			args:    []string{"warnmember", "-username", "awe123"},
			wantErr: member.ErrAlreadyWarned,
		},
		{
			name:    "warned",
			args:    []string{"warned"},
			wantOut: "awe123",
		},
	})
}

func Test_commandLine_elections(t *testing.T) {
	cli, out := setup(t, date(2024, time.June, 3))

	runTests(t, cli, out, []cliTest{
		{name: "no flags", args: []string{"newelection"}, wantErr: errHelp},
	})

	// a ballot needs at least two options
	err := cli.run([]string{"admin", "newelection", "-name", "Board 2024",
		"-start", "2024-06-01", "-end", "2024-06-07", "-options", "Alice"})
	if err == nil {
		t.Error("cli.run() expected a validation error for a single option")
	}

	out.Reset()
	err = cli.run([]string{"admin", "newelection", "-name", "Board 2024",
		"-start", "2024-06-01", "-end", "2024-06-07", "-options", "Alice, Bob, Carol"})
	if err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !strings.Contains(out.String(), "Board 2024 (2024-06-01 to 2024-06-07)") {
		t.Errorf("cli.run() output = %q", out.String())
	}

	elections, err := electionRepo.ListElections(context.Background())
	if err != nil || len(elections) != 1 {
		t.Fatalf("ListElections() = %v, %v", elections, err)
	}

	out.Reset()
	if err = cli.run([]string{"admin", "results", "-election", elections[0].ID}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	for _, want := range []string{"Board 2024", "Alice", "Bob", "Carol", "0 vote(s)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("cli.run() output = %q, want it to contain %q", out.String(), want)
		}
	}

	if err = cli.run([]string{"admin", "results", "-election", "lol"}); err != election.ErrNotFound {
		t.Errorf("cli.run() error = %v, wantErr %v", err, election.ErrNotFound)
	}
}
