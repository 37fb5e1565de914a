package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sql.DB
	memberSvc   member.Service
	electionSvc election.Service
	out         io.Writer

	nowFunc func() time.Time // mockable
}

func (cli *commandLine) now() time.Time {
	if cli.nowFunc != nil {
		return cli.nowFunc()
	}
	return time.Now().UTC()
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|down|status [ARGS]                       - run database migrations")
	fmt.Fprintln(cli.out, "  addmember -username U -name N -email E [-courses C] - register a member")
	fmt.Fprintln(cli.out, "  renewmember -username U [-name N -email E -courses C] - renew a membership")
	fmt.Fprintln(cli.out, "  removemember -username U                            - retire a member (record is kept)")
	fmt.Fprintln(cli.out, "  status -username U                                  - print a member's current status")
	fmt.Fprintln(cli.out, "  members [-active]                                   - list members")
	fmt.Fprintln(cli.out, "  warnmember -username U                              - flag a member as warned to renew")
	fmt.Fprintln(cli.out, "  warned                                              - list members warned to renew")
	fmt.Fprintln(cli.out, "  newelection -name N -start YYYY-MM-DD -end YYYY-MM-DD -options A,B,... - create an election")
	fmt.Fprintln(cli.out, "  results -election ID                                - print an election's tally")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "addmember":
		return cli.addMember(args[2:])
	case "renewmember":
		return cli.renewMember(args[2:])
	case "removemember":
		return cli.removeMember(args[2:])
	case "status":
		return cli.memberStatus(args[2:])
	case "members":
		return cli.listMembers(args[2:])
	case "warnmember":
		return cli.warnMember(args[2:])
	case "warned":
		return cli.listWarned()
	case "newelection":
		return cli.newElection(args[2:])
	case "results":
		return cli.results(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func requireString(fs *flag.FlagSet, val *string) error {
	if *val == "" {
		fs.Usage()
		return errHelp
	}
	return nil
}
