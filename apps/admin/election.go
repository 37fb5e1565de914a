package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/studorg/quorum/core/election"
)

func (cli *commandLine) newElection(args []string) error {
	fs := flag.NewFlagSet("newelection", flag.ExitOnError)
	name := fs.String("name", "", "The election's name.")
	start := fs.String("start", "", "The first voting day (YYYY-MM-DD).")
	end := fs.String("end", "", "The last voting day (YYYY-MM-DD).")
	options := fs.String("options", "", "Comma-separated option names, in ballot order.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, val := range []*string{name, start, end, options} {
		if err := requireString(fs, val); err != nil {
			return err
		}
	}

	startDate, err := parseDate(*start)
	if err != nil {
		return err
	}
	endDate, err := parseDate(*end)
	if err != nil {
		return err
	}

	ne := election.NewElection{
		Name:      *name,
		StartDate: startDate,
		EndDate:   endDate,
	}
	for _, opt := range strings.Split(*options, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			ne.Options = append(ne.Options, opt)
		}
	}
	if err = ne.Validate(); err != nil {
		return err
	}

	e, err := cli.electionSvc.Create(context.Background(), ne)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "election %s created: %s (%s to %s)\n",
		e.ID, e.Name, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) results(args []string) error {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	electionID := fs.String("election", "", "The election's ID.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, electionID); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := cli.electionSvc.Get(ctx, *electionID)
	if err != nil {
		return err
	}
	tally, err := cli.electionSvc.Tally(ctx, *electionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s (%s to %s)\n",
		e.Name, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	for i, res := range tally {
		fmt.Fprintf(cli.out, "%d. %-20s %d vote(s)\n", i+1, res.Name, res.Votes)
	}
	return nil
}
