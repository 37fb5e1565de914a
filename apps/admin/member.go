package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/studorg/quorum/core/member"
)

func (cli *commandLine) addMember(args []string) error {
	fs := flag.NewFlagSet("addmember", flag.ExitOnError)
	username := fs.String("username", "", "The member's institutional username.")
	name := fs.String("name", "", "The member's full name.")
	email := fs.String("email", "", "The member's email address.")
	courses := fs.String("courses", "", "The member's enrolled courses.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nm := member.NewMember{
		Username: *username,
		Name:     *name,
		Email:    *email,
		Courses:  *courses,
	}
	if err := nm.Validate(); err != nil {
		return err
	}

	m, err := cli.memberSvc.Register(context.Background(), nm, cli.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "member %s registered; can vote from %s\n",
		m.Username, m.CanVoteDate.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) renewMember(args []string) error {
	fs := flag.NewFlagSet("renewmember", flag.ExitOnError)
	username := fs.String("username", "", "The member's institutional username.")
	name := fs.String("name", "", "The member's full name, if it changed.")
	email := fs.String("email", "", "The member's email address, if it changed.")
	courses := fs.String("courses", "", "The member's enrolled courses, if they changed.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, username); err != nil {
		return err
	}

	ctx := context.Background()
	m, err := cli.memberSvc.Get(ctx, *username)
	if err != nil {
		return err
	}

	// flags not provided keep the stored profile
	pu := member.ProfileUpdate{Name: m.Name, Email: m.Email, Courses: m.Courses}
	if *name != "" {
		pu.Name = *name
	}
	if *email != "" {
		pu.Email = *email
	}
	if *courses != "" {
		pu.Courses = *courses
	}
	if err = pu.Validate(); err != nil {
		return err
	}

	m, err = cli.memberSvc.Renew(ctx, *username, pu, cli.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "member %s renewed; can vote from %s, renewal window ends %s\n",
		m.Username, m.CanVoteDate.Format("2006-01-02"), m.RenewEndDate.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) removeMember(args []string) error {
	fs := flag.NewFlagSet("removemember", flag.ExitOnError)
	username := fs.String("username", "", "The member's institutional username.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, username); err != nil {
		return err
	}

	if err := cli.memberSvc.Remove(context.Background(), *username, cli.now()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "member %s removed\n", *username)
	return nil
}

func (cli *commandLine) memberStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	username := fs.String("username", "", "The member's institutional username.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, username); err != nil {
		return err
	}

	status, err := cli.memberSvc.GetStatus(context.Background(), *username, cli.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", *username, status)
	return nil
}

func (cli *commandLine) listMembers(args []string) error {
	fs := flag.NewFlagSet("members", flag.ExitOnError)
	active := fs.Bool("active", false, "Only list active members.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	now := cli.now()

	var members []member.Member
	var err error
	if *active {
		members, err = cli.memberSvc.QueryActive(ctx, now)
	} else {
		members, err = cli.memberSvc.QueryAll(ctx)
	}
	if err != nil {
		return err
	}
	cli.printMembers(members, now)
	return nil
}

func (cli *commandLine) warnMember(args []string) error {
	fs := flag.NewFlagSet("warnmember", flag.ExitOnError)
	username := fs.String("username", "", "The member's institutional username.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, username); err != nil {
		return err
	}

	if err := cli.memberSvc.MarkRenewalWarned(context.Background(), *username, cli.now()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "member %s warned to renew\n", *username)
	return nil
}

func (cli *commandLine) listWarned() error {
	now := cli.now()
	members, err := cli.memberSvc.ListRenewalWarned(context.Background(), now)
	if err != nil {
		return err
	}
	cli.printMembers(members, now)
	return nil
}

func (cli *commandLine) printMembers(members []member.Member, now time.Time) {
	for _, m := range members {
		fmt.Fprintf(cli.out, "%-10s  %-10s  %s  %s\n",
			m.Username, m.StatusAt(now), m.RenewEndDate.Format("2006-01-02"), m.Name)
	}
	fmt.Fprintf(cli.out, "%d member(s)\n", len(members))
}
