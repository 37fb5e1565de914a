package member

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/studorg/quorum/core"
)

var (
	// errors
	ErrNotFound      = errors.New("member not found")
	ErrMemberExists  = errors.New("a member with this username already exists")
	ErrAlreadyWarned = errors.New("member has already been warned to renew")
)

type (
	Repository interface {
		// CreateMember inserts a new Member; it fails with ErrMemberExists
		// when the username primary key is already taken. The constraint is
		// the only guard against concurrent duplicate registrations.
		CreateMember(ctx context.Context, m Member) error
		UpdateMember(ctx context.Context, m Member) error
		GetMember(ctx context.Context, username string) (Member, error)
		QueryAllMembers(ctx context.Context) ([]Member, error)
		// QueryActiveMembers returns members registered after limit whose
		// grace period has not ended at now.
		QueryActiveMembers(ctx context.Context, now, limit time.Time) ([]Member, error)

		// AddRenewalNotification flags a member as warned; it fails with
		// ErrAlreadyWarned when a flag already exists for the username.
		AddRenewalNotification(ctx context.Context, username string) error
		// RemoveRenewalNotification is a no-op when no flag exists.
		RemoveRenewalNotification(ctx context.Context, username string) error
		ListRenewalNotifications(ctx context.Context) ([]Member, error)
		// PruneRenewalNotifications deletes every flag whose member's grace
		// period had already ended at now, regardless of username.
		PruneRenewalNotifications(ctx context.Context, now time.Time) error
	}

	Service interface {
		Register(ctx context.Context, nm NewMember, now time.Time) (Member, error)
		Renew(ctx context.Context, username string, pu ProfileUpdate, now time.Time) (Member, error)
		Remove(ctx context.Context, username string, now time.Time) error
		Get(ctx context.Context, username string) (Member, error)
		GetStatus(ctx context.Context, username string, now time.Time) (Status, error)
		QueryAll(ctx context.Context) ([]Member, error)
		QueryActive(ctx context.Context, now time.Time) ([]Member, error)
		UpdateEmail(ctx context.Context, username, email string) (Member, error)
		MarkRenewalWarned(ctx context.Context, username string, now time.Time) error
		ListRenewalWarned(ctx context.Context, now time.Time) ([]Member, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// milestones computes the dated lifecycle from a registration or renewal
// instant: the waiting period before voting, the valid period before the
// renewal window opens and the grace period before it closes.
func milestones(now time.Time) (canVote, renewStart, renewEnd time.Time) {
	return core.AddMonths(WaitingPeriod, now),
		core.AddMonths(ValidPeriod, now),
		core.AddMonths(ValidPeriod+GracePeriod, now)
}

func (svc *service) Register(ctx context.Context, nm NewMember, now time.Time) (Member, error) {
	now = now.UTC()
	canVote, renewStart, renewEnd := milestones(now)
	m := Member{
		Username:       nm.Username,
		Name:           nm.Name,
		Email:          nm.Email,
		Courses:        nm.Courses,
		RegisterDate:   now,
		CanVoteDate:    canVote,
		RenewStartDate: renewStart,
		RenewEndDate:   renewEnd,
	}
	if err := svc.repo.CreateMember(ctx, m); err != nil {
		return Member{}, err
	}
	// a warning flag cannot normally exist yet; clear any leftover anyway
	if err := svc.repo.RemoveRenewalNotification(ctx, m.Username); err != nil {
		return Member{}, err
	}
	svc.sendWelcomeMail(m)
	return m, nil
}

func (svc *service) Renew(ctx context.Context, username string, pu ProfileUpdate, now time.Time) (Member, error) {
	m, err := svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return Member{}, err
	}

	now = now.UTC()
	canVote := now
	if m.IsExpired(now) {
		// the grace period was missed: back to the waiting period
		canVote, _, _ = milestones(now)
	}
	_, renewStart, renewEnd := milestones(now)

	pu.apply(&m)
	m.RegisterDate = now
	m.CanVoteDate = canVote
	m.RenewStartDate = renewStart
	m.RenewEndDate = renewEnd

	if err = svc.repo.UpdateMember(ctx, m); err != nil {
		return Member{}, err
	}
	if err = svc.repo.RemoveRenewalNotification(ctx, m.Username); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Remove retires a member by closing the renewal window at now: the derived
// status is Expired from that instant on. The record is kept for audit.
func (svc *service) Remove(ctx context.Context, username string, now time.Time) error {
	m, err := svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return err
	}

	now = now.UTC()
	m.RenewStartDate = now
	m.RenewEndDate = now

	if err = svc.repo.UpdateMember(ctx, m); err != nil {
		return err
	}
	return svc.repo.RemoveRenewalNotification(ctx, m.Username)
}

func (svc *service) Get(ctx context.Context, username string) (Member, error) {
	return svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
}

func (svc *service) GetStatus(ctx context.Context, username string, now time.Time) (Status, error) {
	m, err := svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusNotAMember, nil
		}
		return "", err
	}
	return m.StatusAt(now), nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Member, error) {
	return svc.repo.QueryAllMembers(ctx)
}

func (svc *service) QueryActive(ctx context.Context, now time.Time) ([]Member, error) {
	limit := core.SubMonths(ValidPeriod+GracePeriod, now)
	return svc.repo.QueryActiveMembers(ctx, now, limit)
}

func (svc *service) UpdateEmail(ctx context.Context, username, email string) (Member, error) {
	m, err := svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return Member{}, err
	}
	email = core.CleanString(email, true /* lower */)
	if err = core.Validate.Var(email, "required,email"); err != nil {
		return Member{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: "invalid email"})
	}
	m.Email = email
	if err = svc.repo.UpdateMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (svc *service) MarkRenewalWarned(ctx context.Context, username string, now time.Time) error {
	m, err := svc.repo.GetMember(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return err
	}
	if err = svc.repo.AddRenewalNotification(ctx, m.Username); err != nil {
		return err
	}
	// flags of members that expired in the meantime are swept after every
	// write, replacing the DB trigger the old portal relied on
	if err = svc.repo.PruneRenewalNotifications(ctx, now.UTC()); err != nil {
		return err
	}
	svc.sendRenewalWarningMail(m)
	return nil
}

func (svc *service) ListRenewalWarned(ctx context.Context, now time.Time) ([]Member, error) {
	if err := svc.repo.PruneRenewalNotifications(ctx, now.UTC()); err != nil {
		return nil, err
	}
	return svc.repo.ListRenewalNotifications(ctx)
}

func (svc *service) sendWelcomeMail(m Member) {
	if m.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.Name, Address: m.Email}},
		Subject:      "Welcome aboard!",
		TemplateName: "member-welcome",
		TemplateData: struct {
			Name        string
			CanVoteDate time.Time
		}{m.Name, m.CanVoteDate},
	})
}

func (svc *service) sendRenewalWarningMail(m Member) {
	if m.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: m.Name, Address: m.Email}},
		Subject:      "Your membership is up for renewal",
		TemplateName: "renewal-warning",
		TemplateData: struct {
			Name         string
			RenewEndDate time.Time
		}{m.Name, m.RenewEndDate},
	})
}
