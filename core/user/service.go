package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrOwnAccount      = errors.New("cannot perform this action on own account")
	ErrLastCoordinator = errors.New("cannot remove the last coordinator")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryAllUsers returns all users ordered by role then name.
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		CountUsersByRole(ctx context.Context, role Role) (int, error)
		DeleteUser(ctx context.Context, id int) error
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error
		QueryAll(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		ChangeRole(ctx context.Context, actorID, id int, role Role) (User, error)
		Delete(ctx context.Context, actorID, id int) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewConflictError(ErrEmailExists)
		}
		return err
	}
	return nil
}

func (svc *service) create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.create(ctx, nu)
	if err != nil {
		return User{}, err
	}
	go svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// ChangeRole sets a user's global role. A coordinator cannot change their own
// role; demoting the last remaining coordinator is rejected.
func (svc *service) ChangeRole(ctx context.Context, actorID, id int, role Role) (User, error) {
	if actorID == id {
		return User{}, ErrOwnAccount
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.IsCoordinator() && role != RoleCoordinator {
		count, err := svc.repo.CountUsersByRole(ctx, RoleCoordinator)
		if err != nil {
			return User{}, errors.Wrap(err, "counting coordinators")
		}
		if count <= 1 {
			return User{}, ErrLastCoordinator
		}
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Delete removes a user account. Self-deletion and deleting the last remaining
// coordinator are rejected.
func (svc *service) Delete(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return ErrOwnAccount
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if usr.IsCoordinator() {
		count, err := svc.repo.CountUsersByRole(ctx, RoleCoordinator)
		if err != nil {
			return errors.Wrap(err, "counting coordinators")
		}
		if count <= 1 {
			return ErrLastCoordinator
		}
	}
	return svc.repo.DeleteUser(ctx, id)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := DecodeUID(rp.UID)
	if err != nil {
		return errInvalidToken
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

func (svc *service) sendWelcomeMail(usr User) {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.FirstName + " " + usr.LastName, Address: usr.Email}},
		Subject: fmt.Sprintf("Welcome to %s!", core.Conf.AppName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account has been created. Log in at %s to get started.",
			usr.FirstName, core.Conf.AppName, core.Conf.FrontendBaseURL,
		),
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) sendPasswordResetMail(usr User) {
	link := fmt.Sprintf(
		"%s/password-reset?uid=%s&token=%s",
		core.Conf.FrontendBaseURL, EncodeUID(usr), makeToken(usr),
	)
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.FirstName + " " + usr.LastName, Address: usr.Email}},
		Subject: "Password reset",
		Body:    fmt.Sprintf("Hi %s,\n\nFollow this link to reset your password:\n%s", usr.FirstName, link),
	}
	svc.mailSvc.SendMessages(msg)
}
