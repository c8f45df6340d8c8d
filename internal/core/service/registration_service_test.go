package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

func newRegistrationSvc(users *stubUserRepo, regs *stubRegistrationRepo, gh *stubDirectory, mail *stubMailQueue) ports.RegistrationService {
	cfg := RegistrationConfig{AdminEmail: "admin@example.com", DashboardURL: "http://localhost:3000/admin"}
	if gh == nil {
		return NewRegistrationService(regs, users, nil, mail, cfg, zerolog.Nop())
	}
	return NewRegistrationService(regs, users, gh, mail, cfg, zerolog.Nop())
}

func validRegisterInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:              "Ada Lovelace",
		Email:             " Ada@Example.com ",
		University:        "UCL",
		PreferredUsername: "ada",
		GitHubID:          "ada-gh",
	}
}

func TestRegistrationService_Register_HappyPath(t *testing.T) {
	regs := newStubRegistrationRepo()
	mail := &stubMailQueue{}
	svc := newRegistrationSvc(&stubUserRepo{}, regs, nil, mail)

	reg, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if reg.Status != domain.RegistrationPending {
		t.Errorf("expected PENDING, got %s", reg.Status)
	}
	if reg.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %q", reg.Email)
	}
	if len(mail.sent) != 1 || mail.sent[0].To[0] != "admin@example.com" {
		t.Fatalf("expected admin notification, got %+v", mail.sent)
	}
	if mail.sent[0].Subject != "New User Registration Pending Approval" {
		t.Errorf("unexpected subject: %s", mail.sent[0].Subject)
	}
}

func TestRegistrationService_Register_Conflicts(t *testing.T) {
	users := (&stubUserRepo{}).seed(&domain.User{Email: "ada@example.com", Username: "someone"})
	svc := newRegistrationSvc(users, newStubRegistrationRepo(), nil, &stubMailQueue{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	in := validRegisterInput()
	in.Email = "other@example.com"
	in.PreferredUsername = "someone"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegistrationService_Review_ApproveCreatesMemberAndInvites(t *testing.T) {
	users := &stubUserRepo{}
	regs := newStubRegistrationRepo()
	gh := &stubDirectory{name: "github", addOK: true}
	mail := &stubMailQueue{}
	svc := newRegistrationSvc(users, regs, gh, mail)

	reg, _ := svc.Register(context.Background(), validRegisterInput())
	res, err := svc.Review(context.Background(), ports.ReviewInput{
		ID:         reg.ID,
		Status:     domain.RegistrationApproved,
		Comments:   "welcome",
		ReviewerID: "acc_1",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.User == nil || !res.User.IsActive || res.User.Role != domain.RoleMember {
		t.Fatalf("expected active member, got %+v", res.User)
	}
	if res.User.Username != "ada" || res.User.GitHubID != "ada-gh" {
		t.Errorf("user not copied from registration: %+v", res.User)
	}
	if !res.GitHubInvited || len(gh.added) != 1 || gh.added[0] != "ada-gh" {
		t.Errorf("expected github invite for ada-gh, got %v", gh.added)
	}
	if res.Registration.ReviewedBy != "acc_1" || res.Registration.ReviewedAt == nil {
		t.Errorf("review metadata missing: %+v", res.Registration)
	}

	subjects := mail.subjects()
	if len(subjects) != 2 || subjects[1] != "Your Registration Has Been Approved" {
		t.Errorf("unexpected emails: %v", subjects)
	}
}

func TestRegistrationService_Review_GitHubFailureKeepsApproval(t *testing.T) {
	regs := newStubRegistrationRepo()
	gh := &stubDirectory{name: "github", addOK: false}
	svc := newRegistrationSvc(&stubUserRepo{}, regs, gh, &stubMailQueue{})

	reg, _ := svc.Register(context.Background(), validRegisterInput())
	res, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationApproved})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.GitHubInvited {
		t.Errorf("expected invite to be reported as failed")
	}
	if res.Registration.Status != domain.RegistrationApproved {
		t.Errorf("approval must stand, got %s", res.Registration.Status)
	}
}

func TestRegistrationService_Review_UserCreateFailureReopens(t *testing.T) {
	users := &stubUserRepo{}
	regs := newStubRegistrationRepo()
	gh := &stubDirectory{name: "github", addOK: true}
	mail := &stubMailQueue{}
	svc := newRegistrationSvc(users, regs, gh, mail)

	reg, _ := svc.Register(context.Background(), validRegisterInput())

	users.createErr = domain.ErrUserExists
	_, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationApproved, ReviewerID: "acc_1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	stored := regs.regs[reg.ID]
	if stored.Status != domain.RegistrationPending || stored.ReviewedBy != "" || stored.ReviewedAt != nil {
		t.Fatalf("registration must be pending again, got %+v", stored)
	}
	if len(gh.added) != 0 {
		t.Errorf("no invite expected, got %v", gh.added)
	}
	if subjects := mail.subjects(); len(subjects) != 1 {
		t.Errorf("only the admin notification expected, got %v", subjects)
	}

	users.createErr = nil
	res, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationApproved})
	if err != nil {
		t.Fatalf("retry after fix failed: %v", err)
	}
	if res.User == nil || res.Registration.Status != domain.RegistrationApproved {
		t.Errorf("unexpected retry result: %+v", res)
	}
}

func TestRegistrationService_Review_NoGitHubIDSkipsInvite(t *testing.T) {
	regs := newStubRegistrationRepo()
	gh := &stubDirectory{name: "github", addOK: true}
	svc := newRegistrationSvc(&stubUserRepo{}, regs, gh, &stubMailQueue{})

	in := validRegisterInput()
	in.GitHubID = ""
	reg, _ := svc.Register(context.Background(), in)
	if _, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationApproved}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(gh.added) != 0 {
		t.Errorf("expected no github call, got %v", gh.added)
	}
}

func TestRegistrationService_Review_Reject(t *testing.T) {
	users := &stubUserRepo{}
	regs := newStubRegistrationRepo()
	mail := &stubMailQueue{}
	svc := newRegistrationSvc(users, regs, nil, mail)

	reg, _ := svc.Register(context.Background(), validRegisterInput())
	res, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationRejected, Comments: "incomplete"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.User != nil {
		t.Errorf("rejection must not create a user")
	}
	if len(users.users) != 0 {
		t.Errorf("expected no users, got %d", len(users.users))
	}
	last := mail.sent[len(mail.sent)-1]
	if last.Subject != "Your Registration Status" {
		t.Errorf("unexpected subject: %s", last.Subject)
	}
	if want := "Reason: incomplete"; !strings.Contains(last.Text, want) {
		t.Errorf("expected %q in body, got %q", want, last.Text)
	}
}

func TestRegistrationService_Review_Errors(t *testing.T) {
	regs := newStubRegistrationRepo()
	svc := newRegistrationSvc(&stubUserRepo{}, regs, nil, &stubMailQueue{})

	if _, err := svc.Review(context.Background(), ports.ReviewInput{ID: "nope", Status: domain.RegistrationApproved}); !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}
	if _, err := svc.Review(context.Background(), ports.ReviewInput{ID: "nope", Status: domain.RegistrationPending}); !errors.Is(err, domain.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}

	reg, _ := svc.Register(context.Background(), validRegisterInput())
	_, _ = svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationRejected})
	if _, err := svc.Review(context.Background(), ports.ReviewInput{ID: reg.ID, Status: domain.RegistrationApproved}); !errors.Is(err, domain.ErrRegistrationReviewed) {
		t.Fatalf("expected ErrRegistrationReviewed, got %v", err)
	}
}

func TestRegistrationService_List_RejectsUnknownStatus(t *testing.T) {
	svc := newRegistrationSvc(&stubUserRepo{}, newStubRegistrationRepo(), nil, &stubMailQueue{})

	if _, err := svc.List(context.Background(), "ARCHIVED"); !errors.Is(err, domain.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
	if _, err := svc.List(context.Background(), domain.RegistrationPending); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
