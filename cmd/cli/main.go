// Command cli is the back-office operations tool: bootstrap admin users and
// drive the account lifecycle without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/corebank/platform/infra"
	infrarepo "github.com/corebank/platform/infra/repository"
	"github.com/corebank/platform/pkg/config"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/user"
	"github.com/corebank/platform/pkg/repository"
	adminsvc "github.com/corebank/platform/pkg/service/admin"
	"github.com/corebank/platform/pkg/utils"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.Load(logger)
	if err != nil {
		fail("failed to load configuration: %v", err)
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		fail("failed to connect to database: %v", err)
	}
	if err := infra.Migrate(db); err != nil {
		fail("failed to migrate schema: %v", err)
	}

	uow := infrarepo.NewUoW(db, cfg.Ledger.LockTimeout)
	admin := adminsvc.New(uow, logger)
	ctx := context.Background()

	switch os.Args[1] {
	case "create-admin":
		createAdmin(ctx, uow)
	case "approve":
		lifecycle(ctx, uow, admin.ApproveAccount)
	case "freeze":
		lifecycle(ctx, uow, admin.FreezeAccount)
	case "unfreeze":
		lifecycle(ctx, uow, admin.UnfreezeAccount)
	case "close":
		lifecycle(ctx, uow, admin.CloseAccount)
	case "pending":
		pending(ctx, admin)
	case "dashboard":
		dashboard(ctx, admin)
	default:
		color.Red("Unknown command: %s", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  create-admin <username> <email>")
	fmt.Println("  approve|freeze|unfreeze|close <account_number> <admin_username> [reason]")
	fmt.Println("  pending")
	fmt.Println("  dashboard")
}

func fail(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}

func createAdmin(ctx context.Context, uow repository.UnitOfWork) {
	if len(os.Args) < 4 {
		fail("Usage: cli create-admin <username> <email>")
	}
	username, email := os.Args[2], os.Args[3]
	if !utils.IsEmail(email) {
		fail("invalid email address: %s", email)
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("could not read password: %v", err)
	}
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("could not read password: %v", err)
	}
	if string(password) != string(confirm) {
		fail("passwords do not match")
	}
	if len(password) < utils.MinPasswordLength {
		fail("password must be at least %d characters", utils.MinPasswordLength)
	}

	hashed, err := utils.HashPassword(string(password))
	if err != nil {
		fail("could not hash password: %v", err)
	}
	err = uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := user.New(username, email, hashed)
		if err != nil {
			return err
		}
		u.IsAdmin = true
		return users.Create(ctx, u)
	})
	if err != nil {
		fail("could not create admin: %v", err)
	}
	color.Green("Admin user %s created", username)
}

func lifecycle(
	ctx context.Context,
	uow repository.UnitOfWork,
	op func(ctx context.Context, adminID uuid.UUID, accountNumber, reason string) (*account.Account, error),
) {
	if len(os.Args) < 4 {
		fail("Usage: cli %s <account_number> <admin_username> [reason]", os.Args[1])
	}
	number, adminUsername := os.Args[2], os.Args[3]
	reason := "changed via ops cli"
	if len(os.Args) > 4 {
		reason = strings.Join(os.Args[4:], " ")
	}

	var adminUser *user.User
	err := uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		adminUser, err = users.GetByUsername(ctx, adminUsername)
		return err
	})
	if err != nil {
		fail("could not look up admin %s: %v", adminUsername, err)
	}
	if !adminUser.IsAdmin {
		fail("%s is not an admin user", adminUsername)
	}

	acct, err := op(ctx, adminUser.ID, number, reason)
	if err != nil {
		fail("%s failed: %v", os.Args[1], err)
	}
	color.Green("Account %s is now %s", acct.Number, acct.Status)
}

func pending(ctx context.Context, admin *adminsvc.Service) {
	accts, err := admin.PendingAccounts(ctx, 0)
	if err != nil {
		fail("could not load pending accounts: %v", err)
	}
	if len(accts) == 0 {
		color.Green("No accounts pending approval")
		return
	}
	for _, a := range accts {
		fmt.Printf("%s  %-8s  opened %s\n",
			a.Number, a.Type, a.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func dashboard(ctx context.Context, admin *adminsvc.Service) {
	d, err := admin.GetDashboard(ctx)
	if err != nil {
		fail("could not load dashboard: %v", err)
	}
	bold := color.New(color.Bold)
	bold.Println("Platform dashboard")
	fmt.Printf("  users:            %d\n", d.TotalUsers)
	for status, n := range d.AccountsByStatus {
		fmt.Printf("  accounts %-8s %d\n", status+":", n)
	}
	fmt.Printf("  total balance:    $%s\n", d.TotalBalance.StringFixed(2))
	fmt.Printf("  today:            %d transactions, $%s\n",
		d.TransactionsToday, d.VolumeToday.StringFixed(2))
	fmt.Printf("  last 7 days:      %d transactions, $%s\n",
		d.TransactionsWeek, d.VolumeWeek.StringFixed(2))
}
