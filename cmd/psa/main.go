// Command psa is a terminal Steam Guard authenticator: it shows login
// codes, lists and resolves trade and market confirmations, and
// manages the authenticator itself (enroll, backup codes, revoke).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/PMArkive/PySteamAuth/account"
	"github.com/PMArkive/PySteamAuth/autoconfirm"
	"github.com/PMArkive/PySteamAuth/confirmation"
	"github.com/PMArkive/PySteamAuth/guard"
	"github.com/PMArkive/PySteamAuth/lifecycle"
	"github.com/PMArkive/PySteamAuth/mafile"
	"github.com/PMArkive/PySteamAuth/session"
	"github.com/PMArkive/PySteamAuth/ui"
)

func main() {
	dir := flag.String("mafiles", defaultDir(), "directory holding manifest.json and the maFiles")
	interval := flag.Duration("check-interval", 0, "auto-accept poll interval (0 = manifest setting)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	a := &app{
		logger:   logger,
		prompter: ui.NewTerminal(),
		sessions: session.NewManager(),
		aligner:  guard.NewTimeAligner(),
		service:  lifecycle.NewService(),
	}
	if err := a.run(*dir, *interval); err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return
		}
		logger.Fatal("unrecoverable error", zap.Error(err))
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "maFiles"
	}
	return filepath.Join(home, ".psa", "maFiles")
}

type app struct {
	logger   *zap.Logger
	prompter *ui.Terminal
	sessions *session.Manager
	aligner  *guard.TimeAligner
	service  *lifecycle.Service

	store    *mafile.Store
	manifest *mafile.Manifest
	handler  *account.Handler

	bundle    *mafile.SecretBundle
	confirmer *confirmation.Client
	scheduler *autoconfirm.Scheduler
	lastFetch []*confirmation.Confirmation
}

func (a *app) run(dir string, interval time.Duration) error {
	a.store = mafile.NewStore(dir)
	a.handler = account.NewHandler(a.store, a.sessions, a.prompter, a.aligner)
	a.handler.SetLogger(a.logger)

	if err := a.aligner.Align(); err != nil {
		a.logger.Warn("steam time alignment failed, using local clock", zap.Error(err))
	}

	manifest, err := a.store.LoadManifest()
	switch {
	case errors.Is(err, mafile.ErrNoManifest):
		manifest = mafile.NewManifest()
		if err := a.store.SaveManifest(manifest); err != nil {
			return err
		}
	case err != nil:
		return err
	case manifest.Encrypted:
		pass, err := a.prompter.Passphrase("maFiles passphrase: ")
		if err != nil {
			return err
		}
		a.store.SetPassphrase([]byte(pass))
	}
	a.manifest = manifest

	bundle, err := a.store.LoadSelected()
	if errors.Is(err, mafile.ErrAccountNotFound) {
		a.prompter.Notify("No authenticator set up yet.", ui.Info)
		bundle, err = a.enroll()
	}
	if err != nil {
		return err
	}
	a.bundle = bundle

	if err := a.handler.EnsureSession(a.bundle); err != nil {
		return err
	}

	a.confirmer = confirmation.NewClient(a.bundle.Session, a.bundle.IdentitySecret, a.bundle.DeviceID, a.aligner)
	a.confirmer.SetLogger(a.logger)
	// The refresher also runs on scheduler ticks, so it must never
	// prompt; an expired session stays stale until the user's next
	// interactive command repairs it.
	a.confirmer.SetRefresher(func() error { return a.handler.RefreshQuiet(a.bundle) })

	if interval <= 0 {
		interval = time.Duration(a.manifest.PeriodicCheckingInterval) * time.Second
	}
	a.scheduler = autoconfirm.NewScheduler(a.confirmer, interval)
	a.scheduler.SetLogger(a.logger)
	a.scheduler.SetFlags(autoconfirm.Flags{
		Trades: a.manifest.AutoConfirmTrades,
		Market: a.manifest.AutoConfirmMarket,
	})
	if a.scheduler.Flags() != (autoconfirm.Flags{}) {
		a.scheduler.Start(context.Background())
	}
	defer a.scheduler.Stop()

	return a.repl()
}

func (a *app) repl() error {
	a.prompter.Notify(fmt.Sprintf("Logged in as %s. Type help for commands.", a.bundle.AccountName), ui.Info)
	for {
		line, err := a.prompter.ReadLine("psa> ")
		if err != nil {
			return nil
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
		case "help":
			a.help()
		case "code":
			a.showCode()
		case "watch":
			a.watch()
		case "confs":
			a.interactive(a.listConfirmations)
		case "accept":
			a.interactive(func() { a.resolve(arg, confirmation.Allow) })
		case "deny":
			a.interactive(func() { a.resolve(arg, confirmation.Deny) })
		case "auto":
			a.toggleAuto(arg)
		case "backup":
			a.interactive(func() { a.backup(arg) })
		case "revoke":
			var done bool
			a.interactive(func() {
				var err error
				done, err = a.revoke()
				if err != nil {
					a.prompter.Notify(err.Error(), ui.Error)
				}
			})
			if done {
				return nil
			}
		case "dump":
			spew.Fdump(os.Stdout, a.lastFetch)
		case "quit", "exit":
			return nil
		default:
			a.prompter.Notify("Unknown command. Type help for commands.", ui.Warning)
		}
	}
}

func (a *app) help() {
	fmt.Print(`commands:
  code              show the current login code
  watch             stream login codes (enter to stop)
  confs             list pending confirmations
  accept <n>|all    accept confirmation n from the last listing, or everything
  deny <n>          deny confirmation n from the last listing
  auto trades|market on|off
                    toggle periodic auto-accept for a category
  backup new|destroy
                    create or invalidate emergency backup codes
  revoke            remove the authenticator from the account
  dump              debug-print the last fetched confirmations
  quit              exit
`)
}

func (a *app) showCode() {
	t := a.aligner.Time()
	code, err := guard.Code(a.bundle.SharedSecret, t)
	if err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	fmt.Printf("%s  (%ds left)\n", code, guard.SecondsRemaining(t))
}

// watch prints a fresh code at every period boundary until the user
// presses enter.
func (a *app) watch() {
	stop := make(chan struct{})
	go func() {
		for {
			a.showCode()
			wait := time.Duration(guard.SecondsRemaining(a.aligner.Time())) * time.Second
			select {
			case <-stop:
				return
			case <-time.After(wait):
			}
		}
	}()
	_, _ = a.prompter.ReadLine("")
	close(stop)
}

// interactive pauses background auto-accept around a command, so a
// re-login prompt never races a tick for the terminal or the session.
func (a *app) interactive(fn func()) {
	running := a.scheduler.Running()
	if running {
		a.scheduler.Stop()
	}
	fn()
	if running {
		a.scheduler.Start(context.Background())
	}
}

func (a *app) listConfirmations() {
	if err := a.handler.EnsureSession(a.bundle); err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	confs, err := a.confirmer.Fetch()
	if err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	a.lastFetch = confs
	if len(confs) == 0 {
		fmt.Println("Nothing to confirm.")
		return
	}
	for i, conf := range confs {
		fmt.Printf("[%d] %s: %s (%s)\n", i+1, conf.Title, conf.Summary, conf.Time)
	}
}

func (a *app) resolve(arg string, decision confirmation.Decision) {
	if err := a.handler.EnsureSession(a.bundle); err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	if arg == "all" && decision == confirmation.Allow {
		ok, err := a.confirmer.AcceptAll(true, true, true)
		if err != nil {
			a.prompter.Notify(err.Error(), ui.Error)
		} else if ok {
			fmt.Println("Done.")
		}
		return
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.lastFetch) {
		a.prompter.Notify("Run confs first, then accept/deny by number.", ui.Warning)
		return
	}
	if err := a.confirmer.Resolve([]*confirmation.Confirmation{a.lastFetch[n-1]}, decision); err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	fmt.Println("Done.")
}

func (a *app) toggleAuto(arg string) {
	category, state, _ := strings.Cut(arg, " ")
	on := state == "on"
	switch category {
	case "trades":
		a.manifest.AutoConfirmTrades = on
	case "market":
		a.manifest.AutoConfirmMarket = on
	default:
		a.prompter.Notify("Usage: auto trades|market on|off", ui.Warning)
		return
	}
	if err := a.store.SaveManifest(a.manifest); err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}

	flags := autoconfirm.Flags{
		Trades: a.manifest.AutoConfirmTrades,
		Market: a.manifest.AutoConfirmMarket,
	}
	a.scheduler.SetFlags(flags)
	if flags == (autoconfirm.Flags{}) {
		a.scheduler.Stop()
	} else {
		a.scheduler.Start(context.Background())
	}
}

func (a *app) backup(arg string) {
	if err := a.handler.EnsureSession(a.bundle); err != nil {
		a.prompter.Notify(err.Error(), ui.Error)
		return
	}
	switch arg {
	case "new":
		if err := a.service.CreateBackupCodes(a.bundle); err != nil {
			a.prompter.Notify(err.Error(), ui.Error)
			return
		}
		sms, err := a.prompter.Code(ui.CodeSMS)
		if err != nil {
			return
		}
		codes, err := a.service.CreateBackupCodesFinish(a.bundle, sms)
		if err != nil {
			a.prompter.Notify(err.Error(), ui.Error)
			return
		}
		if len(codes) == 0 {
			a.prompter.Notify("No codes were generated, the SMS code may have been wrong.", ui.Warning)
			return
		}
		fmt.Println("Backup codes (store them somewhere safe):")
		for _, code := range codes {
			fmt.Println("  " + code)
		}
	case "destroy":
		ok, err := a.prompter.Confirm("Invalidate every outstanding backup code?")
		if err != nil || !ok {
			return
		}
		if err := a.service.DestroyBackupCodes(a.bundle); err != nil {
			a.prompter.Notify(err.Error(), ui.Error)
			return
		}
		fmt.Println("Backup codes destroyed.")
	default:
		a.prompter.Notify("Usage: backup new|destroy", ui.Warning)
	}
}

// revoke removes the authenticator and the local secrets. Reports true
// when the account is gone and the program should exit.
func (a *app) revoke() (bool, error) {
	a.prompter.Notify("Removing the authenticator places a 15 day trade hold on the account.", ui.Warning)
	ok, err := a.prompter.Confirm("Remove the authenticator?")
	if err != nil || !ok {
		return false, nil
	}
	if err := a.handler.EnsureSession(a.bundle); err != nil {
		return false, err
	}
	if err := a.service.Revoke(a.bundle, a.bundle.RevocationCode); err != nil {
		return false, err
	}
	if err := a.store.Remove(a.bundle.SteamID()); err != nil {
		return false, err
	}
	a.prompter.Notify("Authenticator removed.", ui.Info)
	return true, nil
}

// enroll walks a fresh account through login, phone setup, and the
// enrollment handshake. The bundle is saved before finalization so the
// secrets survive a crash mid-activation.
func (a *app) enroll() (*mafile.SecretBundle, error) {
	sess, err := a.handler.Login("")
	if err != nil {
		return nil, err
	}

	linker := lifecycle.NewLinker(sess, a.aligner)
	if err := a.ensurePhone(linker); err != nil {
		return nil, err
	}

	bundle, err := linker.Enroll()
	if errors.Is(err, lifecycle.ErrDuplicateRequest) {
		a.prompter.Notify("This account already has an authenticator.", ui.Warning)
		code, codeErr := a.prompter.Code(ui.CodeRevocation)
		if codeErr != nil {
			return nil, codeErr
		}
		if err := linker.RevokeExisting(code); err != nil {
			return nil, err
		}
		bundle, err = linker.Enroll()
	}
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(bundle); err != nil {
		return nil, err
	}
	a.prompter.Notify("Write down your revocation code now: "+bundle.RevocationCode, ui.Warning)

	for {
		sms, err := a.prompter.Code(ui.CodeSMS)
		if err != nil {
			return nil, err
		}
		err = linker.Finalize(bundle, sms)
		if errors.Is(err, lifecycle.ErrBadSMSCode) {
			a.prompter.Notify("Steam rejected that code.", ui.Warning)
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	if err := a.store.Save(bundle); err != nil {
		return nil, err
	}
	a.prompter.Notify("Authenticator enrolled.", ui.Info)
	return bundle, nil
}

func (a *app) ensurePhone(linker *lifecycle.Linker) error {
	has, err := linker.HasPhone()
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	number, err := a.prompter.Code(ui.CodePhoneNumber)
	if err != nil {
		return err
	}
	if err := linker.AddPhone(number); err != nil {
		return err
	}
	sms, err := a.prompter.Code(ui.CodeSMS)
	if err != nil {
		return err
	}
	return linker.ConfirmPhone(sms)
}
