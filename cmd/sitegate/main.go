package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/cli/backups"
	"github.com/smorton/sitegate/internal/cli/channels"
	"github.com/smorton/sitegate/internal/cli/locks"
	"github.com/smorton/sitegate/internal/cli/schedules"
	"github.com/smorton/sitegate/internal/cli/sessions"
	settingscmd "github.com/smorton/sitegate/internal/cli/settings"
	"github.com/smorton/sitegate/internal/cli/system"
	"github.com/smorton/sitegate/internal/constants"
	apperrors "github.com/smorton/sitegate/internal/errors"
	"github.com/smorton/sitegate/internal/lock"
	"github.com/smorton/sitegate/internal/logger"
	"github.com/smorton/sitegate/internal/pause"
	"github.com/smorton/sitegate/internal/session"
	"github.com/smorton/sitegate/internal/settings"
	"github.com/smorton/sitegate/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or OS keyring instead." type:"string" default:"~/.config/sitegate/sitegate.db"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd          `cmd:"" help:"Initialize sitegate storage."`
	Doctor   system.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd           `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Check    cli.CheckCmd            `cmd:"" help:"Check a URL against the active blocking rules."`
	Status   cli.StatusCmd           `cmd:"" help:"Show blocking, lock, and pause state."`
	Pause    cli.PauseCmd            `cmd:"" help:"Pause the cosmetic filters."`
	Resume   cli.ResumeCmd           `cmd:"" help:"Resume the cosmetic filters."`
	Settings settingscmd.SettingsCmd `cmd:"" help:"Manage application settings."`
	Export   backups.ExportCmd       `cmd:"" help:"Export settings to a backup file."`
	Import   backups.ImportCmd       `cmd:"" help:"Import settings from a backup file."`
	Schedule struct {
		Add    schedules.ScheduleAddCmd    `cmd:"" help:"Add a blocking schedule."`
		List   schedules.ScheduleListCmd   `cmd:"" help:"List blocking schedules." default:"1"`
		Edit   schedules.ScheduleEditCmd   `cmd:"" help:"Edit a blocking schedule."`
		Delete schedules.ScheduleDeleteCmd `cmd:"" help:"Delete a blocking schedule."`
	} `cmd:"" help:"Manage blocking schedules."`
	Session struct {
		Start  sessions.SessionStartCmd  `cmd:"" help:"Start a quick-block session."`
		Extend sessions.SessionExtendCmd `cmd:"" help:"Extend the running session."`
		End    sessions.SessionEndCmd    `cmd:"" help:"End the running session."`
		Status sessions.SessionStatusCmd `cmd:"" help:"Show the running session." default:"1"`
		Add    sessions.SessionAddCmd    `cmd:"" help:"Add a rule to the running session."`
	} `cmd:"" help:"Manage quick-block sessions."`
	Lock struct {
		Status   locks.LockStatusCmd   `cmd:"" help:"Show lock state." default:"1"`
		Activate locks.LockActivateCmd `cmd:"" help:"Activate lock mode for a duration."`
		Extend   locks.LockExtendCmd   `cmd:"" help:"Extend the active lock."`
	} `cmd:"" help:"Manage lock mode."`
	Channel struct {
		Block   channels.ChannelBlockCmd   `cmd:"" help:"Block a channel."`
		Unblock channels.ChannelUnblockCmd `cmd:"" help:"Unblock a channel."`
		List    channels.ChannelListCmd    `cmd:"" help:"List blocked channels." default:"1"`
	} `cmd:"" help:"Manage blocked channels."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Schedule-based site blocker with quick-block sessions and a commitment lock"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	config := CLI.Config
	if storage.IsPostgresConnString(config) {
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
			fmt.Fprintf(os.Stderr, "       1. Environment:   export PGPASSWORD=... with a credential-free connection string\n")
			fmt.Fprintf(os.Stderr, "       2. .pgpass file:  Use a connection string without a password: \"postgresql://user@host:5432/sitegate\"\n")
			os.Exit(1)
		}
	} else {
		config = expandPath(config)
	}

	localDir := localStateDir(config)
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: localDir}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", apperrors.Formatf("failed to initialize logging: %v", err))
		os.Exit(1)
	}
	backends := storage.Open(config, localDir)

	lockMgr := lock.NewManager(backends.Local())
	store := settings.NewStore(backends, lockMgr)
	appCtx := &cli.Context{
		Backends: backends,
		Settings: store,
		Lock:     lockMgr,
		Pause:    pause.NewManager(backends.Local(), lockMgr),
		Session:  session.NewManager(backends.Local(), store),
	}

	// The init command handles its own loading.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		apperrors.Fatal(backends.Load())
	}

	err := ctx.Run(appCtx)
	if errors.Is(err, cli.ErrBlocked) {
		fmt.Fprintf(os.Stderr, "%s\n", apperrors.Format(err))
		os.Exit(2)
	}
	apperrors.Fatal(err)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// localStateDir picks where the device-local JSON document lives: next to
// the sqlite file, or the default config directory for a remote primary.
func localStateDir(config string) string {
	if storage.IsPostgresConnString(config) {
		return filepath.Dir(expandPath(constants.DefaultConfigPath))
	}
	return filepath.Dir(config)
}
