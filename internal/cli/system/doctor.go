package system

import (
	"fmt"
	"os"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/zalando/go-keyring"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/migration"
	"github.com/smorton/sitegate/internal/schedule"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	primaryReachable := false

	// Check 1: primary storage reachable
	if _, _, err := ctx.Backends.Primary().Get(constants.KeySettings); err != nil {
		fmt.Printf("❌ Primary storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Primary storage reachable: OK\n")
		primaryReachable = true
	}

	// Check 2: local fallback writable
	if err := checkLocalWritable(ctx); err != nil {
		fmt.Printf("❌ Local fallback writable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Local fallback writable: OK\n")
	}

	// Check 3: settings schema version (only if storage is reachable)
	if primaryReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Settings schema: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings schema: OK (version %s, %d migrations known)\n",
				constants.SettingsVersion, len(migration.Registered()))
		}
	} else {
		fmt.Printf("⊘ Settings schema: SKIPPED (primary storage not reachable)\n")
	}

	// Check 4: schedule validation (only if storage is reachable)
	if primaryReachable {
		if err := checkSchedules(ctx); err != nil {
			fmt.Printf("❌ Schedule validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schedule validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schedule validation: SKIPPED (primary storage not reachable)\n")
	}

	// Check 5: OS keyring available (warning only; the lock mirror degrades
	// gracefully without it)
	if err := checkKeyring(); err != nil {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ OS keyring: OK\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 7: concurrent processes (warning only)
	if n, err := countSitegateProcesses(); err != nil {
		fmt.Printf("⚠ Process check: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else if n > 1 {
		fmt.Printf("⚠ Process check: WARNING\n")
		fmt.Printf("   %d sitegate processes running; concurrent writes may conflict\n", n)
	} else {
		fmt.Printf("✓ Process check: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkLocalWritable(ctx *cli.Context) error {
	const probe = "doctor_probe"
	local := ctx.Backends.Local()
	if err := local.Set(probe, []byte(`{}`)); err != nil {
		return err
	}
	return local.Delete(probe)
}

func checkSchemaVersion(ctx *cli.Context) error {
	settings, err := ctx.Settings.Get()
	if err != nil {
		return err
	}
	if settings.Version != constants.SettingsVersion {
		return fmt.Errorf("document version %s, expected %s", settings.Version, constants.SettingsVersion)
	}
	return nil
}

func checkSchedules(ctx *cli.Context) error {
	settings, err := ctx.Settings.Get()
	if err != nil {
		return err
	}
	var bad []string
	for _, s := range settings.Blocking.Schedules {
		if err := schedule.Validate(s); err != nil {
			bad = append(bad, fmt.Sprintf("%s: %v", s.Name, err))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid schedules: %s", strings.Join(bad, "; "))
	}
	return nil
}

func checkKeyring() error {
	const probeKey = "doctor-probe"
	if err := keyring.Set(constants.AppName, probeKey, "ok"); err != nil {
		return fmt.Errorf("keyring unavailable: %v (lock mode will not survive local file deletion)", err)
	}
	return keyring.Delete(constants.AppName, probeKey)
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2024 {
		return fmt.Errorf("system clock reports %s, which is in the past", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset < -14*3600 || offset > 14*3600 {
		return fmt.Errorf("implausible timezone offset %d seconds", offset)
	}
	return nil
}

func countSitegateProcesses() (int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %v", err)
	}
	self := os.Getpid()
	count := 0
	for _, p := range procs {
		if p.Pid() == self {
			count++
			continue
		}
		if strings.HasPrefix(p.Executable(), constants.AppName) {
			count++
		}
	}
	return count, nil
}
