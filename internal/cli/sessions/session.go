package sessions

import (
	"fmt"
	"strings"
	"time"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/models"
)

type SessionStartCmd struct {
	For             time.Duration `short:"f" help:"Session duration (e.g. 25m). Omit to block until ended."`
	Domains         string        `help:"Comma-separated domains to block, overriding the configured defaults."`
	URLKeywords     string        `help:"Comma-separated URL keywords, overriding the configured defaults."`
	ContentKeywords string        `help:"Comma-separated content keywords, overriding the configured defaults."`
}

func (c *SessionStartCmd) Run(ctx *cli.Context) error {
	var duration *time.Duration
	if c.For != 0 {
		duration = &c.For
	}
	overrides := models.QuickBlockRules{
		BlockedDomains:  cli.SplitList(c.Domains),
		URLKeywords:     cli.SplitList(c.URLKeywords),
		ContentKeywords: cli.SplitList(c.ContentKeywords),
	}
	if err := ctx.Session.Start(duration, overrides); err != nil {
		return err
	}
	if duration == nil {
		fmt.Println("Quick-block session started. It runs until you end it.")
	} else {
		fmt.Printf("Quick-block session started for %s.\n", c.For)
	}
	return nil
}

type SessionExtendCmd struct {
	By time.Duration `arg:"" help:"Additional session time (e.g. 15m)."`
}

func (c *SessionExtendCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.Extend(c.By); err != nil {
		return err
	}
	expiry, err := ctx.Session.ExpiryTime()
	if err != nil {
		return err
	}
	fmt.Printf("Session extended: %s left.\n", cli.FormatRemaining(*expiry, time.Now()))
	return nil
}

type SessionEndCmd struct{}

func (c *SessionEndCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.End(); err != nil {
		return err
	}
	fmt.Println("Quick-block session ended.")
	return nil
}

type SessionStatusCmd struct{}

func (c *SessionStatusCmd) Run(ctx *cli.Context) error {
	session, err := ctx.Session.Active()
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Println("No quick-block session is active.")
		return nil
	}
	if session.EndTime == nil {
		fmt.Println("Quick-block session active until ended.")
	} else {
		fmt.Printf("Quick-block session active: %s left.\n", cli.FormatRemaining(*session.EndTime, time.Now()))
	}
	if len(session.BlockedDomains) > 0 {
		fmt.Printf("  Domains:  %s\n", strings.Join(session.BlockedDomains, ", "))
	}
	if len(session.URLKeywords) > 0 {
		fmt.Printf("  URL keywords:  %s\n", strings.Join(session.URLKeywords, ", "))
	}
	if len(session.ContentKeywords) > 0 {
		fmt.Printf("  Content keywords:  %s\n", strings.Join(session.ContentKeywords, ", "))
	}
	return nil
}

type SessionAddCmd struct {
	Type  string `arg:"" enum:"domain,url_keyword,content_keyword" help:"Rule type (domain|url_keyword|content_keyword)."`
	Value string `arg:"" help:"Pattern or keyword to add."`
}

func (c *SessionAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.AddRule(models.MatchType(c.Type), c.Value); err != nil {
		return err
	}
	fmt.Printf("Added %s %q to the running session.\n", c.Type, c.Value)
	return nil
}
