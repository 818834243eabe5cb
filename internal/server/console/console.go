// Package console is a line-based operator console over the command
// dispatcher, for local administration and development. It drives exactly
// the surface the chat-platform glue drives; nothing in here has its own
// path to the ledger.
package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/clubops/pointsledger/internal/server/authz"
	"github.com/clubops/pointsledger/internal/server/dispatch"
	"golang.org/x/term"
)

// printlnFn is a test seam for user-facing output. In tests, replace it
// with a stub.
var printlnFn = fmt.Println

type Console struct {
	d      *dispatch.Dispatcher
	caller *authz.Caller
	marker string
}

func New(d *dispatch.Dispatcher, marker string) *Console {
	return &Console{d: d, marker: marker}
}

// Login resolves the operator identity. A caller token pasted at the
// prompt is verified like any platform token; an empty line falls back to
// a local operator carrying the privileged marker, since someone at this
// console already has the keys to the database.
func (c *Console) Login(ctx context.Context) error {
	printlnFn("Operator token (empty for local operator):")

	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return err
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		c.caller = &authz.Caller{Name: "operator", Roles: []string{c.marker}}
		return nil
	}

	caller, err := c.d.ResolveCaller(ctx, token)
	if err != nil {
		return err
	}
	c.caller = caller
	return nil
}

// Run reads commands from stdin until EOF or exit.
func (c *Console) Run(ctx context.Context) {
	runREPL(ctx, c, bufio.NewScanner(os.Stdin))
}

// splitArgs splits the remainder of a command line on "|" and trims each
// part, so multi-word member names survive: addpoints Ada Lovelace | 15 |
// workshop.
func splitArgs(rest string) []string {
	parts := strings.Split(rest, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (c *Console) fail(err error) {
	printlnFn(fmt.Sprintf("error: %v", err))
}

func (c *Console) addMember(ctx context.Context, rest string) {
	m, err := c.d.AddMember(ctx, c.caller, rest)
	if err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("member %q added with 0 points", m.Name))
}

func (c *Console) removeMember(ctx context.Context, rest string) {
	if err := c.d.RemoveMember(ctx, c.caller, rest); err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("member %q removed, including all history", rest))
}

func (c *Console) applyPoints(ctx context.Context, rest string, negate bool) {
	args := splitArgs(rest)
	if len(args) != 3 {
		printlnFn("usage: add|removepoints <member> | <amount> | <reason>")
		return
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		printlnFn(fmt.Sprintf("amount %q is not a number", args[1]))
		return
	}

	var total float64
	if negate {
		total, err = c.d.RemovePoints(ctx, c.caller, args[0], amount, args[2])
	} else {
		total, err = c.d.AddPoints(ctx, c.caller, args[0], amount, args[2])
	}
	if err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("%s: new total %g", args[0], total))
}

func (c *Console) showPoints(ctx context.Context, rest string) {
	members, err := c.d.ShowPoints(ctx, rest)
	if err != nil {
		c.fail(err)
		return
	}
	if len(members) == 0 {
		printlnFn("no members yet")
		return
	}
	for _, m := range members {
		printlnFn(fmt.Sprintf("%-28s  %g", m.Name, m.Points))
	}
}

func (c *Console) showHistory(ctx context.Context, rest string) {
	entries, err := c.d.ShowHistory(ctx, rest)
	if err != nil {
		c.fail(err)
		return
	}
	if len(entries) == 0 {
		printlnFn(fmt.Sprintf("no history for %q", rest))
		return
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("%s  %+g  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Delta, e.Reason))
	}
}

func (c *Console) showMembers(ctx context.Context) {
	members, err := c.d.ShowMembers(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	for _, m := range members {
		printlnFn(m.Name)
	}
	printlnFn(fmt.Sprintf("(%d members)", len(members)))
}

func (c *Console) memberCount(ctx context.Context) {
	count, err := c.d.MemberCount(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("total members: %d", count))
}

func (c *Console) rename(ctx context.Context, rest string) {
	args := splitArgs(rest)
	if len(args) != 2 {
		printlnFn("usage: rename <old name> | <new name>")
		return
	}
	if err := c.d.RenameMember(ctx, c.caller, args[0], args[1]); err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("renamed %q to %q", args[0], args[1]))
}

func (c *Console) importFile(ctx context.Context, rest string) {
	f, err := os.Open(rest)
	if err != nil {
		c.fail(err)
		return
	}
	defer f.Close()

	result, err := c.d.ImportFromFile(ctx, c.caller, f, rest)
	if err != nil {
		c.fail(err)
		return
	}
	printlnFn(fmt.Sprintf("added %d members, skipped %d duplicates", len(result.Added), len(result.Skipped)))
	for _, name := range result.Skipped {
		printlnFn("skipped: " + name)
	}
}

func (c *Console) purgeInitiate(ctx context.Context) {
	inst, err := c.d.PurgeInitiate(ctx, c.caller)
	if err != nil {
		c.fail(err)
		return
	}
	printlnFn("this will permanently delete ALL members and history")
	printlnFn(fmt.Sprintf("confirm %s  (or: cancel %s) before %s", inst.ID, inst.ID, inst.Deadline.Format("15:04:05")))
}

func (c *Console) purgeConfirm(ctx context.Context, rest string) {
	if err := c.d.PurgeConfirm(ctx, c.caller, rest); err != nil {
		c.fail(err)
		return
	}
	printlnFn("all members and history permanently removed")
}

func (c *Console) purgeCancel(ctx context.Context, rest string) {
	if err := c.d.PurgeCancel(ctx, c.caller, rest); err != nil {
		c.fail(err)
		return
	}
	printlnFn("purge cancelled, ledger unchanged")
}

func (c *Console) toggleRole(ctx context.Context, rest string) {
	added, err := c.d.ToggleRole(ctx, c.caller, rest)
	if err != nil {
		c.fail(err)
		return
	}
	if added {
		printlnFn(fmt.Sprintf("added role %q", rest))
	} else {
		printlnFn(fmt.Sprintf("removed role %q", rest))
	}
}

func (c *Console) suggest(ctx context.Context, rest string) {
	names, err := c.d.Suggest(ctx, c.caller, rest)
	if err != nil {
		c.fail(err)
		return
	}
	for _, name := range names {
		printlnFn(name)
	}
}
