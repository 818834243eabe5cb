package console

import (
	"bufio"
	"context"
	"strings"
)

// execIface defines the command surface the REPL needs. *Console satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	addMember(ctx context.Context, rest string)
	removeMember(ctx context.Context, rest string)
	applyPoints(ctx context.Context, rest string, negate bool)
	showPoints(ctx context.Context, rest string)
	showHistory(ctx context.Context, rest string)
	showMembers(ctx context.Context)
	memberCount(ctx context.Context)
	rename(ctx context.Context, rest string)
	importFile(ctx context.Context, rest string)
	purgeInitiate(ctx context.Context)
	purgeConfirm(ctx context.Context, rest string)
	purgeCancel(ctx context.Context, rest string)
	toggleRole(ctx context.Context, rest string)
	suggest(ctx context.Context, rest string)
}

const helpText = `commands:
  addmember <name>                    create a member with 0 points
  removemember <name>                 remove a member and their history
  addpoints <member> | <amt> | <why>  award points
  removepoints <member> | <amt> | <why>
  points [member]                     show one member's points, or all
  history <member>                    show a member's audit trail
  members                             list all members
  count                               member count
  rename <old> | <new>                rename a member, history follows
  import <file.xlsx|file.csv>         bulk-add members from a spreadsheet
  suggest <partial>                   name autocompletion preview
  purge                               start removing ALL members (two-step)
  confirm <id> / cancel <id>          answer a pending purge
  togglerole <role>                   join or leave a committee role
  exit | quit`

// runREPL reads a line per iteration, takes the first token as the
// command and hands the remainder to the matching handler. Handlers print
// their own errors; the loop stays resilient and exits on EOF or
// exit/quit.
func runREPL(ctx context.Context, c execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("points> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "addmember":
			c.addMember(ctx, rest)

		case "removemember":
			c.removeMember(ctx, rest)

		case "addpoints":
			c.applyPoints(ctx, rest, false)

		case "removepoints":
			c.applyPoints(ctx, rest, true)

		case "points":
			c.showPoints(ctx, rest)

		case "history":
			c.showHistory(ctx, rest)

		case "members":
			c.showMembers(ctx)

		case "count":
			c.memberCount(ctx)

		case "rename":
			c.rename(ctx, rest)

		case "import":
			c.importFile(ctx, rest)

		case "suggest":
			c.suggest(ctx, rest)

		case "purge":
			c.purgeInitiate(ctx)

		case "confirm":
			c.purgeConfirm(ctx, rest)

		case "cancel":
			c.purgeCancel(ctx, rest)

		case "togglerole":
			c.toggleRole(ctx, rest)

		case "exit", "quit":
			return

		default:
			printlnFn("unknown command, try: help")
		}
	}
}
