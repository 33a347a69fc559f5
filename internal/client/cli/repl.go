package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isJoined() bool
	Join() error
	Post(entry string) error
	Bio(entry string) error
	Send(recipient, entry string) error
	New() error
	All() error
}

// runREPL reads a line, takes the first token as the command, and dispatches
// to methods on 'a'. The loop exits on EOF or when the user types "exit" or
// "quit". Errors returned by command handlers are ignored here; handlers
// report their own errors. That keeps the loop resilient and focused on I/O.
func runREPL(a execIface, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprint(out, "ds> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isJoined() {
				fmt.Fprintln(out, "Available commands: post <text>, bio <text>, send <user> <text>, new, all, exit")
			} else {
				fmt.Fprintln(out, "Available commands: join, exit")
			}

		case "join":
			_ = a.Join()

		case "post":
			if len(parts) < 2 {
				fmt.Fprintln(out, "Usage: post <text>")
				continue
			}
			_ = a.Post(strings.Join(parts[1:], " "))

		case "bio":
			if len(parts) < 2 {
				fmt.Fprintln(out, "Usage: bio <text>")
				continue
			}
			_ = a.Bio(strings.Join(parts[1:], " "))

		case "send":
			if len(parts) < 3 {
				fmt.Fprintln(out, "Usage: send <user> <text>")
				continue
			}
			_ = a.Send(parts[1], strings.Join(parts[2:], " "))

		case "new":
			_ = a.New()

		case "all":
			_ = a.All()

		case "exit", "quit":
			return

		default:
			fmt.Fprintf(out, "Unknown command %q. Type 'help'.\n", cmd)
		}
	}
}
