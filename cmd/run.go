package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

// runCmd connects to the server and forwards input commands read from
// stdin. It stands in for the UI layer: it initializes the engine once,
// observes state transitions, and calls the input send methods.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the server and forward input",
	Long: `Connect to the Airmote server and forward input events typed as commands.

Commands:
  move <dx> <dy>        Move the pointer by a delta
  moveto <x> <y>        Move the pointer to an absolute position
  click [button] [n]    Click a mouse button (default: left, once)
  scroll <amount>       Scroll by a signed amount
  key <name>            Press a key (add "hold" or "release" as a modifier)
  type <text>           Type a text string
  keys <k1> <k2> ...    Press a key combination
  reconnect             Force rediscovery and reconnect
  status                Show connection status
  quit                  Exit`,
	Run: func(cmd *cobra.Command, args []string) {
		conns := Container.ConnectionService
		input := Container.InputService

		conns.OnStateChange(func(state model.ConnectionState) {
			fmt.Printf("* connection %s\n", state)
		})

		if err := conns.Initialize(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		input.StartKeepAlive()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		for {
			select {
			case <-sigCh:
				fmt.Println("\nShutting down...")
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				if !handleLine(line) {
					return
				}
			}
		}
	},
}

// handleLine parses one input command. Returns false to exit.
func handleLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	conns := Container.ConnectionService
	input := Container.InputService

	switch fields[0] {
	case "move", "moveto":
		if len(fields) != 3 {
			fmt.Println("usage: move <dx> <dy> | moveto <x> <y>")
			return true
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			fmt.Println("coordinates must be numbers")
			return true
		}
		input.MoveMouse(x, y, fields[0] == "move")

	case "click":
		button := "left"
		clicks := 1
		if len(fields) > 1 {
			button = fields[1]
		}
		if len(fields) > 2 {
			if n, err := strconv.Atoi(fields[2]); err == nil {
				clicks = n
			}
		}
		input.ClickMouse(button, clicks, 0)

	case "scroll":
		if len(fields) != 2 {
			fmt.Println("usage: scroll <amount>")
			return true
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("amount must be a number")
			return true
		}
		input.Scroll(amount)

	case "key":
		if len(fields) < 2 {
			fmt.Println("usage: key <name> [hold|release]")
			return true
		}
		hold := len(fields) > 2 && fields[2] == "hold"
		release := len(fields) > 2 && fields[2] == "release"
		input.PressKey(fields[1], hold, release)

	case "type":
		if len(fields) < 2 {
			fmt.Println("usage: type <text>")
			return true
		}
		input.TypeText(strings.Join(fields[1:], " "), 0)

	case "keys":
		if len(fields) < 2 {
			fmt.Println("usage: keys <k1> <k2> ...")
			return true
		}
		input.PressKeys(fields[1:])

	case "reconnect":
		conns.ManualReconnect()

	case "status":
		status := conns.Status()
		fmt.Printf("state: %s  strategy: %s  endpoint: %s  reconnect attempts: %d\n",
			status.State, status.Strategy, status.Endpoint.Addr(), status.ReconnectAttempts)

	case "quit", "exit":
		return false

	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}

	return true
}

func init() {
	RootCmd.AddCommand(runCmd)
}
