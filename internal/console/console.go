// Package console runs the operator command prompt on the server's terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

const prompt = "quiz> "

const askUsage = `/ask "Question text" OptionA|OptionB|OptionC|OptionD correct=A time=20`

var askPattern = regexp.MustCompile(`(?i)^/ask\s+"([^"]+)"\s+([^|]+)\|([^|]+)\|([^|]+)\|([^|]+?)\s+correct=([ABCD])\s+time=(\d+)\s*$`)

// Console reads operator commands and drives the game with them
type Console struct {
	game *service.GameService
	out  io.Writer
}

// New creates a console writing its output to out
func New(game *service.GameService, out io.Writer) *Console {
	return &Console{game: game, out: out}
}

// Run reads commands from in until it is exhausted or ctx is done
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	fmt.Fprintln(c.out, "Quiz console. Type /help for commands")
	fmt.Fprint(c.out, prompt)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			c.Exec(line)
			fmt.Fprint(c.out, prompt)
		}
	}
}

// Exec runs a single command line
func (c *Console) Exec(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		fmt.Fprintln(c.out, "Commands must start with /. Type /help for available commands.")
		return
	}

	command := strings.ToLower(strings.Fields(line)[0])
	switch command {
	case "/help":
		c.help()
	case "/reset":
		c.game.Reset()
		fmt.Fprintln(c.out, "Game reset to lobby")
	case "/start":
		c.report(c.game.Start(), "Game started")
	case "/players":
		c.players()
	case "/ask":
		c.ask(line)
	case "/reveal":
		if err := c.game.Reveal(); err != nil {
			c.report(err, "")
			return
		}
		c.scores(c.game.Leaderboard())
	case "/scores":
		c.scores(c.game.Leaderboard())
	case "/next":
		fmt.Fprintln(c.out, "Ready for next question. Use /ask to send a question.")
	case "/end":
		final := c.game.End()
		fmt.Fprintln(c.out, "Game ended. Final standings:")
		c.scores(final)
	default:
		fmt.Fprintf(c.out, "Unknown command: %s. Type /help for available commands.\n", command)
	}
}

func (c *Console) ask(line string) {
	m := askPattern.FindStringSubmatch(line)
	if m == nil {
		fmt.Fprintln(c.out, "Invalid /ask format. Expected:")
		fmt.Fprintln(c.out, "  "+askUsage)
		return
	}

	seconds, err := strconv.Atoi(m[7])
	if err != nil {
		fmt.Fprintln(c.out, "Invalid time:", m[7])
		return
	}

	options := []string{strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), strings.TrimSpace(m[4]), strings.TrimSpace(m[5])}
	q, err := service.BuildQuestion("", m[1], options, m[6], seconds)
	if err != nil {
		c.report(err, "")
		return
	}
	asked, number, err := c.game.Ask(q)
	if err != nil {
		c.report(err, "")
		return
	}

	fmt.Fprintf(c.out, "Question %d (%s) sent, closes in %ds\n", number, asked.ID, seconds)
}

func (c *Console) players() {
	players := c.game.CurrentPlayers()

	var connected, gone []model.Player
	for _, p := range players {
		if p.Connected {
			connected = append(connected, p)
		} else {
			gone = append(gone, p)
		}
	}

	fmt.Fprintf(c.out, "Game status: %s\n", c.game.CurrentStatus())
	fmt.Fprintf(c.out, "Connected players (%d):\n", len(connected))
	for _, p := range connected {
		fmt.Fprintf(c.out, "  - %s (points: %d)\n", p.Nickname, p.TotalPoints)
	}
	if len(gone) > 0 {
		fmt.Fprintln(c.out, "Disconnected players:")
		for _, p := range gone {
			fmt.Fprintf(c.out, "  - %s (points: %d) [disconnected]\n", p.Nickname, p.TotalPoints)
		}
	}
}

func (c *Console) scores(board model.LeaderboardMessage) {
	fmt.Fprintf(c.out, "Leaderboard (question %d):\n", board.QuestionNumber)
	if len(board.Entries) == 0 {
		fmt.Fprintln(c.out, "  no connected players")
		return
	}
	for i, e := range board.Entries {
		delta := ""
		if e.LastDelta != nil && *e.LastDelta > 0 {
			delta = fmt.Sprintf(" (+%d)", *e.LastDelta)
		}
		fmt.Fprintf(c.out, "  %d. %s: %d points%s\n", i+1, e.Nickname, e.TotalPoints, delta)
	}
}

func (c *Console) report(err error, ok string) {
	if err != nil {
		fmt.Fprintln(c.out, "Error:", err)
		return
	}
	if ok != "" {
		fmt.Fprintln(c.out, ok)
	}
}

func (c *Console) help() {
	fmt.Fprint(c.out, `Available commands:
  /help     Show this help message
  /reset    Reset game to lobby state
  /start    Start the game (lock lobby)
  /players  List players
  /ask      Ask a question
  /reveal   Reveal the current question now
  /scores   Show current scores
  /next     Ready for next question
  /end      End game and show final scores

Ask format:
  `+askUsage+`
Example:
  /ask "What is the capital of France?" Paris|Berlin|Madrid|Rome correct=A time=20
`)
}
