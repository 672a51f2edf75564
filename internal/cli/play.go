package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// revealWait is how long play waits for a revealed answer to clear
var revealWait = 2 * time.Second

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		Long: `Play a quiz, reading one guess per line from stdin. Each round shows the
image path of the chin to identify. Blank lines are ignored; end input to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := cfg.LoadIdentity()
			if err != nil {
				return err
			}

			req := map[string]string{}
			if stored != nil {
				req["userId"] = stored.UserID
				req["displayName"] = stored.DisplayName
			}
			if strings.TrimSpace(name) != "" {
				req["displayName"] = name
			}
			if strings.TrimSpace(req["displayName"]) == "" {
				return fmt.Errorf("--name is required when no identity is stored")
			}

			var created SessionCreated
			if err := client.Post("/api/v1/sessions", req, &created); err != nil {
				return err
			}
			if err := cfg.SaveIdentity(created.Identity); err != nil {
				return fmt.Errorf("failed to save identity: %w", err)
			}

			return playSession(cmd.InOrStdin(), cmd.OutOrStdout(), created.Session)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the stored identity)")

	return cmd
}

// playSession runs the guess loop until the quiz completes or input ends
func playSession(in io.Reader, w io.Writer, session Session) error {
	out := NewOutput("text", w)
	scanner := bufio.NewScanner(in)
	path := "/api/v1/sessions/" + session.ID

	out.Print(session)
	for !session.Completed {
		_, _ = fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(w)
			out.PrintMessage("Quit. Run 'chinquiz play' to start again.")
			return scanner.Err()
		}

		var result GuessResult
		if err := client.Post(path+"/guesses", map[string]string{"guess": scanner.Text()}, &result); err != nil {
			return err
		}
		session = result.Session

		switch result.Outcome {
		case "correct", "completed":
			out.PrintMessage("Correct!")
		case "wrong":
			out.PrintMessage(fmt.Sprintf("Not quite. %d chances left.", session.ChancesLeft))
		case "exhausted":
			out.PrintMessage("Out of chances! It was " + result.Answer + ".")
			time.Sleep(revealWait)
			if err := client.Get(path, &session); err != nil {
				return err
			}
		default:
			continue
		}
		out.Print(session)
	}
	return nil
}
