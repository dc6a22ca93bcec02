package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todomind/internal/agent"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message to the assistant and print the answer",
		ArgsUsage: "<message>",
		Flags: append(agentFlags(),
			&cli.StringFlag{Name: "conversation", Usage: "Conversation id to continue (empty = new conversation)"},
		),
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("usage: todomind ask <message>")
	}

	a, err := newApp(ctx, cmd, appOptionsFrom(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.assistant.Chat(ctx, agent.Request{
		UserID:         cmd.String("user"),
		ConversationID: cmd.String("conversation"),
		Message:        message,
	})
	if err != nil {
		return err
	}
	if cmd.String("conversation") == "" {
		fmt.Fprintf(os.Stderr, "conversation: %s\n", reply.ConversationID)
	}
	return printAnswer(os.Stdout, reply.Content, cmd.Bool("raw"))
}

// NewChatCommand returns the interactive chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Chat with the assistant in the terminal",
		Flags:  agentFlags(),
		Action: runChat,
	}
}

var exitWords = map[string]bool{"exit": true, "quit": true, "sair": true}

func runChat(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd, appOptionsFrom(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(os.Stderr, "todomind (%s), type 'exit' to quit\n", a.assistant.Profile().Name)
	return chatLoop(ctx, os.Stdin, os.Stdout, a.assistant, cmd.String("user"), cmd.Bool("raw"))
}

// Chatter answers chat turns.
type Chatter interface {
	Chat(ctx context.Context, req agent.Request) (*agent.Reply, error)
}

// chatLoop reads one message per line until EOF or an exit word. Errors of a
// single turn are printed and the loop continues.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, asst Chatter, userID string, raw bool) error {
	scanner := bufio.NewScanner(in)
	convID := ""
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			fmt.Fprintln(out, "👋 Bye!")
			return nil
		}

		reply, err := asst.Chat(ctx, agent.Request{UserID: userID, ConversationID: convID, Message: line})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		convID = reply.ConversationID
		if err := printAnswer(out, reply.Content, raw); err != nil {
			return err
		}
	}
}
