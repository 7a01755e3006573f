package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Mazzz-zzz/voca.fi/pkg/agent"
	"github.com/Mazzz-zzz/voca.fi/pkg/chat"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive swap assistant session",
	Long: `Starts an interactive session with the LLM-backed assistant. Ask it to
swap POL for a token, check balances or look up prices. Prepared swaps wait
for an "ok" or "yes" unless confirmation is disabled with /confirm off.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true, nil)
	if err != nil {
		return err
	}
	defer a.close()

	assistant, err := agent.New(a.openAIKey(), a.cfg.OpenAIModel, a.log)
	if err != nil {
		return err
	}

	session := chat.NewSession(chat.Config{
		Assistant:     assistant,
		Preparer:      a.preparer,
		Queue:         a.queue,
		Gate:          swap.NewConfirmationGate(),
		Executor:      a.exec,
		Chain:         a.exec,
		Prices:        a.enso,
		Settings:      a.settings,
		SettingsStore: a.settingsStore,
		ChainID:       a.cfg.ChainID,
		Logger:        a.log,
	})

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen, color.Bold)

	green.Printf("Connected as %s on chain %d\n", a.exec.Address().Hex(), a.cfg.ChainID)
	fmt.Println("Type a request, /confirm on|off, /queue, or /exit.")

	reader := bufio.NewReader(os.Stdin)
	for {
		cyan.Print("you> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == "/exit" || line == "/quit":
			return nil
		case line == "/queue":
			printQueue(a.queue.List())
			continue
		case strings.HasPrefix(line, "/confirm"):
			if err := handleConfirmToggle(session, line); err != nil {
				color.Red("%v", err)
			}
			continue
		}

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " thinking..."
		s.Start()
		reply, err := session.HandleMessage(ctx, line)
		s.Stop()

		if err != nil {
			color.Red("%v", err)
			continue
		}
		if reply != "" {
			green.Print("voca> ")
			fmt.Println(reply)
		}
	}
}

func handleConfirmToggle(session *chat.Session, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		return fmt.Errorf("usage: /confirm on|off")
	}
	// "on" means confirmation required, so sendWithoutConfirm is its inverse.
	if err := session.SetSendWithoutConfirm(fields[1] == "off"); err != nil {
		return err
	}
	if fields[1] == "on" {
		fmt.Println("Swaps will wait for confirmation.")
	} else {
		fmt.Println("Swaps will execute immediately without confirmation.")
	}
	return nil
}
