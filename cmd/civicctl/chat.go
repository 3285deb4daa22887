package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the dialog engine from the console",
		Long: `Each line is sent as a text message. Special forms:
  /image <ref>       send an image reference
  /loc <lat> <long>  send a location
  /quit              leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")

			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rl := a.Relay(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Chatting as %s. Type Hi to start, /quit to leave.\n", user)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "/quit" {
					break
				}
				in, err := parseLine(line)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				render(out, rl.Process(cmd.Context(), user, in))
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringP("user", "u", "console", "Channel user id of the simulated sender")
	return cmd
}

// parseLine превращает строку консоли во входящее событие
func parseLine(line string) (model.Inbound, error) {
	switch {
	case strings.HasPrefix(line, "/image"):
		ref := strings.TrimSpace(strings.TrimPrefix(line, "/image"))
		if ref == "" {
			return model.Inbound{}, fmt.Errorf("usage: /image <ref>")
		}
		return model.ImageEvent(ref), nil
	case strings.HasPrefix(line, "/loc"):
		fields := strings.Fields(strings.TrimPrefix(line, "/loc"))
		if len(fields) != 2 {
			return model.Inbound{}, fmt.Errorf("usage: /loc <lat> <long>")
		}
		lat, err1 := strconv.ParseFloat(fields[0], 64)
		long, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			return model.Inbound{}, fmt.Errorf("usage: /loc <lat> <long>")
		}
		return model.LocationEvent(lat, long), nil
	default:
		return model.TextEvent(line), nil
	}
}

func render(w io.Writer, out model.Outbound) {
	fmt.Fprintln(w, out.Body)
	switch out.Kind {
	case model.OutboundButtons:
		for _, b := range out.Buttons {
			fmt.Fprintf(w, "  [%s] %s\n", b.ID, b.Label)
		}
	case model.OutboundList:
		for _, s := range out.Sections {
			fmt.Fprintf(w, "  %s\n", s.Title)
			for _, r := range s.Rows {
				if r.Description != "" {
					fmt.Fprintf(w, "    [%s] %s (%s)\n", r.ID, r.Title, r.Description)
				} else {
					fmt.Fprintf(w, "    [%s] %s\n", r.ID, r.Title)
				}
			}
		}
	}
	if out.Footer != "" {
		fmt.Fprintln(w, out.Footer)
	}
}
