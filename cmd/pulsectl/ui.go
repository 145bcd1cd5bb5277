package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"pulse_ledger/internal/domain"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func renderStats(n domain.Network, s domain.GlobalStats) {
	accent.Printf("%s ledger\n", n)
	fmt.Printf("  users           %d\n", s.TotalUsers)
	fmt.Printf("  checkins        %d\n", s.TotalCheckins)
	fmt.Printf("  points awarded  %d\n", s.TotalPointsDistributed)
}

func renderGate(n domain.Network, g domain.GateState) {
	accent.Printf("%s gate\n", n)
	fmt.Printf("  owner   %s\n", g.Owner)
	if g.Paused {
		fmt.Printf("  state   %s\n", danger.Sprint("PAUSED"))
	} else {
		fmt.Printf("  state   %s\n", success.Sprint("active"))
	}
}

// renderProfile prints the profile fields in key order; the key style
// differs between networks.
func renderProfile(p map[string]any, done []domain.QuestID) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	accent.Println("profile")
	for _, k := range keys {
		v := p[k]
		if v == nil {
			v = "-"
		}
		fmt.Printf("  %-18s %v\n", k, v)
	}

	names := make([]string, 0, len(done))
	for _, id := range done {
		names = append(names, id.String())
	}
	if len(names) == 0 {
		neutral.Println("  no quests completed today")
		return
	}
	fmt.Printf("  %-18s %s\n", "today", success.Sprint(strings.Join(names, ", ")))
}

func renderEvents(events []domain.Event) {
	if len(events) == 0 {
		neutral.Println("no events")
		return
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  day %d  %-20s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Day, e.Kind)
		if e.Points > 0 {
			line += success.Sprintf(" +%d", e.Points)
		}
		if len(e.Data) > 0 {
			line += fmt.Sprintf("  %v", e.Data)
		}
		fmt.Println(line)
	}
}

func renderReceipt(name string, rec map[string]any) {
	success.Printf("%s ok: +%v points (day %v)\n", name, rec["points"], rec["day"])
	if idx, ok := rec["message_index"]; ok {
		neutral.Printf("message index %v\n", idx)
	}
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Fprintln(os.Stderr, msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func confirm(question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return false, err
	}
	text = strings.ToLower(strings.TrimSpace(text))
	return text == "y" || text == "yes", nil
}
