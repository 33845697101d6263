package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/tekir/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)
)

// plainText strips markup from a result snippet and collapses whitespace.
// Backends return descriptions with <strong> highlights and entities.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p") {
			sb.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func printResults(w io.Writer, results []core.SearchResult) {
	fmt.Fprintln(w, headerStyle.Render("Results"))
	if len(results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no results"))
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. %s\n", i+1, titleStyle.Render(plainText(r.Title)))
		display := r.DisplayURL
		if display == "" {
			display = r.URL
		}
		fmt.Fprintf(w, "    %s\n", urlStyle.Render(display))
		if desc := plainText(r.Description); desc != "" {
			fmt.Fprintf(w, "    %s\n", desc)
		}
	}
}

func printSummary(w io.Writer, s *core.Summary) {
	if s == nil {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Wikipedia: ")+titleStyle.Render(s.Title))
	if extract := plainText(s.Extract); extract != "" {
		fmt.Fprintf(w, "  %s\n", extract)
	}
	if s.PageURL != "" {
		fmt.Fprintf(w, "  %s\n", urlStyle.Render(s.PageURL))
	}
}

func printAnswer(w io.Writer, model, answer string) {
	if answer == "" {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Answer")+" "+dimStyle.Render("("+model+")"))
	fmt.Fprintf(w, "  %s\n", strings.TrimSpace(answer))
}

func printError(w io.Writer, source string, err error) {
	msg := err.Error()
	if core.IsRateLimited(err) {
		msg = "rate limited, try again shortly"
	}
	fmt.Fprintln(w, errorStyle.Render(source+": "+msg))
}

func printSession(w io.Writer, sess *core.ChatSession, active bool) {
	marker := "  "
	if active {
		marker = activeStyle.Render("* ")
	}
	lock := ""
	if sess.Locked {
		lock = " locked"
	}
	fmt.Fprintf(w, "%s%s %s %s\n",
		marker,
		dimStyle.Render(fmt.Sprintf("%4d", sess.ID)),
		titleStyle.Render(sess.Title()),
		dimStyle.Render(fmt.Sprintf("[%s%s, %d messages, %s]",
			sess.Model.ID, lock, len(sess.Messages), sess.CreatedAt.Local().Format("2006-01-02 15:04"))),
	)
}
