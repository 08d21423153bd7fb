package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"echo-transcript/internal/session"
)

func sessionsMain(root rootArgs, args []string) {
	_ = root
	store, err := session.NewDefault()
	if err != nil {
		log.Fatalf("transcript store unavailable: %v", err)
	}
	if err := runSessions(store, args, os.Stdout); err != nil {
		log.Fatalf("sessions: %v", err)
	}
}

// runSessions 实现 `sessions [list]` 与 `sessions show <id>`。
func runSessions(store *session.Store, args []string, out io.Writer) error {
	if len(args) > 0 && args[0] == "show" {
		return showSession(store, args[1:], out)
	}
	if len(args) > 0 && args[0] == "list" {
		args = args[1:]
	}
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var limit int
	fs.IntVar(&limit, "n", 20, "Number of transcripts to list (0 lists all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no saved transcripts")
		return nil
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tSOURCE\tSEGMENTS\tPREVIEW")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			rec.ID,
			rec.Updated.Local().Format("2006-01-02 15:04"),
			rec.Source,
			len(rec.Segments),
			preview(rec.Text(" "), 40),
		)
	}
	return tw.Flush()
}

func showSession(store *session.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sessions show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var sep string
	fs.StringVar(&sep, "sep", "\n", "Separator printed between segments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: sessions show <id|last>")
	}
	rec, err := loadRecord(store, fs.Arg(0))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, rec.Text(sep))
	return err
}

func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
