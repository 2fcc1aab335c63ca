package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
)

func commandNames() []string {
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateQuery(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	return nil
}

// applyQuery evaluates a JMESPath expression against the summary object.
// An empty expression returns obj unchanged.
func applyQuery(expr string, obj map[string]any) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return obj, nil
	}
	out, err := jmespath.Search(expr, obj)
	if err != nil {
		return nil, fmt.Errorf("evaluate query: %w", err)
	}
	return out, nil
}

func printSummary(w io.Writer, obj map[string]any, query string) error {
	out, err := applyQuery(query, obj)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

func printMigrationStatus(w io.Writer, versions, applied []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "VERSION\tSTATUS"); err != nil {
		return err
	}
	for _, v := range versions {
		status := "pending"
		if slices.Contains(applied, v) {
			status = "applied"
		}
		if err := writef(tw, "%s\t%s\n", v, status); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func confirmAction(yes bool, prompt string) error {
	if yes {
		return nil
	}
	return confirmFrom(os.Stdin, os.Stdout, prompt)
}

func confirmFrom(in io.Reader, out io.Writer, prompt string) error {
	if err := writeln(out, prompt); err != nil {
		return fmt.Errorf("print confirmation message: %w", err)
	}
	if err := write(out, "Continue? [y/N]: "); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
