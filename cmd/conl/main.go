// Command conl checks, formats and inspects conl documents.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/KimNorgaard/go-conl"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "conl",
		Usage: "check, format and inspect conl documents",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "parse files and report errors",
				ArgsUsage: "file...",
				Action:    checkAction,
			},
			{
				Name:      "fmt",
				Usage:     "rewrite files in canonical form",
				ArgsUsage: "file...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "write result to source file instead of stdout",
					},
				},
				Action: fmtAction,
			},
			{
				Name:      "json",
				Usage:     "print a document as JSON, keys in document order",
				ArgsUsage: "file",
				Action:    jsonAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: conl check file...", 2)
	}
	failed := false
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		if _, err := conl.Parse(data); err != nil {
			fmt.Fprintln(os.Stderr, located(path, err))
			failed = true
		}
	}
	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

func fmtAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: conl fmt [-w] file...", 2)
	}
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		tbl, err := conl.Parse(data)
		if err != nil {
			return cli.Exit(located(path, err), 1)
		}
		out := conl.Serialize(tbl)
		if c.Bool("write") {
			if bytes.Equal(out, data) {
				continue
			}
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			continue
		}
		if _, err := os.Stdout.Write(out); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	return nil
}

func jsonAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: conl json file", 2)
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	tbl, err := conl.Parse(data)
	if err != nil {
		return cli.Exit(located(path, err), 1)
	}

	var compact bytes.Buffer
	writeJSON(&compact, tbl)
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	out.WriteByte('\n')
	if _, err := os.Stdout.Write(out.Bytes()); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// located prefixes a parse error with its file position, gofmt style.
func located(path string, err error) string {
	var pe *conl.ParseError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s:%d: %s", path, pe.Line, pe.Message)
	}
	return fmt.Sprintf("%s: %v", path, err)
}

// writeJSON emits a value tree as compact JSON. Object keys keep document
// order, which encoding/json maps would not.
func writeJSON(buf *bytes.Buffer, v conl.Value) {
	switch n := v.(type) {
	case conl.Scalar:
		writeJSONString(buf, string(n))
	case conl.Multiline:
		writeJSONString(buf, n.Text)
	case conl.Array:
		buf.WriteByte('[')
		for i, s := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, s)
		}
		buf.WriteByte(']')
	case conl.TableArray:
		buf.WriteByte('[')
		for i, t := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, t)
		}
		buf.WriteByte(']')
	case *conl.Table:
		buf.WriteByte('{')
		first := true
		for key, val := range n.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONString(buf, key)
			buf.WriteByte(':')
			writeJSON(buf, val)
		}
		buf.WriteByte('}')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
