package host

import (
	"bufio"
	"io"
	"strings"
)

// DesktopEntry is the [Desktop Entry] group of a freedesktop .desktop file.
type DesktopEntry struct {
	Type      string
	Name      string
	Exec      string
	Icon      string
	Path      string
	URL       string
	NoDisplay bool
	Hidden    bool
}

// ParseDesktopEntry reads the keys of the [Desktop Entry] group. Localized
// keys (Name[ja]) are ignored in favor of the plain ones.
func ParseDesktopEntry(r io.Reader) (DesktopEntry, error) {
	var e DesktopEntry
	in := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			in = line == "[Desktop Entry]"
			continue
		}
		if !in {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "Type":
			e.Type = value
		case "Name":
			e.Name = value
		case "Exec":
			e.Exec = value
		case "Icon":
			e.Icon = value
		case "Path":
			e.Path = value
		case "URL":
			e.URL = value
		case "NoDisplay":
			e.NoDisplay = value == "true"
		case "Hidden":
			e.Hidden = value == "true"
		}
	}
	return e, sc.Err()
}

// SplitExec splits an Exec value into program and arguments, honoring double
// quotes and dropping field codes such as %f and %U.
func SplitExec(exec string) (string, []string) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		hasTok  bool
	)
	flush := func() {
		if hasTok {
			args = append(args, cur.String())
		}
		cur.Reset()
		hasTok = false
	}
	for _, r := range exec {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
			hasTok = true
		case (r == ' ' || r == '\t') && !quoted:
			flush()
		default:
			cur.WriteRune(r)
			hasTok = true
		}
	}
	flush()

	out := args[:0]
	for _, a := range args {
		if len(a) == 2 && a[0] == '%' {
			if a[1] == '%' {
				out = append(out, "%")
			}
			continue
		}
		out = append(out, strings.ReplaceAll(a, "%%", "%"))
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0], out[1:]
}
