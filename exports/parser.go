package exports

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// nameMarker starts a labelled export group. exportfs ignores the line when
// it is written as a comment ("# Name: backups").
const nameMarker = "Name:"

// exportLine matches "<path> <client-spec>(<options>)".
var exportLine = regexp.MustCompile(`^(\S+)\s+([^\s(]+)\(([^()]*)\)$`)

type ReadOptions struct {
	// IncludeUnnamed also returns plain export lines without a preceding
	// name marker. Their Name is empty.
	IncludeUnnamed bool
}

// ReadExports parses the exports file at path.
func ReadExports(path string, opts ReadOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError(ErrIO, err, "open exports file %s", path)
	}
	defer func() { _ = f.Close() }()

	records, err := Parse(f, opts)
	if err != nil {
		return nil, NewError(ErrIO, err, "read exports file %s", path)
	}
	log.Debug().Str("file", path).Int("count", len(records)).Msg("exports read")
	return records, nil
}

// Parse reads export groups from r in file order:
//
//	# Name: backups
//	/srv/backups 192.168.1.0/24(rw,sync,no_subtree_check)
//
// A name marker whose next line is not an export line is skipped with a
// warning and parsing continues with that next line.
func Parse(r io.Reader, opts ReadOptions) ([]Record, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	records := []Record{}
	for i := 0; i < len(lines); i++ {
		name, ok := parseNameLine(lines[i])
		if !ok {
			if opts.IncludeUnnamed {
				if rec, ok := parseExportLine(lines[i]); ok {
					records = append(records, rec)
				}
			}
			continue
		}

		if i+1 >= len(lines) {
			log.Warn().Int("line", i+1).Str("name", name).Msg("name marker without export line, skipping")
			continue
		}
		rec, ok := parseExportLine(lines[i+1])
		if !ok {
			log.Warn().Int("line", i+2).Str("name", name).Str("text", lines[i+1]).Msg("malformed export line, skipping group")
			continue
		}
		rec.Name = name
		records = append(records, rec)
		i++
	}
	return records, nil
}

func parseNameLine(line string) (string, bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimLeft(s, "#"))
	label, ok := strings.CutPrefix(s, nameMarker)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(label), true
}

func parseExportLine(line string) (Record, bool) {
	m := exportLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Record{}, false
	}
	return Record{Path: m[1], ClientSpec: m[2], Options: m[3]}, true
}
