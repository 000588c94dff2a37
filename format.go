package docdiff

import (
	"bytes"
	"fmt"
	"io"
)

const (
	colorNeutral = "\x1b[37m"
	colorInsert  = "\x1b[32m"
	colorDelete  = "\x1b[31m"
	colorUpdate  = "\x1b[34m"
	colorClose   = "\x1b[0m"
)

// FormatPrettyString is a convenice wrapper that outputs to a string instead of
// an io.Writer
func FormatPrettyString(diffs Differences, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, diffs, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report to w, one line per difference. if
// colorTTY is true it will add
// red "-" for things the candidate lacks
// green "+" for things only the candidate has
// blue "~" for changed values
func FormatPretty(w io.Writer, diffs Differences, colorTTY bool) error {
	for _, d := range diffs {
		sym, color := symbol(d)
		if !colorTTY {
			color = ""
		}
		closer := ""
		if color != "" {
			closer = colorClose
		}

		var err error
		switch d.Kind {
		case KindTagMissing:
			_, err = fmt.Fprintf(w, "%s%s %s: %s%s\n", color, sym, d.Path, d.Reference, closer)
		case KindExtraTag:
			_, err = fmt.Fprintf(w, "%s%s %s: %s%s\n", color, sym, d.Path, d.Candidate, closer)
		default:
			_, err = fmt.Fprintf(w, "%s%s %s %s: %q -> %q%s\n", color, sym, d.Path, d.Label, d.Reference, d.Candidate, closer)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func symbol(d Difference) (string, string) {
	switch d.Kind {
	case KindTagMissing, KindAttrMissing:
		return "-", colorDelete
	case KindExtraTag:
		return "+", colorInsert
	case KindMissingKey:
		if d.Reference == Absent {
			return "+", colorInsert
		}
		return "-", colorDelete
	default:
		return "~", colorUpdate
	}
}

// FormatPrettyStats prints a string of stats info
func FormatPrettyStats(diffStat *Stats) string {
	return formatStats(diffStat, false)
}

// FormatPrettyStatsColor prints a string of stats info with ANSI colors
func FormatPrettyStatsColor(diffStat *Stats) string {
	return formatStats(diffStat, true)
}

func formatStats(ds *Stats, color bool) string {
	var (
		neutralColor, insertColor, deleteColor, updateColor, closeColor string
	)

	if ds == nil {
		return "<nil>"
	}

	if color {
		neutralColor = colorNeutral
		insertColor = colorInsert
		deleteColor = colorDelete
		updateColor = colorUpdate
		closeColor = colorClose
	}

	buf := &bytes.Buffer{}

	elsColor := insertColor
	change := ds.NodeChange()
	elementsWord := "elements"
	sign := "+"
	if change < 0 {
		elsColor = deleteColor
		sign = ""
	} else if change == 0 {
		elsColor = neutralColor
		sign = ""
	}
	if change == 1 || change == -1 {
		elementsWord = "element"
	}

	buf.WriteString(fmt.Sprintf("%s%s%d %s%s%s%s.",
		elsColor, sign, change, closeColor,
		neutralColor, elementsWord, closeColor,
	))

	total := ds.Total()
	diffsWord := "differences"
	if total == 1 {
		diffsWord = "difference"
	}
	buf.WriteString(fmt.Sprintf(" %d %s.", total, diffsWord))

	for _, k := range Kinds {
		n := ds.Count(k)
		if n == 0 {
			continue
		}
		c := updateColor
		switch k {
		case KindTagMissing, KindAttrMissing, KindMissingKey:
			c = deleteColor
		case KindExtraTag:
			c = insertColor
		}
		buf.WriteString(fmt.Sprintf(" %s%s: %d.%s", c, k, n, closeColor))
	}

	buf.WriteRune('\n')

	return buf.String()
}
