package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ColumnName is the name a column gets in MPS output. Problem column names are free text, so
// index based names are written and mapped back by the reader of the solution.
func ColumnName(j int) string {
	return "c" + strconv.Itoa(j)
}

// RowName is the name a row gets in MPS output.
func RowName(i int) string {
	return "r" + strconv.Itoa(i)
}

const objectiveRow = "obj"

type entry struct {
	row  string
	coef float64
}

// WriteMPS writes p in free MPS format. The objective constant is not written.
func WriteMPS(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)

	name := p.Name
	if name == "" {
		name = "model"
	}
	fmt.Fprintf(bw, "NAME %s\n", sanitize(name))

	bw.WriteString("ROWS\n")
	fmt.Fprintf(bw, " N %s\n", objectiveRow)
	for i, row := range p.Rows {
		var code string
		switch row.Sense {
		case LessEqual:
			code = "L"
		case GreaterEqual:
			code = "G"
		case Equal:
			code = "E"
		default:
			return fmt.Errorf("row %q: unknown sense %v", row.Name, row.Sense)
		}
		fmt.Fprintf(bw, " %s %s\n", code, RowName(i))
	}

	entries := make([][]entry, len(p.Columns))
	for j, col := range p.Columns {
		if col.Cost != 0 {
			entries[j] = append(entries[j], entry{row: objectiveRow, coef: col.Cost})
		}
	}
	for i, row := range p.Rows {
		for _, term := range row.Terms {
			entries[term.Var] = append(entries[term.Var], entry{row: RowName(i), coef: term.Coef})
		}
	}

	bw.WriteString("COLUMNS\n")
	inInteger := false
	for j, col := range p.Columns {
		integer := col.Kind != Continuous
		if integer && !inInteger {
			bw.WriteString("    MARKER MARKER INTORG\n")
			inInteger = true
		} else if !integer && inInteger {
			bw.WriteString("    MARKER MARKER INTEND\n")
			inInteger = false
		}
		if len(entries[j]) == 0 {
			fmt.Fprintf(bw, "    %s %s 0\n", ColumnName(j), objectiveRow)
			continue
		}
		for _, e := range entries[j] {
			fmt.Fprintf(bw, "    %s %s %s\n", ColumnName(j), e.row, formatFloat(e.coef))
		}
	}
	if inInteger {
		bw.WriteString("    MARKER MARKER INTEND\n")
	}

	bw.WriteString("RHS\n")
	for i, row := range p.Rows {
		if row.RHS != 0 {
			fmt.Fprintf(bw, "    RHS %s %s\n", RowName(i), formatFloat(row.RHS))
		}
	}

	bw.WriteString("BOUNDS\n")
	for j, col := range p.Columns {
		writeBounds(bw, ColumnName(j), col)
	}
	bw.WriteString("ENDATA\n")

	return bw.Flush()
}

func writeBounds(w *bufio.Writer, name string, col Column) {
	lowerInf := math.IsInf(col.Lower, -1)
	upperInf := math.IsInf(col.Upper, 1)

	switch {
	case col.Kind == Binary && col.Lower == 0 && col.Upper == 1:
		fmt.Fprintf(w, " BV BND %s\n", name)
	case lowerInf && upperInf:
		fmt.Fprintf(w, " FR BND %s\n", name)
	case col.Lower == col.Upper:
		fmt.Fprintf(w, " FX BND %s %s\n", name, formatFloat(col.Lower))
	default:
		if lowerInf {
			fmt.Fprintf(w, " MI BND %s\n", name)
		} else if col.Lower != 0 || col.Kind != Continuous {
			fmt.Fprintf(w, " LO BND %s %s\n", name, formatFloat(col.Lower))
		}
		if !upperInf {
			fmt.Fprintf(w, " UP BND %s %s\n", name, formatFloat(col.Upper))
		} else if col.Kind != Continuous {
			fmt.Fprintf(w, " PL BND %s\n", name)
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == ' ' || r == '\t' {
			out[i] = '_'
		}
	}
	return string(out)
}
