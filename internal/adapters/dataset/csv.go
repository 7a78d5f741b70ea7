package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Header is the export column order.
var Header = []string{"swing_index", "sample_index", "shot_label", "ax", "ay", "az", "gx", "gy", "gz"}

var motionColumns = []string{"ax", "ay", "az", "gx", "gy", "gz"}

// aliases maps alternative column names from phone recordings.
var aliases = map[string]string{
	"acc_x":  "ax",
	"acc_y":  "ay",
	"acc_z":  "az",
	"gyro_x": "gx",
	"gyro_y": "gy",
	"gyro_z": "gz",
}

// Swing is one imported window with its label.
type Swing struct {
	Index  int
	Label  string
	Window model.SwingWindow
}

// Export writes windows as CSV rows under label.
func Export(w io.Writer, windows []model.SwingWindow, label string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(Header))
	for si, win := range windows {
		for i, s := range win {
			row[0] = strconv.Itoa(si)
			row[1] = strconv.Itoa(i)
			row[2] = label
			row[3] = formatFloat(s.AX)
			row[4] = formatFloat(s.AY)
			row[5] = formatFloat(s.AZ)
			row[6] = formatFloat(s.GX)
			row[7] = formatFloat(s.GY)
			row[8] = formatFloat(s.GZ)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write swing %d sample %d: %w", si, i, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Import reads CSV produced by Export or a raw recording with the six
// motion columns. Rows are grouped by swing_index when present, otherwise
// the file is one swing. Sample times are reconstructed at rateHz.
func Import(r io.Reader, rateHz float64) ([]Swing, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		cols[name] = i
	}
	for _, c := range motionColumns {
		if _, ok := cols[c]; !ok {
			return nil, &model.MalformedInputError{Field: c, Err: errors.New("missing column")}
		}
	}

	dt := 0.0
	if rateHz > 0 {
		dt = 1 / rateHz
	}

	swings := map[int]*Swing{}
	var order []int
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		idx := 0
		if i, ok := cols["swing_index"]; ok {
			if idx, err = intField(rec, i, "swing_index", row); err != nil {
				return nil, err
			}
		}
		sw, ok := swings[idx]
		if !ok {
			sw = &Swing{Index: idx}
			swings[idx] = sw
			order = append(order, idx)
		}
		if i, ok := cols["shot_label"]; ok && i < len(rec) && sw.Label == "" {
			sw.Label = strings.TrimSpace(rec[i])
		}

		var v [6]float64
		for k, c := range motionColumns {
			if v[k], err = floatField(rec, cols[c], c, row); err != nil {
				return nil, err
			}
		}
		sw.Window = append(sw.Window, model.MotionSample{
			AX: v[0], AY: v[1], AZ: v[2], GX: v[3], GY: v[4], GZ: v[5],
			T: float64(len(sw.Window)) * dt,
		})
	}

	sort.Ints(order)
	out := make([]Swing, 0, len(order))
	for _, idx := range order {
		out = append(out, *swings[idx])
	}
	return out, nil
}

func rawField(rec []string, i int, name string, row int) (string, error) {
	if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
		return "", &model.MalformedInputError{Field: name, Row: row, Err: errors.New("missing value")}
	}
	return strings.TrimSpace(rec[i]), nil
}

func floatField(rec []string, i int, name string, row int) (float64, error) {
	s, err := rawField(rec, i, name, row)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &model.MalformedInputError{Field: name, Row: row, Err: err}
	}
	return v, nil
}

func intField(rec []string, i int, name string, row int) (int, error) {
	s, err := rawField(rec, i, name, row)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &model.MalformedInputError{Field: name, Row: row, Err: err}
	}
	return v, nil
}
