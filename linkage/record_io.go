package linkage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
)

var csvHeader = []string{
	"id", "given_name", "family_name",
	"birth_date_year", "birth_date_month", "birth_date_month_day",
	"primary_email", "primary_phone", "note",
}

// ensureID gives records without an id a random one.
func ensureID(r *Record) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
}

// Pair is two records to compare. It decodes from [a, b] or {"a": a, "b": b}.
type Pair struct {
	A *Record `json:"a" validate:"required"`
	B *Record `json:"b" validate:"required"`
}

func (p *Pair) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []Record
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("expected a pair of records, got %d", len(pair))
		}
		p.A, p.B = &pair[0], &pair[1]
		return nil
	}
	type plain Pair
	return json.Unmarshal(data, (*plain)(p))
}

// WriteRecordsJSONL writes records as JSON lines. Absent fields are written as null.
func WriteRecordsJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecordsJSONL reads records from a JSON lines stream.
func ReadRecordsJSONL(r io.Reader, fn func(Record) error) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		ensureID(&rec)
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// WriteRecordsCSV writes a header row and one row per record.
// Absent and empty fields are both written as empty cells.
func WriteRecordsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	row := make([]string, len(csvHeader))
	for _, r := range records {
		row[0] = r.ID
		row[1] = r.GivenName.OrElse("")
		row[2] = r.FamilyName.OrElse("")
		row[3] = intCell(r.BirthYear)
		row[4] = intCell(r.BirthMonth)
		row[5] = intCell(r.BirthDay)
		row[6] = r.Email.OrElse("")
		row[7] = r.Phone.OrElse("")
		row[8] = r.Note.OrElse("")
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecordsCSV reads records written by WriteRecordsCSV. Columns are matched
// by header name; an empty cell is an absent field.
func ReadRecordsCSV(r io.Reader, fn func(Record) error) error {
	cr := csv.NewReader(bufio.NewReader(r))
	header, err := cr.Read()
	if err != nil {
		return err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	get := func(rec []string, key string) string {
		if p, ok := idx[key]; ok && p < len(rec) {
			return rec[p]
		}
		return ""
	}
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line++
		out := Record{
			ID:         get(rec, "id"),
			GivenName:  textCell(get(rec, "given_name")),
			FamilyName: textCell(get(rec, "family_name")),
			Email:      textCell(get(rec, "primary_email")),
			Phone:      textCell(get(rec, "primary_phone")),
			Note:       textCell(get(rec, "note")),
		}
		for _, col := range []struct {
			name string
			dst  *Opt[int]
		}{
			{"birth_date_year", &out.BirthYear},
			{"birth_date_month", &out.BirthMonth},
			{"birth_date_month_day", &out.BirthDay},
		} {
			v, err := parseIntCell(get(rec, col.name))
			if err != nil {
				return fmt.Errorf("csv line %d, %s: %w", line, col.name, err)
			}
			*col.dst = v
		}
		ensureID(&out)
		if err := fn(out); err != nil {
			return err
		}
	}
}

func intCell(o Opt[int]) string {
	if v, ok := o.Get(); ok {
		return strconv.Itoa(v)
	}
	return ""
}

func textCell(s string) Opt[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

func parseIntCell(s string) (Opt[int], error) {
	if s == "" {
		return None[int](), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return None[int](), err
	}
	return Some(v), nil
}
