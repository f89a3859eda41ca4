package mdp

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/samuelfneumann/craam/internal/intutils"
)

// mdpHeader and mdpoHeader are the external CSV schemas.
var mdpHeader = []string{"idstatefrom", "idaction", "idstateto", "probability", "reward"}
var mdpoHeader = []string{"idstatefrom", "idaction", "idoutcome", "idstateto", "probability", "reward"}

type mdpRow struct {
	from, action, to int
	probability      float64
	reward           float64
}

type mdpoRow struct {
	from, action, outcome, to int
	probability               float64
	reward                    float64
}

// FromCSV parses an MDP CSV (header idstatefrom,idaction,idstateto,
// probability,reward). Duplicate (from,action,to) rows are
// aggregated (probabilities summed, rewards probability-weighted
// averaged, matching Transition.AddSample). Rows with probability <= 0
// are skipped unless force is true.
func FromCSV(r io.Reader, force bool) (*MDP, error) {
	rows, maxState, err := readMDPRows(r)
	if err != nil {
		return nil, err
	}

	m := NewMDP(maxState + 1)
	for _, row := range rows {
		if row.probability <= 0 && !force {
			continue
		}
		if err := m.AddSample(row.from, row.action, row.to, row.probability, row.reward, force); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func readMDPRows(r io.Reader) ([]mdpRow, int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("mdp: reading CSV header: %w", err)
	}
	if !equalHeader(header, mdpHeader) {
		return nil, 0, newArgumentError("mdp CSV header %v does not match expected %v", header, mdpHeader)
	}

	var rows []mdpRow
	maxState := -1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("mdp: reading CSV row: %w", err)
		}
		row, err := parseMDPRow(record)
		if err != nil {
			return nil, 0, err
		}
		maxState = intutils.Max(maxState, row.from, row.to)
		rows = append(rows, row)
	}
	return rows, maxState, nil
}

func parseMDPRow(record []string) (mdpRow, error) {
	if len(record) != 5 {
		return mdpRow{}, newArgumentError("mdp CSV row has %d fields, want 5: %v", len(record), record)
	}
	from, err := strconv.Atoi(record[0])
	if err != nil {
		return mdpRow{}, newArgumentError("mdp CSV: bad idstatefrom %q: %v", record[0], err)
	}
	action, err := strconv.Atoi(record[1])
	if err != nil {
		return mdpRow{}, newArgumentError("mdp CSV: bad idaction %q: %v", record[1], err)
	}
	to, err := strconv.Atoi(record[2])
	if err != nil {
		return mdpRow{}, newArgumentError("mdp CSV: bad idstateto %q: %v", record[2], err)
	}
	prob, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return mdpRow{}, newArgumentError("mdp CSV: bad probability %q: %v", record[3], err)
	}
	reward, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return mdpRow{}, newArgumentError("mdp CSV: bad reward %q: %v", record[4], err)
	}
	return mdpRow{from: from, action: action, to: to, probability: prob, reward: reward}, nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ToCSV writes m as an MDP CSV. Rows with zero probability are
// omitted by default (a lossy export); pass force=true to include
// them instead, so that re-importing with force=true round-trips
// faithfully even for actions whose only sample was added with a
// forced zero probability.
func (m *MDP) ToCSV(w io.Writer, force bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mdpHeader); err != nil {
		return err
	}
	for sid := range m.states {
		st := &m.states[sid]
		for aid := range st.actions {
			a := &st.actions[aid]
			if !a.Valid() {
				continue
			}
			t := &a.transition
			for k, idx := range t.indices {
				p := t.probabilities[k]
				if p <= 0 && !force {
					continue
				}
				record := []string{
					strconv.Itoa(sid),
					strconv.Itoa(aid),
					strconv.Itoa(idx),
					strconv.FormatFloat(p, 'g', -1, 64),
					strconv.FormatFloat(t.rewards[k], 'g', -1, 64),
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// FromCSVO parses an MDPO CSV (header idstatefrom,idaction,idoutcome,
// idstateto,probability,reward). Outcome ids for a given
// (state,action) are required to be contiguous 0-based integers;
// AddSample grows each action's outcome slice to fit, and
// intutils.SearchSorted is used to verify contiguity once all rows for
// an action have been seen.
func FromCSVO(r io.Reader, force bool) (*MDPO, error) {
	rows, maxState, err := readMDPORows(r)
	if err != nil {
		return nil, err
	}

	m := NewMDPO(maxState + 1)
	seen := map[[2]int][]int{} // (state,action) -> outcome ids seen
	for _, row := range rows {
		if row.probability <= 0 && !force {
			continue
		}
		if err := m.AddSample(row.from, row.action, row.outcome, row.to, row.probability, row.reward, force); err != nil {
			return nil, err
		}
		key := [2]int{row.from, row.action}
		if intutils.SearchSorted(seen[key], row.outcome) < 0 {
			seen[key] = insertSortedUnique(seen[key], row.outcome)
		}
	}

	for key, outcomes := range seen {
		for want := 0; want < len(outcomes); want++ {
			if intutils.SearchSorted(outcomes, want) < 0 {
				return nil, newModelError(key[0], key[1], want,
					"outcome ids must be contiguous starting at 0, missing outcome %d", want)
			}
		}
	}
	return m, nil
}

func insertSortedUnique(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func readMDPORows(r io.Reader) ([]mdpoRow, int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("mdpo: reading CSV header: %w", err)
	}
	if !equalHeader(header, mdpoHeader) {
		return nil, 0, newArgumentError("mdpo CSV header %v does not match expected %v", header, mdpoHeader)
	}

	var rows []mdpoRow
	maxState := -1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("mdpo: reading CSV row: %w", err)
		}
		row, err := parseMDPORow(record)
		if err != nil {
			return nil, 0, err
		}
		maxState = intutils.Max(maxState, row.from, row.to)
		rows = append(rows, row)
	}
	return rows, maxState, nil
}

func parseMDPORow(record []string) (mdpoRow, error) {
	if len(record) != 6 {
		return mdpoRow{}, newArgumentError("mdpo CSV row has %d fields, want 6: %v", len(record), record)
	}
	from, err := strconv.Atoi(record[0])
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad idstatefrom %q: %v", record[0], err)
	}
	action, err := strconv.Atoi(record[1])
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad idaction %q: %v", record[1], err)
	}
	outcome, err := strconv.Atoi(record[2])
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad idoutcome %q: %v", record[2], err)
	}
	to, err := strconv.Atoi(record[3])
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad idstateto %q: %v", record[3], err)
	}
	prob, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad probability %q: %v", record[4], err)
	}
	reward, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return mdpoRow{}, newArgumentError("mdpo CSV: bad reward %q: %v", record[5], err)
	}
	return mdpoRow{from: from, action: action, outcome: outcome, to: to, probability: prob, reward: reward}, nil
}

// ToCSV writes m as an MDPO CSV, with the same
// zero-probability omission/force semantics as MDP.ToCSV.
func (m *MDPO) ToCSV(w io.Writer, force bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mdpoHeader); err != nil {
		return err
	}
	for sid := range m.states {
		st := &m.states[sid]
		for aid := range st.actions {
			a := &st.actions[aid]
			if !a.Valid() {
				continue
			}
			for oid := range a.outcomes {
				t := &a.outcomes[oid]
				for k, idx := range t.indices {
					p := t.probabilities[k]
					if p <= 0 && !force {
						continue
					}
					record := []string{
						strconv.Itoa(sid),
						strconv.Itoa(aid),
						strconv.Itoa(oid),
						strconv.Itoa(idx),
						strconv.FormatFloat(p, 'g', -1, 64),
						strconv.FormatFloat(t.rewards[k], 'g', -1, 64),
					}
					if err := cw.Write(record); err != nil {
						return err
					}
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
