package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"chainrack/internal/model"
)

const historyFileName = "history.json"

// historyFile is the on-disk shape of the undo/redo stacks. Persisting
// them lets `chainrack undo` work across CLI invocations.
type historyFile struct {
	Past   []model.Snapshot `json:"past"`
	Future []model.Snapshot `json:"future"`
}

func (s Store) historyPath() string {
	return filepath.Join(s.Dir, historyFileName)
}

// LoadHistory reads the persisted stacks; a missing file means empty
// history.
func (s Store) LoadHistory() (past, future []*model.Chain, err error) {
	b, err := os.ReadFile(s.historyPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	var hf historyFile
	if err := json.Unmarshal(b, &hf); err != nil {
		return nil, nil, err
	}
	for _, snap := range hf.Past {
		past = append(past, &model.Chain{Nodes: snap.Nodes})
	}
	for _, snap := range hf.Future {
		future = append(future, &model.Chain{Nodes: snap.Nodes})
	}
	return past, future, nil
}

func (s Store) SaveHistory(past, future []*model.Chain) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	hf := historyFile{}
	for _, c := range past {
		hf.Past = append(hf.Past, model.Snapshot{Nodes: c.Nodes})
	}
	for _, c := range future {
		hf.Future = append(hf.Future, model.Snapshot{Nodes: c.Nodes})
	}
	b, err := json.Marshal(hf)
	if err != nil {
		return err
	}
	tmp := s.historyPath() + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.historyPath())
}
