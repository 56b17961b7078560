package coach

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

const uiStateFile = "ui_state.json"

type uiPrefs struct {
	LastPlanID string `json:"last_plan_id"`
}

// uiModelPersistence keeps UI choices in the data dir between runs.
// Read and write failures are logged and otherwise ignored.
type uiModelPersistence struct {
	path   string
	prefs  uiPrefs
	logger *log.Logger
}

func newUIModelPersistence(dataDir string, logger *log.Logger) *uiModelPersistence {
	if dataDir == "" {
		dataDir = "."
	}
	p := &uiModelPersistence{path: filepath.Join(dataDir, uiStateFile), logger: logger}
	p.prefs = p.read()
	return p
}

func (p *uiModelPersistence) getLastPlan() string {
	return p.prefs.LastPlanID
}

func (p *uiModelPersistence) setLastPlan(planID string) {
	if p.prefs.LastPlanID == planID {
		return
	}
	p.prefs.LastPlanID = planID
	if err := p.write(); err != nil {
		p.logger.Printf("UIModelPersistence: saving %s: %v", p.path, err)
	}
}

func (p *uiModelPersistence) read() uiPrefs {
	var prefs uiPrefs
	raw, err := os.ReadFile(p.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return prefs
	case err != nil:
		p.logger.Printf("UIModelPersistence: reading %s: %v", p.path, err)
		return prefs
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		p.logger.Printf("UIModelPersistence: ignoring unreadable %s: %v", p.path, err)
		return uiPrefs{}
	}
	return prefs
}

// write replaces the file atomically
func (p *uiModelPersistence) write() error {
	raw, err := json.MarshalIndent(p.prefs, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, uiStateFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}
