package persistence

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/lkarlslund/tagcamps/modules/settings"
)

const (
	GroupsBucket = "groups"
	RunsBucket   = "runs"
)

// Group is a named set of camp lists that can be used as seeds
type Group struct {
	Name    string     `json:"name"`
	Camps   [][]string `json:"camps"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
}

func (g Group) ID() string {
	return g.Name
}

// Run records one propagation for later reference
type Run struct {
	RunID   string           `json:"id"`
	Command string           `json:"command"`
	Graph   string           `json:"graph"`
	Input   string           `json:"input"`
	Options settings.Options `json:"options"`
	Camps   [][]string       `json:"camps"`
	// Candidates found per camp
	Candidates []int     `json:"candidates"`
	Created    time.Time `json:"created"`
}

func (r Run) ID() string {
	return r.RunID
}

func NewRun(command string) Run {
	id, _ := uuid.NewV7()
	return Run{
		RunID:   id.String(),
		Command: command,
		Created: time.Now(),
	}
}
