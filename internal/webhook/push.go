package webhook

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// PushEvent is the subset of a GitHub push payload needed for analysis.
type PushEvent struct {
	Ref        string      `json:"ref"`
	Repository Repository  `json:"repository"`
	HeadCommit *HeadCommit `json:"head_commit"`
}

// Repository identifies the pushed repository.
type Repository struct {
	FullName string `json:"full_name"`
}

// HeadCommit is the newest commit of a push.
type HeadCommit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Author    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// ParsePushEvent decodes a push payload. The head commit is nil for pushes
// that only delete a branch.
func ParsePushEvent(payload []byte) (PushEvent, error) {
	var ev PushEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return PushEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if ev.Repository.FullName == "" {
		return PushEvent{}, fmt.Errorf("%w: missing repository.full_name", ErrMalformedPayload)
	}
	return ev, nil
}

// PythonFiles returns the .py files added or modified by the head commit,
// in payload order and without duplicates.
func (e PushEvent) PythonFiles() []string {
	if e.HeadCommit == nil {
		return nil
	}
	var files []string
	for _, path := range slices.Concat(e.HeadCommit.Added, e.HeadCommit.Modified) {
		if strings.HasSuffix(path, ".py") && !slices.Contains(files, path) {
			files = append(files, path)
		}
	}
	return files
}
