// Package project persists named diagrams as local JSON documents, one file
// per project under a data directory.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrInvalidID = errors.New("invalid project id")
)

// Project is a named diagram with timestamps.
type Project struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Diagram   *diagram.Diagram `json:"diagram"`
}

// Store is the persistence collaborator of the editor. Implementations own
// where project documents live.
type Store interface {
	Create(ctx context.Context, name string) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
}

// FileStore keeps one JSON file per project under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path validates the id before joining it, so a crafted id cannot escape the
// data directory.
func (s *FileStore) path(id string) (string, error) {
	if err := typeid.Validate(id, typeid.PrefixProject); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) Create(_ context.Context, name string) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ID:        typeid.NewProjectID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Diagram:   diagram.New(),
	}
	if err := s.write(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Project, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	if p.Diagram == nil {
		p.Diagram = diagram.New()
	}
	// Project files can be hand-edited; normalize like any other import.
	p.Diagram.Normalize()
	return &p, nil
}

func (s *FileStore) List(ctx context.Context) ([]Project, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var projects []Project
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// A stray or corrupt file should not break listing.
			continue
		}
		projects = append(projects, *p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (s *FileStore) Save(_ context.Context, p *Project) error {
	p.UpdatedAt = time.Now().UTC()
	return s.write(p)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// write marshals to a temp file and renames into place so a crash never
// leaves a half-written document.
func (s *FileStore) write(p *Project) error {
	path, err := s.path(p.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+p.ID+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace project file: %w", err)
	}
	return nil
}
