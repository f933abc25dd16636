package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"qaplan-backend/internal/sheetplan"
)

// MemoryStore is an in-memory Store used in dev mode and tests. It models
// enough of a spreadsheet (per-tab sparse cells, row insertion/deletion,
// visibility) to verify mutation plans end to end.
type MemoryStore struct {
	mu           sync.Mutex
	templateTabs []string
	docs         map[string]*memDoc

	// RejectValue, when non-empty, makes BatchApply fail on any writeCell op
	// carrying that value. Tests use it to simulate a destination rejecting
	// one section's content.
	RejectValue string
}

type memDoc struct {
	name     string
	tabOrder []string
	tabs     map[string]*memTab
}

type memTab struct {
	cells  map[int]map[string]string
	hidden bool
}

// NewMemoryStore constructs a store whose template carries the given tabs.
func NewMemoryStore(templateTabs []string) *MemoryStore {
	return &MemoryStore{
		templateTabs: append([]string(nil), templateTabs...),
		docs:         make(map[string]*memDoc),
	}
}

func (s *MemoryStore) CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &memDoc{
		name: name,
		tabs: make(map[string]*memTab, len(s.templateTabs)),
	}
	for _, tab := range s.templateTabs {
		doc.tabOrder = append(doc.tabOrder, tab)
		doc.tabs[tab] = &memTab{cells: make(map[int]map[string]string)}
	}

	id := uuid.NewString()
	s.docs[id] = doc
	return id, nil
}

func (s *MemoryStore) FindExisting(ctx context.Context, issueKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if strings.Contains(doc.name, issueKey) {
			return id, nil
		}
	}
	return "", nil
}

func (s *MemoryStore) BatchApply(ctx context.Context, documentID string, ops []sheetplan.MutationOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("document %s not found", documentID)
	}

	for _, op := range ops {
		if err := doc.apply(op, s.RejectValue); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) ListTabs(ctx context.Context, documentID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s not found", documentID)
	}
	return append([]string(nil), doc.tabOrder...), nil
}

func (d *memDoc) apply(op sheetplan.MutationOp, rejectValue string) error {
	switch op.Kind {
	case sheetplan.OpWriteCell:
		if rejectValue != "" && op.Value == rejectValue {
			return fmt.Errorf("value rejected: %q", op.Value)
		}
		tab, err := d.tab(op.Tab)
		if err != nil {
			return err
		}
		row := tab.cells[op.Row]
		if row == nil {
			row = make(map[string]string)
			tab.cells[op.Row] = row
		}
		row[op.Col] = op.Value
	case sheetplan.OpInsertRows:
		tab, err := d.tab(op.Tab)
		if err != nil {
			return err
		}
		tab.shiftRows(op.BeforeRow, op.Count)
	case sheetplan.OpDeleteRows:
		tab, err := d.tab(op.Tab)
		if err != nil {
			return err
		}
		for _, row := range op.Rows {
			delete(tab.cells, row)
			tab.shiftRows(row+1, -1)
		}
	case sheetplan.OpSetTabVisibility:
		tab, err := d.tab(op.Tab)
		if err != nil {
			return err
		}
		tab.hidden = op.Hidden
	case sheetplan.OpDeleteTab:
		if _, ok := d.tabs[op.Tab]; !ok {
			return fmt.Errorf("tab %q not found", op.Tab)
		}
		delete(d.tabs, op.Tab)
		for i, name := range d.tabOrder {
			if name == op.Tab {
				d.tabOrder = append(d.tabOrder[:i], d.tabOrder[i+1:]...)
				break
			}
		}
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
	return nil
}

func (d *memDoc) tab(name string) (*memTab, error) {
	tab, ok := d.tabs[name]
	if !ok {
		return nil, fmt.Errorf("tab %q not found", name)
	}
	return tab, nil
}

// shiftRows moves every cell at or below fromRow by delta rows.
func (t *memTab) shiftRows(fromRow, delta int) {
	shifted := make(map[int]map[string]string, len(t.cells))
	for row, cols := range t.cells {
		if row >= fromRow {
			shifted[row+delta] = cols
		} else {
			shifted[row] = cols
		}
	}
	t.cells = shifted
}

// CellValue returns a cell's value for assertions; empty when unset.
func (s *MemoryStore) CellValue(documentID, tab string, row int, col string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return ""
	}
	t, ok := doc.tabs[tab]
	if !ok {
		return ""
	}
	return t.cells[row][col]
}

// HiddenTabs returns the names of hidden tabs, in sheet order.
func (s *MemoryStore) HiddenTabs(documentID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return nil
	}
	var out []string
	for _, name := range doc.tabOrder {
		if doc.tabs[name].hidden {
			out = append(out, name)
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
