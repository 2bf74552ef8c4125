package parser

import (
	"sync"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/xuri/excelize/v2"
)

// Sheet is one parsed worksheet.
type Sheet struct {
	Name       string
	Grid       models.Grid
	HeaderRows int
}

// Workbook is a parsed workbook: worksheets in tab order.
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// Lookup returns the sheet with the given name.
func (w *Workbook) Lookup(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Names returns the sheet names in tab order.
func (w *Workbook) Names() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Cache keeps parsed workbooks per file path so repeated comparisons with
// different options read each file once. It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	books map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	book *Workbook
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{books: make(map[string]*cacheEntry)}
}

// Load returns the parsed workbook at path, reading it on first use.
func (c *Cache) Load(path string) (*Workbook, error) {
	c.mu.Lock()
	e, ok := c.books[path]
	if !ok {
		e = &cacheEntry{}
		c.books[path] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.book, e.err = ReadWorkbook(path)
	})
	return e.book, e.err
}

// Forget drops a cached workbook, e.g. after the file was rewritten.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	delete(c.books, path)
	c.mu.Unlock()
}

// ReadWorkbook opens path and reads every worksheet grid along with its
// detected header row count.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book := &Workbook{Path: path}
	for _, name := range ListWorksheets(f) {
		grid, err := ReadGrid(f, name)
		if err != nil {
			return nil, &SheetReadError{SheetName: name, Err: err}
		}
		headerRows, err := DetectHeaderRows(f, name)
		if err != nil {
			return nil, &SheetReadError{SheetName: name, Err: err}
		}
		book.Sheets = append(book.Sheets, Sheet{Name: name, Grid: grid, HeaderRows: headerRows})
	}
	return book, nil
}

// SheetReadError reports a worksheet that could not be read.
type SheetReadError struct {
	SheetName string
	Err       error
}

func (e *SheetReadError) Error() string {
	return "read sheet " + e.SheetName + ": " + e.Err.Error()
}

func (e *SheetReadError) Unwrap() error {
	return e.Err
}
