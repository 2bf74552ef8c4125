package exmerge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/parser"
	"golang.org/x/sync/errgroup"
)

// Comparer compares workbooks, keeping parsed files across calls so a
// comparison can be repeated with different options cheaply.
type Comparer struct {
	cache *parser.Cache
}

// NewComparer creates a Comparer with an empty workbook cache.
func NewComparer() *Comparer {
	return &Comparer{cache: parser.NewCache()}
}

// Compare compares three workbook files with a fresh cache. An empty
// basePath selects a two-way comparison.
func Compare(ctx context.Context, basePath, oursPath, theirsPath string, opts Options) (*models.WorkbookDiff, error) {
	return NewComparer().Compare(ctx, basePath, oursPath, theirsPath, opts)
}

// Invalidate drops cached copies of the given files.
func (c *Comparer) Invalidate(paths ...string) {
	for _, p := range paths {
		c.cache.Forget(p)
	}
}

// Compare reads the workbooks, pairs their worksheets and diffs every
// sheet present in both ours and theirs. Sheets are compared concurrently;
// results keep ours order.
func (c *Comparer) Compare(ctx context.Context, basePath, oursPath, theirsPath string, opts Options) (*models.WorkbookDiff, error) {
	log := opts.logger()

	var base, ours, theirs *parser.Workbook
	g, gctx := errgroup.WithContext(ctx)
	load := func(path string, side models.Side, dst **parser.Workbook) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			book, err := c.load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", side, err)
			}
			*dst = book
			return nil
		})
	}
	if basePath != "" {
		load(basePath, models.SideBase, &base)
	}
	load(oursPath, models.SideOurs, &ours)
	load(theirsPath, models.SideTheirs, &theirs)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var baseNames []string
	if base != nil {
		baseNames = base.Names()
	}
	var pairs []SheetPair
	for _, p := range PairSheets(baseNames, ours.Names(), theirs.Names()) {
		if p.Ours == "" || p.Theirs == "" {
			log.Warn("sheet has no counterpart; skipped", "ours", p.Ours, "theirs", p.Theirs)
			continue
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, ErrNoWorksheets
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sheets := make([]models.SheetDiff, len(pairs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sheets[i] = compareSheet(p, base, ours, theirs, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("workbooks compared", "book", filepath.Base(oursPath), "sheets", len(sheets), "two_way", base == nil)
	return &models.WorkbookDiff{
		BookName: filepath.Base(oursPath),
		Sheets:   sheets,
	}, nil
}

func compareSheet(p SheetPair, base, ours, theirs *parser.Workbook, opts Options) models.SheetDiff {
	o, _ := ours.Lookup(p.Ours)
	t, _ := theirs.Lookup(p.Theirs)

	var baseGrid models.Grid
	headerRows := max(o.HeaderRows, t.HeaderRows)
	if base != nil {
		// A base workbook without the sheet still means three-way: every
		// row was added on both sides.
		baseGrid = models.Grid{}
		if b, ok := base.Lookup(p.Base); ok {
			baseGrid = b.Grid
			headerRows = max(headerRows, b.HeaderRows)
		}
	}
	if opts.HeaderRows >= 0 {
		headerRows = opts.HeaderRows
	}

	sheetOpts := opts
	sheetOpts.HeaderRows = headerRows
	sheetOpts.Logger = opts.logger().With("sheet", p.Ours)

	d := ComputeThreeWayDiff(baseGrid, o.Grid, t.Grid, sheetOpts)
	d.Name = p.Ours
	return *d
}

func (c *Comparer) load(path string) (*parser.Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	book, err := c.cache.Load(path)
	if err != nil {
		var sheetErr *parser.SheetReadError
		if errors.As(err, &sheetErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	return book, nil
}
