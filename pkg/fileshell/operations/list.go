package operations

import (
	"context"
	"io/fs"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/arthur-debert/fileshell/pkg/fileshell/core"
)

// LsHandler lists the children of the cursor, directories first.
type LsHandler struct {
	baseHandler
}

// NewLsHandler creates the ls handler.
func NewLsHandler() *LsHandler {
	return &LsHandler{newBaseHandler(core.CommandLs, 0)}
}

// DirReader lists a directory.
type DirReader interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// Listing is the partitioned, sorted content of a directory.
type Listing struct {
	Dirs  []string
	Files []string
}

// ReadListing reads dir and sorts each group with the collation rules of
// locale. Entries that are neither directories nor regular files, such as
// symlinks and devices, are left out.
func ReadListing(fsys DirReader, dir string, locale language.Tag) (*Listing, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	l := &Listing{}
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			l.Dirs = append(l.Dirs, entry.Name())
		case entry.Type().IsRegular():
			l.Files = append(l.Files, entry.Name())
		}
	}

	col := collate.New(locale)
	col.SortStrings(l.Dirs)
	col.SortStrings(l.Files)
	return l, nil
}

// Prepare captures the cursor. The directory is read when the job runs.
func (h *LsHandler) Prepare(env *Env, args []string) (Job, error) {
	dir := env.Session.Cursor()
	return func(ctx context.Context) error {
		listing, err := ReadListing(env.FS, dir, env.Locale)
		if err != nil {
			return h.fail(dir, err)
		}
		env.Println("Type\t\tName")
		for _, name := range listing.Dirs {
			env.Println("Directory\t" + name)
		}
		for _, name := range listing.Files {
			env.Println("File\t\t" + name)
		}
		return nil
	}, nil
}

