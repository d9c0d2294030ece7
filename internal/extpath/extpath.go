// Package extpath resolves extended path specifications of the form
// path[:first[:last]] into a contiguous range over a sorted directory listing.
//
// The lexicographic order of the regular files in the directory defines the
// frame indices 0..N-1 that every downstream reader uses.
package extpath

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/fsutil"
)

// Separator splits the fields of an extended path.
const Separator = ":"

// Spec is a resolved extended path.
type Spec struct {
	Dir   string
	First int
	Count int
	// Files is the full sorted listing of Dir, not only the selected range.
	Files []string
}

// Resolve parses spec and lists its directory.
func Resolve(spec string) (Spec, error) {
	const op = "extpath.Resolve"

	fields := strings.Split(spec, Separator)
	if len(fields) > 3 {
		return Spec{}, errs.Errorf(errs.InvalidArgument, op, "%q: expected path[:first[:last]]", spec)
	}
	dir := fields[0]
	if dir == "" {
		return Spec{}, errs.Errorf(errs.InvalidArgument, op, "%q: empty path", spec)
	}

	files, err := fsutil.RegularFiles(dir)
	if err != nil {
		return Spec{}, errs.E(errs.NotFound, op, err)
	}

	first, err := field(fields, 1)
	if err != nil {
		return Spec{}, errs.Errorf(errs.InvalidArgument, op, "%q: first index: %w", spec, err)
	}
	last, err := field(fields, 2)
	if err != nil {
		return Spec{}, errs.Errorf(errs.InvalidArgument, op, "%q: last index: %w", spec, err)
	}

	s := Spec{Dir: dir, Files: files}
	if first < 0 {
		first = 0
	}
	if last < 0 {
		last = len(files)
	}
	if err := s.set(first, last); err != nil {
		return Spec{}, errs.E(errs.InvalidArgument, op, fmt.Errorf("%q: %w", spec, err))
	}
	return s, nil
}

// Slice narrows the listing to [first, last) using the same bounds checks as
// Resolve.
func (s Spec) Slice(first, last int) (Spec, error) {
	out := Spec{Dir: s.Dir, Files: s.Files}
	if err := out.set(first, last); err != nil {
		return Spec{}, errs.E(errs.InvalidArgument, "extpath.Slice", err)
	}
	return out, nil
}

// IsZero reports whether s is unset.
func (s Spec) IsZero() bool { return s.Dir == "" }

// Last returns the exclusive end index.
func (s Spec) Last() int { return s.First + s.Count }

// Paths returns the full paths of the selected files.
func (s Spec) Paths() []string {
	out := make([]string, 0, s.Count)
	for _, name := range s.Files[s.First:s.Last()] {
		out = append(out, filepath.Join(s.Dir, name))
	}
	return out
}

// String renders s back into extended path form.
func (s Spec) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Dir, s.First, s.Last())
}

func (s *Spec) set(first, last int) error {
	n := len(s.Files)
	switch {
	case first < 0 || last < 0:
		return fmt.Errorf("negative index (first=%d, last=%d)", first, last)
	case first > n:
		return fmt.Errorf("first index %d beyond %d files in %s", first, n, s.Dir)
	case last < first:
		return fmt.Errorf("last index %d precedes first index %d", last, first)
	case last > n:
		return fmt.Errorf("range [%d, %d) exceeds %d files in %s", first, last, n, s.Dir)
	}
	s.First = first
	s.Count = last - first
	return nil
}

// field parses fields[i] as a base-10 integer. A missing or empty field
// yields -1.
func field(fields []string, i int) (int, error) {
	if i >= len(fields) || fields[i] == "" {
		return -1, nil
	}
	v, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}
