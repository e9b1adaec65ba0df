package compiler

import (
	"github.com/rs/zerolog"

	"specgen/cmd/specgen/spec"
)

// BuildContext collects the buckets produced for one input file. Buckets
// keep insertion order; the index only speeds up lookups by name.
type BuildContext struct {
	Source *spec.File
	Files  []*BuiltFile
	Log    zerolog.Logger

	index map[string]int
}

func NewBuildContext(source *spec.File, log zerolog.Logger) *BuildContext {
	return &BuildContext{
		Source: source,
		Log:    log,
		index:  make(map[string]int),
	}
}

// GetOrAddFile returns the bucket named name, creating it with kind when it
// does not exist yet. The kind of an existing bucket is never changed.
func (c *BuildContext) GetOrAddFile(name string, kind FileKind) *BuiltFile {
	if i, ok := c.index[name]; ok {
		return c.Files[i]
	}
	f := &BuiltFile{Name: name, Kind: kind}
	c.index[name] = len(c.Files)
	c.Files = append(c.Files, f)
	c.Log.Trace().Str("bucket", name).Stringer("kind", kind).Msg("bucket created")
	return f
}

// File returns the bucket named name.
func (c *BuildContext) File(name string) (*BuiltFile, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.Files[i], true
}
