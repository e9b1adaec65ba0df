package compiler

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"specgen/cmd/specgen/spec"
)

// FinishImports computes the import list of every bucket of ctx. For each
// type referenced by a record of a bucket (container arguments included)
// the backend is asked for the import it needs, unless the type is declared
// in that same bucket. The result is merged with the imports builders added,
// deduplicated and sorted. Running it again yields the same lists.
func FinishImports(ctx *BuildContext, backend Backend) {
	for _, bucket := range ctx.Files {
		imports := append([]string(nil), bucket.Imports...)
		for _, t := range referencedTypes(bucket) {
			t.Walk(func(t *spec.Type) {
				if t.Decl.Builtin() || bucket.Declares(t.Decl) {
					return
				}
				if imp, ok := backend.GetCompiledIncludeForType(ctx, bucket, t); ok {
					imports = append(imports, imp)
				}
			})
		}
		bucket.Imports = SortImports(imports)
		ctx.Log.Trace().Str("bucket", bucket.Name).Strs("imports", bucket.Imports).Msg("imports finished")
	}
}

// referencedTypes lists the types used by the records of a bucket.
func referencedTypes(f *BuiltFile) []*spec.Type {
	var out []*spec.Type
	for _, d := range f.Definitions {
		for _, p := range d.Properties {
			out = append(out, p.Type)
		}
	}
	for _, c := range f.Constants {
		out = append(out, c.Type)
	}
	for _, s := range f.Services {
		for _, ep := range s.Endpoints {
			if ep.Request != nil {
				out = append(out, ep.Request)
			}
			if ep.Response != nil {
				out = append(out, ep.Response)
			}
		}
	}
	return out
}

// SortImports drops empty and duplicate entries and sorts the rest case
// insensitively, breaking ties by byte order.
func SortImports(imports []string) []string {
	out := lo.Uniq(lo.Compact(imports))
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}
