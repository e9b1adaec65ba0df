package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"specgen/cmd/specgen/spec"
)

// typeEntry is one user type of the resolved graph.
type typeEntry struct {
	Name       string
	Kind       string
	File       *spec.File
	Definition *spec.Definition
	Enum       *spec.Enum
}

// collectTypes lists the enums and definitions of files sorted by
// qualified name.
func collectTypes(files []*spec.File) []typeEntry {
	var out []typeEntry
	for _, f := range files {
		for _, e := range f.Enums {
			kind := "enum"
			if e.Flags {
				kind = "flags"
			}
			out = append(out, typeEntry{Name: e.QualifiedName(), Kind: kind, File: f, Enum: e})
		}
		for _, d := range f.Definitions {
			out = append(out, typeEntry{Name: d.QualifiedName(), Kind: "definition", File: f, Definition: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func findType(entries []typeEntry, name string) (typeEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	// Unqualified names are accepted when they are unambiguous.
	var found []typeEntry
	for _, e := range entries {
		if e.Name[strings.LastIndex(e.Name, ".")+1:] == name {
			found = append(found, e)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return typeEntry{}, false
}

// describeType renders one type with its members, each line starting with
// prefix. Options attached for backend are shown when present.
func describeType(w io.Writer, e typeEntry, backend, prefix string) {
	fmt.Fprintf(w, "%s%s %s (%s)\n", prefix, e.Kind, e.Name, e.File.Name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	switch {
	case e.Enum != nil:
		if e.Enum.Description != "" {
			fmt.Fprintf(tw, "%s  %s\n", prefix, e.Enum.Description)
		}
		for _, v := range e.Enum.Values {
			fmt.Fprintf(tw, "%s  %s\t= %d\n", prefix, v.Label, v.Value)
		}
	case e.Definition != nil:
		d := e.Definition
		if d.Description != "" {
			fmt.Fprintf(tw, "%s  %s\n", prefix, d.Description)
		}
		if o, ok := d.Options[backend]; ok {
			fmt.Fprintf(tw, "%s  options %+v\n", prefix, o)
		}
		for _, p := range d.Properties {
			fmt.Fprintf(tw, "%s  %s\t%s\t%s\n", prefix, p.Name, typeOf(p.Type, p.TypeRef), valueOf(p.Value))
		}
	}
}

// describeFiles renders the whole graph file by file.
func describeFiles(w io.Writer, files []*spec.File, backend string) {
	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "file %s", f.Name)
		if f.Namespace != "" {
			fmt.Fprintf(w, " namespace %s", f.Namespace)
		}
		if f.Included {
			fmt.Fprint(w, " (included)")
		}
		fmt.Fprintln(w)
		if len(f.Includes) > 0 {
			fmt.Fprintf(w, "  includes %s\n", strings.Join(f.Includes, ", "))
		}
		if o, ok := f.Options[backend]; ok {
			fmt.Fprintf(w, "  options %+v\n", o)
		}
		for _, e := range collectTypes([]*spec.File{f}) {
			describeType(w, e, backend, "  ")
		}
		for _, c := range f.Constants {
			fmt.Fprintf(w, "  constant %s %s %s\n", f.Qualify(c.Name), typeOf(c.Type, c.TypeRef), valueOf(c.Value))
		}
		for _, s := range f.Services {
			fmt.Fprintf(w, "  service %s\n", f.Qualify(s.Name))
			for _, ep := range s.Endpoints {
				fmt.Fprintf(w, "    %s %s %s", ep.Name, ep.Method, ep.Path)
				if ep.RequestType != nil {
					fmt.Fprintf(w, " <- %s", ep.RequestType)
				}
				if ep.ResponseType != nil {
					fmt.Fprintf(w, " -> %s", ep.ResponseType)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

func typeOf(t *spec.Type, ref string) string {
	if t == nil {
		return ref
	}
	return t.Name()
}

func valueOf(v *spec.Value) string {
	if v == nil {
		return ""
	}
	return "= " + v.Format()
}
